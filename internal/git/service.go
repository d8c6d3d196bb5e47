package git

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// minShortID is the shortest abbreviation ShortID hands out.
const minShortID = 7

// Service wraps a single repository for the duration of one command.
type Service struct {
	repo repoState
}

type repoState struct {
	*gitlib.Repository
	path string
}

// Discover opens the repository containing repoPath, walking up to find the
// enclosing .git directory.
func Discover(repoPath string) (*Service, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := abs
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	slog.Debug("repository opened", slog.String("path", root))
	return &Service{repo: repoState{path: root, Repository: repo}}, nil
}

// Init creates a new repository at repoPath. Reinitializing an existing
// repository is an error.
func Init(repoPath string, bare bool) (*Service, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainInit(abs, bare)
	if err != nil {
		if errors.Is(err, gitlib.ErrRepositoryAlreadyExists) {
			return nil, fmt.Errorf("initialize repository at %s: %w", abs, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("initialize repository: %w", err)
	}
	return &Service{repo: repoState{path: abs, Repository: repo}}, nil
}

// NewWithRepository wraps an already opened go-git repository.
func NewWithRepository(repo *gitlib.Repository, path string) *Service {
	return &Service{repo: repoState{path: path, Repository: repo}}
}

func (s *Service) RepoPath() string {
	return s.repo.path
}

// Where returns the worktree root, or ErrBareRepository.
func (s *Service) Where() (string, error) {
	wt, err := s.repo.Worktree()
	if err != nil {
		if errors.Is(err, gitlib.ErrIsBareRepository) {
			return "", ErrBareRepository
		}
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

// Head returns the short name of HEAD (branch name, or "HEAD" when
// detached) and the commit it points to.
func (s *Service) Head() (string, *object.Commit, error) {
	ref, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil, fmt.Errorf("resolve HEAD: %w", ErrNotFound)
		}
		return "", nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return "", nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return refName(ref), commit, nil
}

type Identity struct {
	Name  string
	Email string
}

// Me returns the committing identity from the merged git configuration.
func (s *Service) Me() (Identity, error) {
	cfg, err := s.repo.ConfigScoped(config.SystemScope)
	if err != nil {
		return Identity{}, fmt.Errorf("read config: %w", err)
	}
	id := Identity{Name: cfg.User.Name, Email: cfg.User.Email}
	if id.Name == "" {
		id.Name = cfg.Author.Name
	}
	if id.Email == "" {
		id.Email = cfg.Author.Email
	}
	if id.Name == "" {
		return id, fmt.Errorf("user.name: %w", ErrNotFound)
	}
	if id.Email == "" {
		return id, fmt.Errorf("user.email: %w", ErrNotFound)
	}
	return id, nil
}

// ShortID returns the shortest prefix of hash, at least minShortID long,
// that no other object shares. Use an Abbreviator when printing many ids.
func (s *Service) ShortID(hash plumbing.Hash) string {
	return s.Abbreviator().ShortID(hash)
}

func FormatCommitHeader(c *object.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", c.Hash)
	appendSignatureLine(&b, "Author", c.Author)
	committer := c.Committer
	if committer.Name == "" && committer.Email == "" && committer.When.IsZero() {
		committer = c.Author
	}
	if committer.Name != c.Author.Name || committer.Email != c.Author.Email {
		appendSignatureLine(&b, "Committer", committer)
	}
	b.WriteString("\n")
	message := strings.TrimRight(c.Message, "\n")
	if message == "" {
		b.WriteString("    (no commit message)\n")
		return b.String()
	}
	for line := range strings.SplitSeq(message, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return b.String()
}

func appendSignatureLine(b *strings.Builder, label string, sig object.Signature) {
	fmt.Fprintf(b, "%s: %s <%s>", label, sig.Name, sig.Email)
	if !sig.When.IsZero() {
		fmt.Fprintf(b, "  %s", sig.When.Format("2006-01-02 15:04:05 -0700"))
	}
	b.WriteByte('\n')
}

func refName(ref *plumbing.Reference) string {
	name := ref.Name().Short()
	if name == "" {
		name = ref.Name().String()
	}
	return name
}
