package git

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

type Branch struct {
	Name   string
	Hash   plumbing.Hash
	Head   bool
	Remote bool
}

// Branches lists local branches, and remote-tracking ones when remote is
// set, sorted by name with local branches first.
func (s *Service) Branches(remote bool) ([]Branch, error) {
	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	defer refs.Close()
	var headName plumbing.ReferenceName
	if head, err := s.repo.Reference(plumbing.HEAD, false); err == nil && head.Type() == plumbing.SymbolicReference {
		headName = head.Target()
	}
	var branches []Branch
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			branches = append(branches, Branch{Name: name.Short(), Hash: ref.Hash(), Head: name == headName})
		case name.IsRemote() && remote:
			short := name.Short()
			if strings.HasSuffix(short, "/HEAD") {
				return nil
			}
			branches = append(branches, Branch{Name: short, Hash: ref.Hash(), Remote: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(branches, func(a, b Branch) int {
		if a.Remote != b.Remote {
			if a.Remote {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return branches, nil
}

// LocalBranchNames returns a sorted list of local branch names and the current
// HEAD name when available.
func (s *Service) LocalBranchNames() (branches []string, headName string, err error) {
	list, err := s.Branches(false)
	if err != nil {
		return nil, "", err
	}
	headName = "HEAD"
	for _, b := range list {
		branches = append(branches, b.Name)
		if b.Head {
			headName = b.Name
		}
	}
	return branches, headName, nil
}

// NewBranch creates name at the commit label resolves to. An existing
// branch is never overwritten.
func (s *Service) NewBranch(name, label string) (*Branch, error) {
	return s.setBranch(name, label, false)
}

// MoveBranch points an existing branch at the commit label resolves to.
func (s *Service) MoveBranch(name, label string) (*Branch, error) {
	if _, err := s.branchRef(name, false); err != nil {
		return nil, err
	}
	return s.setBranch(name, label, true)
}

func (s *Service) setBranch(name, label string, force bool) (*Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("branch not specified")
	}
	obj, err := s.Resolve(label)
	if err != nil {
		return nil, err
	}
	commit, err := PeelToCommit(obj)
	if err != nil {
		return nil, fmt.Errorf("branch %s at %q: %w", name, label, err)
	}
	refName := plumbing.NewBranchReferenceName(name)
	if !force {
		if _, err := s.repo.Reference(refName, false); err == nil {
			return nil, fmt.Errorf("branch %s: %w", name, ErrAlreadyExists)
		}
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(refName, commit.Hash)); err != nil {
		return nil, fmt.Errorf("write branch %s: %w", name, err)
	}
	slog.Debug("branch set", slog.String("branch", name), slog.String("hash", commit.Hash.String()), slog.Bool("force", force))
	return &Branch{Name: name, Hash: commit.Hash}, nil
}

// RenameBranch moves branch from to the name to. Without force an existing
// target is a conflict. HEAD follows a renamed current branch.
func (s *Service) RenameBranch(from, to string, remote, force bool) error {
	src, err := s.branchRef(from, remote)
	if err != nil {
		return err
	}
	dstName := plumbing.NewBranchReferenceName(to)
	if remote {
		dstName = plumbing.NewRemoteReferenceName(remoteParts(to))
	}
	if dstName == src.Name() {
		return nil
	}
	if !force {
		if _, err := s.repo.Reference(dstName, false); err == nil {
			return fmt.Errorf("branch %s: %w", to, ErrAlreadyExists)
		}
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(dstName, src.Hash())); err != nil {
		return fmt.Errorf("write branch %s: %w", to, err)
	}
	if err := s.repo.Storer.RemoveReference(src.Name()); err != nil {
		return fmt.Errorf("remove branch %s: %w", from, err)
	}
	head, err := s.repo.Reference(plumbing.HEAD, false)
	if err == nil && head.Type() == plumbing.SymbolicReference && head.Target() == src.Name() {
		if err := s.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, dstName)); err != nil {
			return fmt.Errorf("update HEAD: %w", err)
		}
	}
	return nil
}

// DeleteBranch removes a branch. The checked-out branch cannot be removed.
func (s *Service) DeleteBranch(name string, remote bool) error {
	ref, err := s.branchRef(name, remote)
	if err != nil {
		return err
	}
	head, err := s.repo.Reference(plumbing.HEAD, false)
	if err == nil && head.Type() == plumbing.SymbolicReference && head.Target() == ref.Name() {
		return fmt.Errorf("delete %s: %w", name, ErrCheckedOut)
	}
	if err := s.repo.Storer.RemoveReference(ref.Name()); err != nil {
		return fmt.Errorf("remove branch %s: %w", name, err)
	}
	return nil
}

// SwitchBranch checks out branch. It refuses to run while anything is
// staged or modified, so no local work is overwritten.
func (s *Service) SwitchBranch(branch string) error {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return fmt.Errorf("branch not specified")
	}
	ref, err := s.branchRef(branch, false)
	if err != nil {
		return err
	}
	changes, err := s.LocalChanges()
	if err != nil {
		return err
	}
	if changes.HasStaged || changes.HasWorktree {
		return fmt.Errorf("switch to %s: %w", branch, ErrDirtyWorktree)
	}
	wt, err := s.repo.Worktree()
	if err != nil {
		if errors.Is(err, gitlib.ErrIsBareRepository) {
			return ErrBareRepository
		}
		return err
	}
	if err := wt.Checkout(&gitlib.CheckoutOptions{Branch: ref.Name()}); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	slog.Debug("branch switched", slog.String("branch", branch))
	return nil
}

func (s *Service) branchRef(name string, remote bool) (*plumbing.Reference, error) {
	refName := plumbing.NewBranchReferenceName(name)
	if remote {
		refName = plumbing.NewRemoteReferenceName(remoteParts(name))
	}
	ref, err := s.repo.Reference(refName, false)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("branch %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("branch %s: %w", name, err)
	}
	return ref, nil
}

// remoteParts splits "origin/main" into remote and branch.
func remoteParts(name string) (string, string) {
	remote, branch, ok := strings.Cut(name, "/")
	if !ok {
		return "", name
	}
	return remote, branch
}
