package git

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const gitignoreFile = ".gitignore"

func (s *Service) worktree() (*gitlib.Worktree, error) {
	wt, err := s.repo.Worktree()
	if err != nil {
		if errors.Is(err, gitlib.ErrIsBareRepository) {
			return nil, ErrBareRepository
		}
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return wt, nil
}

// RelPath converts a path given on the command line (absolute, or relative
// to the current directory) into a slash-separated path relative to the
// worktree root.
func (s *Service) RelPath(p string) (string, error) {
	root, err := s.Where()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository at %s", p, root)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// Stage copies the worktree version of each path into the index. Paths
// missing from the worktree are removed from the index.
func (s *Service) Stage(paths []string) error {
	wt, err := s.worktree()
	if err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			return fmt.Errorf("stage %s: %w", p, err)
		}
		slog.Debug("staged", slog.String("path", p))
	}
	return nil
}

// Unstage resets the index entries under paths to their HEAD version.
// Without paths the whole index is reset, like a mixed reset.
func (s *Service) Unstage(paths []string) error {
	headTree, err := s.headTree()
	if err != nil {
		return err
	}
	idx, err := s.index()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{""}
	}
	for _, p := range paths {
		if err := resetIndexPath(idx, headTree, p); err != nil {
			return fmt.Errorf("unstage %s: %w", p, err)
		}
	}
	if err := s.repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// headTree returns HEAD's tree, or nil when HEAD is unborn.
func (s *Service) headTree() (*object.Tree, error) {
	unborn, err := s.headUnborn()
	if err != nil {
		return nil, err
	}
	if unborn {
		return nil, nil
	}
	return s.targetTree(Classify("/" + plumbing.HEAD.String()))
}

// resetIndexPath makes every index entry at or below p match tree. An empty
// p covers the whole index.
func resetIndexPath(idx *gitindex.Index, tree *object.Tree, p string) error {
	want := map[string]*object.File{}
	if tree != nil {
		err := tree.Files().ForEach(func(f *object.File) error {
			if underPath(f.Name, p) {
				want[f.Name] = f
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if !underPath(e.Name, p) {
			kept = append(kept, e)
			continue
		}
		f, ok := want[e.Name]
		if !ok {
			continue
		}
		delete(want, e.Name)
		e.Hash = f.Hash
		e.Mode = f.Mode
		e.Stage = stageNormal
		kept = append(kept, e)
	}
	idx.Entries = kept
	for name, f := range want {
		e := idx.Add(name)
		e.Hash = f.Hash
		e.Mode = f.Mode
	}
	return nil
}

func underPath(name, p string) bool {
	p = strings.TrimSuffix(p, "/")
	return p == "" || name == p || strings.HasPrefix(name, p+"/")
}

// Commit records the index as a new commit on HEAD, signed with the
// configured identity.
func (s *Service) Commit(message string) (plumbing.Hash, error) {
	staged, err := s.stagedChanges()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if staged.Empty() {
		return plumbing.ZeroHash, ErrNothingStaged
	}
	id, err := s.Me()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	wt, err := s.worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	sig := &object.Signature{Name: id.Name, Email: id.Email, When: time.Now()}
	hash, err := wt.Commit(message, &gitlib.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	slog.Debug("committed", slog.String("hash", hash.String()), slog.Int("changes", len(staged.Changes)))
	return hash, nil
}

// CleanedFile is a discarded worktree file and the blob it was saved as.
type CleanedFile struct {
	Path string
	Hash plumbing.Hash
}

// Clean discards local changes under paths, or everywhere when paths is
// empty. Every dirty file is first written to the object store so it can
// be brought back with Restore, then index and worktree are reset to HEAD.
func (s *Service) Clean(paths []string) ([]CleanedFile, error) {
	headTree, err := s.headTree()
	if err != nil {
		return nil, err
	}
	wd, err := s.workdir(false)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		paths = []string{""}
	}
	changes, err := diffTreeToWorkdir(headTree, wd)
	if err != nil {
		return nil, err
	}
	indexChanges, err := diffTreeToIndex(headTree, wd.idx)
	if err != nil {
		return nil, err
	}
	changes = mergeChanges(changes, indexChanges)

	var cleaned []CleanedFile
	for _, c := range changes {
		if !underAny(c.Path, paths) {
			continue
		}
		if c.Action != Deleted {
			saved, err := s.saveWorktreeFile(wd.fs, c.Path)
			if err != nil {
				return nil, err
			}
			if !saved.IsZero() {
				cleaned = append(cleaned, CleanedFile{Path: c.Path, Hash: saved})
			}
		}
		f, err := fileFromTree(headTree, c.Path)
		if err != nil {
			return nil, err
		}
		if err := writeWorktreeFile(wd.fs, c.Path, f); err != nil {
			return nil, fmt.Errorf("clean %s: %w", c.Path, err)
		}
	}
	for _, p := range paths {
		if err := resetIndexPath(wd.idx, headTree, p); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Storer.SetIndex(wd.idx); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	return cleaned, nil
}

// mergeChanges adds the entries of extra whose paths a does not cover.
func mergeChanges(a, extra []Change) []Change {
	seen := make(map[string]struct{}, len(a))
	for _, c := range a {
		seen[c.Path] = struct{}{}
	}
	for _, c := range extra {
		if _, ok := seen[c.Path]; !ok {
			a = append(a, c)
		}
	}
	sortChanges(a)
	return a
}

func underAny(name string, paths []string) bool {
	for _, p := range paths {
		if underPath(name, p) {
			return true
		}
	}
	return false
}

// saveWorktreeFile stores the current worktree content of p as a blob.
// A missing file yields the zero hash.
func (s *Service) saveWorktreeFile(fs billy.Filesystem, p string) (plumbing.Hash, error) {
	f, err := fileFromDisk(fs, p)
	if err != nil || f == nil {
		return plumbing.ZeroHash, err
	}
	r, err := f.Reader()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer r.Close()
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return plumbing.ZeroHash, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("save %s: %w", p, err)
	}
	slog.Debug("saved worktree file", slog.String("path", p), slog.String("hash", hash.String()))
	return hash, nil
}

// writeWorktreeFile replaces p with the content of f, or removes it when f
// is nil.
func writeWorktreeFile(fs billy.Filesystem, p string, f *object.File) error {
	if err := fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if f == nil {
		return nil
	}
	if dir := path.Dir(p); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if f.Mode == filemode.Symlink {
		target, err := f.Contents()
		if err != nil {
			return err
		}
		return fs.Symlink(target, p)
	}
	perm := os.FileMode(0o644)
	if f.Mode == filemode.Executable {
		perm = 0o755
	}
	r, err := f.Reader()
	if err != nil {
		return err
	}
	defer r.Close()
	out, err := fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Restore writes the blob label resolves to into the worktree at p.
func (s *Service) Restore(label, p string) (plumbing.Hash, error) {
	obj, err := s.Resolve(label)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	blob, ok := obj.Blob()
	if !ok {
		return plumbing.ZeroHash, fmt.Errorf("restore %q: %s is a %s: %w", label, obj.Hash, obj.Kind, ErrWrongKind)
	}
	wt, err := s.worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	f := object.NewFile(p, filemode.Regular, blob)
	if err := writeWorktreeFile(wt.Filesystem, p, f); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("restore %s: %w", p, err)
	}
	return blob.Hash, nil
}

// IgnoreResult describes the line Ignore appended to .gitignore.
type IgnoreResult struct {
	Entry string
	// Tracked is set when a plain path is already tracked in HEAD, in which
	// case the ignore rule has no effect until it is removed from the index.
	Tracked bool
}

// Ignore appends entry to the top-level .gitignore. Plain paths (isPattern
// false) are converted to worktree-relative form first; patterns are added
// unmodified.
func (s *Service) Ignore(entry string, isPattern bool) (*IgnoreResult, error) {
	wt, err := s.worktree()
	if err != nil {
		return nil, err
	}
	res := &IgnoreResult{Entry: entry}
	if !isPattern {
		rel, err := s.RelPath(entry)
		if err != nil {
			return nil, err
		}
		res.Entry = rel
		tree, err := s.headTree()
		if err != nil {
			return nil, err
		}
		if tree != nil {
			if _, err := tree.FindEntry(rel); err == nil {
				res.Tracked = true
			}
		}
	}
	if strings.TrimSpace(res.Entry) == "" {
		return nil, fmt.Errorf("nothing to ignore")
	}
	if err := appendLine(wt.Filesystem, gitignoreFile, res.Entry); err != nil {
		return nil, fmt.Errorf("update %s: %w", gitignoreFile, err)
	}
	return res, nil
}

// appendLine adds line to name, first terminating an unterminated last line.
func appendLine(fs billy.Filesystem, name, line string) error {
	prefix := ""
	if existing, err := fs.Open(name); err == nil {
		data, err := io.ReadAll(existing)
		existing.Close()
		if err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			prefix = "\n"
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	f, err := fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, prefix+line+"\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
