package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

type StatusCode uint8

const (
	StatusUnmodified StatusCode = iota
	StatusNew
	StatusModified
	StatusDeleted
	StatusRenamed
	StatusTypeChange
)

func (c StatusCode) String() string {
	switch c {
	case StatusNew:
		return "new"
	case StatusModified:
		return "mod"
	case StatusDeleted:
		return "del"
	case StatusRenamed:
		return "ren"
	case StatusTypeChange:
		return "typ"
	default:
		return ""
	}
}

// StatusEntry describes one path. Index compares HEAD with the index,
// Worktree compares the index with the checked-out files.
type StatusEntry struct {
	Path     string
	OrigPath string
	Index    StatusCode
	Worktree StatusCode
	Ignored  bool
	Conflict bool
}

type StatusOptions struct {
	ShowUntracked bool
	ShowIgnored   bool
}

// LocalChanges summarizes whether anything is staged or modified in the
// worktree. Untracked files do not count.
type LocalChanges struct {
	HasWorktree bool
	HasStaged   bool
}

func (s *Service) Status(opts StatusOptions) ([]StatusEntry, error) {
	staged, err := s.stagedChanges()
	if err != nil {
		return nil, err
	}
	var diffOpts []DiffOption
	if opts.ShowUntracked {
		diffOpts = append(diffOpts, WithUntracked())
	}
	unstaged, err := s.MakeDiff(Classify(LabelIndex), Classify(LabelWorkTree), diffOpts...)
	if err != nil {
		return nil, err
	}

	entries := map[string]*StatusEntry{}
	entry := func(path string) *StatusEntry {
		e, ok := entries[path]
		if !ok {
			e = &StatusEntry{Path: path}
			entries[path] = e
		}
		return e
	}
	for _, c := range staged.Changes {
		entry(c.Path).Index = statusCode(c)
	}
	for _, c := range unstaged.Changes {
		entry(c.Path).Worktree = statusCode(c)
	}
	markRenames(entries, staged.Changes)

	idx, err := s.index()
	if err != nil {
		return nil, err
	}
	for _, e := range idx.Entries {
		if e.Stage != stageNormal {
			entry(e.Name).Conflict = true
		}
	}

	if opts.ShowIgnored {
		ignored, err := s.ignoredPaths()
		if err != nil {
			return nil, err
		}
		for _, path := range ignored {
			entry(path).Ignored = true
		}
	}

	out := make([]StatusEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b StatusEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out, nil
}

func (s *Service) LocalChanges() (LocalChanges, error) {
	var res LocalChanges
	staged, err := s.stagedChanges()
	if err != nil {
		return res, err
	}
	unstaged, err := s.MakeDiff(Classify(LabelIndex), Classify(LabelWorkTree))
	if err != nil {
		return res, err
	}
	res.HasStaged = !staged.Empty()
	res.HasWorktree = !unstaged.Empty()
	return res, nil
}

// stagedChanges diffs HEAD against the index. An unborn HEAD counts as the
// empty tree, so everything in the index is an addition.
func (s *Service) stagedChanges() (*DiffHandle, error) {
	head := Classify("/" + plumbing.HEAD.String())
	h, err := s.MakeDiff(head, Classify(LabelIndex))
	if err == nil || !errors.Is(err, ErrNotFound) {
		return h, err
	}
	unborn, uerr := s.headUnborn()
	if uerr != nil || !unborn {
		return nil, err
	}
	idx, err := s.index()
	if err != nil {
		return nil, err
	}
	changes, err := diffTreeToIndex(nil, idx)
	if err != nil {
		return nil, err
	}
	sortChanges(changes)
	return &DiffHandle{
		Old:     head,
		New:     Classify(LabelIndex),
		Changes: changes,
		from:    treeEndpoint{},
		to:      indexEndpoint{idx: idx, storer: s.repo.Storer},
	}, nil
}

func (s *Service) headUnborn() (bool, error) {
	_, err := s.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return true, nil
	}
	return false, err
}

func statusCode(c Change) StatusCode {
	switch c.Action {
	case Added:
		return StatusNew
	case Deleted:
		return StatusDeleted
	}
	if modeKind(c.FromMode) != modeKind(c.ToMode) {
		return StatusTypeChange
	}
	return StatusModified
}

func modeKind(m filemode.FileMode) filemode.FileMode {
	switch m {
	case filemode.Executable, filemode.Deprecated:
		return filemode.Regular
	default:
		return m
	}
}

// markRenames pairs staged deletions with staged additions of the same blob.
func markRenames(entries map[string]*StatusEntry, staged []Change) {
	deleted := map[plumbing.Hash]string{}
	for _, c := range staged {
		if c.Action == Deleted && !c.From.IsZero() {
			deleted[c.From] = c.Path
		}
	}
	for _, c := range staged {
		if c.Action != Added {
			continue
		}
		orig, ok := deleted[c.To]
		if !ok {
			continue
		}
		delete(deleted, c.To)
		e := entries[c.Path]
		e.Index = StatusRenamed
		e.OrigPath = orig
		if old := entries[orig]; old != nil && old.Worktree == StatusUnmodified {
			delete(entries, orig)
		} else if old != nil {
			old.Index = StatusUnmodified
		}
	}
}

// ignoredPaths lists untracked paths matched by ignore rules. Ignored
// directories are reported once with a trailing slash.
func (s *Service) ignoredPaths() ([]string, error) {
	wd, err := s.workdir(false)
	if err != nil {
		return nil, err
	}
	var paths []string
	err = util.Walk(wd.fs, "", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		path = filepath.ToSlash(path)
		if path == "" || path == "." {
			return nil
		}
		if info.IsDir() && info.Name() == ".git" {
			return filepath.SkipDir
		}
		if !wd.ignore.Match(strings.Split(path, "/"), info.IsDir()) || wd.tracked(path) {
			return nil
		}
		if info.IsDir() {
			paths = append(paths, path+"/")
			return filepath.SkipDir
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk worktree: %w", err)
	}
	return paths, nil
}
