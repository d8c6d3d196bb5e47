package git

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type EntryKind uint8

const (
	EntryFile EntryKind = iota
	EntryDir
	EntrySubmodule
	EntrySymlink
)

type TreeEntry struct {
	Name string
	Kind EntryKind
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// Listing is the result of Ls. Parents holds one entry per path component
// walked to reach the listed tree.
type Listing struct {
	Tree    plumbing.Hash
	Parents []TreeEntry
	Entries []TreeEntry
}

// Ls lists the tree label peels to, or the subtree at subpath below it.
func (s *Service) Ls(label, subpath string) (*Listing, error) {
	if path.IsAbs(subpath) || strings.HasPrefix(subpath, "/") {
		return nil, fmt.Errorf("ls %s: %w", subpath, ErrAbsolutePath)
	}
	obj, err := s.Resolve(label)
	if err != nil {
		return nil, err
	}
	tree, err := PeelToTree(obj)
	if err != nil {
		return nil, fmt.Errorf("ls %q: %w", label, err)
	}
	listing := &Listing{}
	for _, frag := range strings.Split(subpath, "/") {
		if frag == "" || frag == "." {
			continue
		}
		entry, ok := findEntry(tree, frag)
		if !ok {
			return nil, fmt.Errorf("ls %q: subtree %s: %w", label, frag, ErrNotFound)
		}
		if entry.Mode != filemode.Dir {
			return nil, fmt.Errorf("ls %q: %s is not a directory: %w", label, frag, ErrWrongKind)
		}
		listing.Parents = append(listing.Parents, newTreeEntry(entry))
		tree, err = s.repo.TreeObject(entry.Hash)
		if err != nil {
			return nil, fmt.Errorf("read tree %s: %w", entry.Hash, err)
		}
	}
	listing.Tree = tree.Hash
	for _, e := range tree.Entries {
		listing.Entries = append(listing.Entries, newTreeEntry(e))
	}
	return listing, nil
}

func findEntry(tree *object.Tree, name string) (object.TreeEntry, bool) {
	for _, e := range tree.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return object.TreeEntry{}, false
}

func newTreeEntry(e object.TreeEntry) TreeEntry {
	kind := EntryFile
	switch e.Mode {
	case filemode.Dir:
		kind = EntryDir
	case filemode.Submodule:
		kind = EntrySubmodule
	case filemode.Symlink:
		kind = EntrySymlink
	}
	return TreeEntry{Name: e.Name, Kind: kind, Mode: e.Mode, Hash: e.Hash}
}
