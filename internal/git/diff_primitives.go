package git

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/go-git/go-git/v5/utils/merkletrie/filesystem"
	mindex "github.com/go-git/go-git/v5/utils/merkletrie/index"
	"github.com/go-git/go-git/v5/utils/merkletrie/noder"
)

type ChangeAction uint8

const (
	Modified ChangeAction = iota
	Added
	Deleted
)

func (a ChangeAction) String() string {
	switch a {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return "modified"
	}
}

// Code is the one-letter status used by name-status listings.
func (a ChangeAction) Code() string {
	switch a {
	case Added:
		return "A"
	case Deleted:
		return "D"
	default:
		return "M"
	}
}

// Change is a single path that differs between the two sides of a diff.
// From and To are blob ids; the missing side of an addition or deletion is
// the zero hash and an empty mode.
type Change struct {
	Action   ChangeAction
	Path     string
	From     plumbing.Hash
	To       plumbing.Hash
	FromMode filemode.FileMode
	ToMode   filemode.FileMode
}

// Reverse returns the change as seen from the other side: additions become
// deletions and the blob ids swap.
func (c Change) Reverse() Change {
	switch c.Action {
	case Added:
		c.Action = Deleted
	case Deleted:
		c.Action = Added
	}
	c.From, c.To = c.To, c.From
	c.FromMode, c.ToMode = c.ToMode, c.FromMode
	return c
}

func sortChanges(changes []Change) {
	slices.SortFunc(changes, func(a, b Change) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// endpoint loads file contents for one side of a diff.
type endpoint interface {
	file(path string) (*object.File, error)
}

type treeEndpoint struct {
	tree *object.Tree
}

func (e treeEndpoint) file(path string) (*object.File, error) {
	return fileFromTree(e.tree, path)
}

type indexEndpoint struct {
	idx    *gitindex.Index
	storer storer.EncodedObjectStorer
}

func (e indexEndpoint) file(path string) (*object.File, error) {
	return fileFromIndex(e.idx, e.storer, path)
}

// workdirEndpoint is the checked-out tree. idx decides which files are
// tracked; ignore is consulted only for untracked files.
type workdirEndpoint struct {
	fs               billy.Filesystem
	idx              *gitindex.Index
	ignore           gitignore.Matcher
	includeUntracked bool
}

func (e workdirEndpoint) file(path string) (*object.File, error) {
	return fileFromDisk(e.fs, path)
}

// stageNormal is the stage of an index entry outside a merge. go-git's
// gitindex.Merged is 1, which git reads as the merge base.
const stageNormal gitindex.Stage = 0

func (s *Service) index() (*gitindex.Index, error) {
	idx, err := s.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

func (s *Service) workdir(includeUntracked bool) (workdirEndpoint, error) {
	wt, err := s.repo.Worktree()
	if err != nil {
		if errors.Is(err, gitlib.ErrIsBareRepository) {
			return workdirEndpoint{}, ErrBareRepository
		}
		return workdirEndpoint{}, fmt.Errorf("open worktree: %w", err)
	}
	idx, err := s.index()
	if err != nil {
		return workdirEndpoint{}, err
	}
	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		return workdirEndpoint{}, fmt.Errorf("read ignore patterns: %w", err)
	}
	patterns = append(patterns, wt.Excludes...)
	return workdirEndpoint{
		fs:     wt.Filesystem,
		idx:    idx,
		ignore: gitignore.NewMatcher(patterns),

		includeUntracked: includeUntracked,
	}, nil
}

func diffTreeToTree(from, to *object.Tree) ([]Change, error) {
	changes, err := object.DiffTree(from, to)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	out := make([]Change, 0, len(changes))
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}
		c := Change{
			Action:   changeAction(action),
			From:     ch.From.TreeEntry.Hash,
			To:       ch.To.TreeEntry.Hash,
			FromMode: ch.From.TreeEntry.Mode,
			ToMode:   ch.To.TreeEntry.Mode,
		}
		c.Path = ch.To.Name
		if c.Path == "" {
			c.Path = ch.From.Name
		}
		out = append(out, c)
	}
	return out, nil
}

func diffTreeToIndex(tree *object.Tree, idx *gitindex.Index) ([]Change, error) {
	changes, err := merkletrie.DiffTree(treeNoder(tree), mindex.NewRootNode(idx), hashEqual)
	if err != nil {
		return nil, fmt.Errorf("diff tree to index: %w", err)
	}
	return convertChanges(changes)
}

func diffTreeToWorkdir(tree *object.Tree, wd workdirEndpoint) ([]Change, error) {
	changes, err := merkletrie.DiffTree(treeNoder(tree), filesystem.NewRootNode(wd.fs, nil), hashEqual)
	if err != nil {
		return nil, fmt.Errorf("diff tree to worktree: %w", err)
	}
	out, err := convertChanges(changes)
	if err != nil {
		return nil, err
	}
	return wd.filterUntracked(out), nil
}

func diffIndexToWorkdir(wd workdirEndpoint) ([]Change, error) {
	changes, err := merkletrie.DiffTree(mindex.NewRootNode(wd.idx), filesystem.NewRootNode(wd.fs, nil), hashEqual)
	if err != nil {
		return nil, fmt.Errorf("diff index to worktree: %w", err)
	}
	out, err := convertChanges(changes)
	if err != nil {
		return nil, err
	}
	return wd.filterUntracked(out), nil
}

// filterUntracked drops additions of files the index does not know about,
// unless untracked files were requested; ignored files are always dropped.
func (wd workdirEndpoint) filterUntracked(changes []Change) []Change {
	out := changes[:0]
	for _, c := range changes {
		if c.Action == Added && !wd.tracked(c.Path) {
			if !wd.includeUntracked || wd.ignore.Match(strings.Split(c.Path, "/"), false) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func (wd workdirEndpoint) tracked(path string) bool {
	if wd.idx == nil {
		return false
	}
	_, err := wd.idx.Entry(path)
	return err == nil
}

func treeNoder(tree *object.Tree) noder.Noder {
	if tree == nil {
		return nil
	}
	return object.NewTreeRootNode(tree)
}

var emptyNoderHash = make([]byte, 24)

// hashEqual treats an all-zero noder hash as unknown, so such entries always
// compare as modified.
func hashEqual(a, b noder.Hasher) bool {
	hashA := a.Hash()
	hashB := b.Hash()
	if bytes.Equal(hashA, emptyNoderHash) || bytes.Equal(hashB, emptyNoderHash) {
		return false
	}
	return bytes.Equal(hashA, hashB)
}

func convertChanges(changes merkletrie.Changes) ([]Change, error) {
	out := make([]Change, 0, len(changes))
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}
		c := Change{Action: changeAction(action)}
		if ch.From != nil {
			c.Path = ch.From.String()
			c.From, c.FromMode = noderHash(ch.From)
		}
		if ch.To != nil {
			c.Path = ch.To.String()
			c.To, c.ToMode = noderHash(ch.To)
		}
		out = append(out, c)
	}
	return out, nil
}

// noderHash splits a merkletrie leaf hash into the blob id and the
// little-endian file mode that follows it.
func noderHash(p noder.Path) (plumbing.Hash, filemode.FileMode) {
	var h plumbing.Hash
	raw := p.Hash()
	copy(h[:], raw)
	if len(raw) < len(h)+4 {
		return h, filemode.Empty
	}
	return h, filemode.FileMode(binary.LittleEndian.Uint32(raw[len(h):]))
}

func changeAction(a merkletrie.Action) ChangeAction {
	switch a {
	case merkletrie.Insert:
		return Added
	case merkletrie.Delete:
		return Deleted
	default:
		return Modified
	}
}

func fileFromTree(tree *object.Tree, path string) (*object.File, error) {
	if tree == nil {
		return nil, nil
	}
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func fileFromIndex(idx *gitindex.Index, st storer.EncodedObjectStorer, path string) (*object.File, error) {
	if idx == nil || st == nil {
		return nil, nil
	}
	entry, err := idx.Entry(path)
	if errors.Is(err, gitindex.ErrEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	blob, err := object.GetBlob(st, entry.Hash)
	if err != nil {
		return nil, err
	}
	return object.NewFile(entry.Name, entry.Mode, blob), nil
}

func fileFromDisk(fs billy.Filesystem, path string) (*object.File, error) {
	info, err := fs.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	mode, err := filemode.NewFromOSFileMode(info.Mode())
	if err != nil {
		mode = filemode.Regular
	}
	var data []byte
	if mode == filemode.Symlink {
		target, err := fs.Readlink(path)
		if err != nil {
			return nil, err
		}
		data = []byte(target)
	} else {
		file, err := fs.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		if err != nil {
			return nil, err
		}
	}
	mem := &plumbing.MemoryObject{}
	mem.SetType(plumbing.BlobObject)
	if _, err := mem.Write(data); err != nil {
		return nil, err
	}
	blob, err := object.DecodeBlob(mem)
	if err != nil {
		return nil, err
	}
	return object.NewFile(path, mode, blob), nil
}
