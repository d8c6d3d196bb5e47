package git

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type ObjectKind uint8

const (
	KindBlob ObjectKind = iota
	KindTree
	KindCommit
	KindTag
)

func (k ObjectKind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindCommit:
		return "commit"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Object is a resolved label. It borrows the go-git object loaded from the
// Service that produced it and must not outlive that Service.
type Object struct {
	Kind ObjectKind
	Hash plumbing.Hash

	obj object.Object
}

func newObject(obj object.Object) (*Object, error) {
	var kind ObjectKind
	switch obj.(type) {
	case *object.Blob:
		kind = KindBlob
	case *object.Tree:
		kind = KindTree
	case *object.Commit:
		kind = KindCommit
	case *object.Tag:
		kind = KindTag
	default:
		return nil, fmt.Errorf("object %s: unsupported type %s: %w", obj.ID(), obj.Type(), ErrWrongKind)
	}
	return &Object{Kind: kind, Hash: obj.ID(), obj: obj}, nil
}

func (o *Object) Blob() (*object.Blob, bool) {
	b, ok := o.obj.(*object.Blob)
	return b, ok
}

func (o *Object) Tree() (*object.Tree, bool) {
	t, ok := o.obj.(*object.Tree)
	return t, ok
}

func (o *Object) Commit() (*object.Commit, bool) {
	c, ok := o.obj.(*object.Commit)
	return c, ok
}

func (o *Object) Tag() (*object.Tag, bool) {
	t, ok := o.obj.(*object.Tag)
	return t, ok
}

// maxPeelDepth bounds tag chains; real repositories never nest this deep.
const maxPeelDepth = 8

// PeelToTree follows tag -> target and commit -> tree until a tree is
// reached. Blobs cannot be peeled.
func PeelToTree(o *Object) (*object.Tree, error) {
	cur := o.obj
	for range maxPeelDepth {
		switch v := cur.(type) {
		case *object.Tree:
			return v, nil
		case *object.Commit:
			tree, err := v.Tree()
			if err != nil {
				return nil, fmt.Errorf("read tree of commit %s: %w", v.Hash, err)
			}
			return tree, nil
		case *object.Tag:
			target, err := v.Object()
			if err != nil {
				return nil, fmt.Errorf("read target of tag %s: %w", v.Hash, err)
			}
			cur = target
		default:
			return nil, fmt.Errorf("peel %s %s to tree: %w", cur.Type(), cur.ID(), ErrWrongKind)
		}
	}
	return nil, fmt.Errorf("peel %s to tree: tag chain too deep: %w", o.Hash, ErrWrongKind)
}

// PeelToCommit follows tag -> target until a commit is reached.
func PeelToCommit(o *Object) (*object.Commit, error) {
	cur := o.obj
	for range maxPeelDepth {
		switch v := cur.(type) {
		case *object.Commit:
			return v, nil
		case *object.Tag:
			target, err := v.Object()
			if err != nil {
				return nil, fmt.Errorf("read target of tag %s: %w", v.Hash, err)
			}
			cur = target
		default:
			return nil, fmt.Errorf("peel %s %s to commit: %w", cur.Type(), cur.ID(), ErrWrongKind)
		}
	}
	return nil, fmt.Errorf("peel %s to commit: tag chain too deep: %w", o.Hash, ErrWrongKind)
}
