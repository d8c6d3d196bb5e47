package git

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Label prefixes. The first character of a label selects how the rest of it
// is interpreted; a label without one of these is an abbreviated hash.
const (
	tagPrefix    = '#'
	branchPrefix = '@'
	refPrefix    = '/'
)

// Pseudo-target labels accepted by Classify. They start with refPrefix but
// are never ref paths.
const (
	LabelWorkTree = "/WORK"
	LabelIndex    = "/INDEX"
)

const hashHexSize = 40

// RefPath maps a label to the ref path it names. ok is false for labels
// that are hash prefixes.
func RefPath(label string) (path string, ok bool) {
	if label == "" {
		return plumbing.HEAD.String(), true
	}
	rest := label[1:]
	switch label[0] {
	case tagPrefix:
		return plumbing.NewTagReferenceName(rest).String(), true
	case branchPrefix:
		if rest == "" {
			return plumbing.HEAD.String(), true
		}
		return plumbing.NewBranchReferenceName(rest).String(), true
	case refPrefix:
		return rest, true
	default:
		return "", false
	}
}

// Resolve maps a label to the object it names:
//
//	""         HEAD
//	"#name"    refs/tags/name
//	"@"        HEAD
//	"@name"    refs/heads/name
//	"/path"    the ref at path, e.g. /HEAD or /refs/remotes/origin/main
//	otherwise  the single object whose id starts with the label
//
// Every failure wraps ErrNotFound or ErrAmbiguous and names the label.
func (s *Service) Resolve(label string) (*Object, error) {
	if label == LabelWorkTree || label == LabelIndex {
		return nil, fmt.Errorf("resolve %q: pseudo-target is not an object: %w", label, ErrNotFound)
	}
	if path, ok := RefPath(label); ok {
		hash, err := s.resolveRefPath(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", label, err)
		}
		return s.findObject(label, hash)
	}
	hash, err := s.findUniqueByPrefix(label)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", label, err)
	}
	return s.findObject(label, hash)
}

func (s *Service) resolveRefPath(path string) (plumbing.Hash, error) {
	if path == "" {
		return plumbing.ZeroHash, ErrNotFound
	}
	ref, err := s.repo.Reference(plumbing.ReferenceName(path), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, fmt.Errorf("ref %s: %w", path, ErrNotFound)
		}
		return plumbing.ZeroHash, fmt.Errorf("ref %s: %w", path, err)
	}
	slog.Debug("ref resolved", slog.String("ref", path), slog.String("hash", ref.Hash().String()))
	return ref.Hash(), nil
}

func (s *Service) findObject(label string, hash plumbing.Hash) (*Object, error) {
	obj, err := s.repo.Object(plumbing.AnyObject, hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("resolve %q: object %s: %w", label, hash, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve %q: read object %s: %w", label, hash, err)
	}
	return newObject(obj)
}

func (s *Service) findUniqueByPrefix(prefix string) (plumbing.Hash, error) {
	matches, err := s.hashesWithPrefix(prefix)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	switch len(matches) {
	case 0:
		return plumbing.ZeroHash, fmt.Errorf("no object with prefix %s: %w", prefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return plumbing.ZeroHash, fmt.Errorf("%d objects share prefix %s: %w", len(matches), prefix, ErrAmbiguous)
	}
}

// hashesWithPrefix lists the distinct object ids starting with prefix. An
// invalid hex prefix matches nothing.
func (s *Service) hashesWithPrefix(prefix string) ([]plumbing.Hash, error) {
	prefix = strings.ToLower(prefix)
	if !isHexPrefix(prefix) {
		return nil, nil
	}
	if len(prefix) == hashHexSize {
		hash := plumbing.NewHash(prefix)
		if err := s.repo.Storer.HasEncodedObject(hash); err != nil {
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []plumbing.Hash{hash}, nil
	}

	candidates, err := s.prefixCandidates(prefix)
	if err != nil {
		return nil, err
	}
	seen := make(map[plumbing.Hash]struct{}, len(candidates))
	var matches []plumbing.Hash
	for _, h := range candidates {
		if _, ok := seen[h]; ok {
			continue
		}
		if !strings.HasPrefix(h.String(), prefix) {
			continue
		}
		seen[h] = struct{}{}
		matches = append(matches, h)
	}
	slog.Debug("hash prefix lookup", slog.String("prefix", prefix), slog.Int("matches", len(matches)))
	return matches, nil
}

type prefixLister interface {
	HashesWithPrefix(prefix []byte) ([]plumbing.Hash, error)
}

// prefixCandidates returns a superset of the ids starting with prefix. The
// filesystem storer can look up whole bytes directly; anything else is a
// full scan.
func (s *Service) prefixCandidates(prefix string) ([]plumbing.Hash, error) {
	whole := prefix[:len(prefix)/2*2]
	if lister, ok := s.repo.Storer.(prefixLister); ok && whole != "" {
		raw, err := hex.DecodeString(whole)
		if err != nil {
			return nil, err
		}
		return lister.HashesWithPrefix(raw)
	}
	return s.allHashes()
}

// allHashes lists every object id in the store.
func (s *Service) allHashes() ([]plumbing.Hash, error) {
	iter, err := s.repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}
	defer iter.Close()
	var hashes []plumbing.Hash
	err = iter.ForEach(func(obj plumbing.EncodedObject) error {
		hashes = append(hashes, obj.Hash())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}
	return hashes, nil
}

func isHexPrefix(s string) bool {
	if s == "" || len(s) > hashHexSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
