package git

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

type Tag struct {
	Name string
	// Hash is what the tag ref points at; Target is the object reached by
	// peeling annotated tags.
	Hash   plumbing.Hash
	Target plumbing.Hash
}

// CreateTag adds a lightweight tag called name pointing at whatever label
// resolves to. Existing tags are left alone.
func (s *Service) CreateTag(name, label string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag not specified")
	}
	obj, err := s.Resolve(label)
	if err != nil {
		return nil, err
	}
	refName := plumbing.NewTagReferenceName(name)
	if _, err := s.repo.Reference(refName, false); err == nil {
		return nil, fmt.Errorf("tag %s: %w", name, ErrAlreadyExists)
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(refName, obj.Hash)); err != nil {
		return nil, fmt.Errorf("write tag %s: %w", name, err)
	}
	slog.Debug("tag created", slog.String("tag", name), slog.String("kind", obj.Kind.String()))
	return &Tag{Name: name, Hash: obj.Hash, Target: obj.Hash}, nil
}

func (s *Service) Tags() ([]Tag, error) {
	refs, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer refs.Close()
	var tags []Tag
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		t := Tag{Name: ref.Name().Short(), Hash: ref.Hash(), Target: ref.Hash()}
		if peeled, ok := s.peelTag(ref.Hash()); ok {
			t.Target = peeled
		}
		tags = append(tags, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tags, func(a, b Tag) int {
		return strings.Compare(a.Name, b.Name)
	})
	return tags, nil
}

// RefLabels maps object ids to the decorations shown next to them:
// "HEAD -> main", branch names and "tag: v1".
func (s *Service) RefLabels() (map[plumbing.Hash][]string, error) {
	labels := map[plumbing.Hash][]string{}
	refs, err := s.repo.References()
	if err != nil {
		return nil, err
	}
	defer refs.Close()
	headRef, err := s.repo.Head()
	var headHash plumbing.Hash
	var headBranch string
	if err == nil && headRef != nil {
		headHash = headRef.Hash()
		if headRef.Name().IsBranch() {
			headBranch = headRef.Name().Short()
		}
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() && !name.IsTag() {
			return nil
		}
		short := name.Short()
		if name.IsRemote() && strings.HasSuffix(short, "/HEAD") {
			return nil
		}
		if name.IsBranch() && short == headBranch {
			return nil
		}
		hash := ref.Hash()
		label := short
		if name.IsTag() {
			label = "tag: " + short
			if peeled, ok := s.peelTag(hash); ok {
				hash = peeled
			}
		}
		labels[hash] = append(labels[hash], label)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		slices.Sort(l)
	}
	if !headHash.IsZero() {
		label := "HEAD"
		if headBranch != "" {
			label = "HEAD -> " + headBranch
		}
		labels[headHash] = append([]string{label}, labels[headHash]...)
	}
	return labels, nil
}

// peelTag follows annotated tag objects to the first non-tag target.
// Lightweight tags report ok=false.
func (s *Service) peelTag(hash plumbing.Hash) (plumbing.Hash, bool) {
	if hash.IsZero() {
		return plumbing.ZeroHash, false
	}
	cur := hash
	for range maxPeelDepth {
		tag, err := s.repo.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		if tag.TargetType != plumbing.TagObject {
			return tag.Target, true
		}
		cur = tag.Target
	}
	return plumbing.ZeroHash, false
}
