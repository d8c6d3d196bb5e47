package git

import (
	"bytes"
	"log/slog"
	"slices"

	"github.com/go-git/go-git/v5/plumbing"
)

// Abbreviator shortens object ids against one listing of the object store.
// Ids are bucketed by their first byte when the storer can look them up
// that way; otherwise the whole store is listed once.
type Abbreviator struct {
	svc     *Service
	buckets map[byte][]plumbing.Hash
	all     []plumbing.Hash
	listed  bool
}

func (s *Service) Abbreviator() *Abbreviator {
	return &Abbreviator{svc: s, buckets: make(map[byte][]plumbing.Hash)}
}

// ShortID returns the shortest prefix of hash, at least minShortID long,
// that no other listed object shares. Lookup failures give the full id.
func (a *Abbreviator) ShortID(hash plumbing.Hash) string {
	ids, err := a.neighbours(hash)
	if err != nil {
		slog.Debug("abbreviate object id", slog.String("hash", hash.String()), slog.Any("error", err))
		return hash.String()
	}
	return shortestUnique(hash, ids)
}

func (a *Abbreviator) neighbours(hash plumbing.Hash) ([]plumbing.Hash, error) {
	if lister, ok := a.svc.repo.Storer.(prefixLister); ok {
		if ids, ok := a.buckets[hash[0]]; ok {
			return ids, nil
		}
		ids, err := lister.HashesWithPrefix(hash[:1])
		if err != nil {
			return nil, err
		}
		ids = sortHashes(ids)
		a.buckets[hash[0]] = ids
		return ids, nil
	}
	if !a.listed {
		ids, err := a.svc.allHashes()
		if err != nil {
			return nil, err
		}
		a.all = sortHashes(ids)
		a.listed = true
	}
	return a.all, nil
}

func sortHashes(ids []plumbing.Hash) []plumbing.Hash {
	slices.SortFunc(ids, compareHashes)
	return slices.Compact(ids)
}

func compareHashes(a, b plumbing.Hash) int {
	return bytes.Compare(a[:], b[:])
}

// shortestUnique abbreviates hash so it differs from its neighbours in the
// sorted ids, which need not contain hash itself.
func shortestUnique(hash plumbing.Hash, sorted []plumbing.Hash) string {
	full := hash.String()
	n := minShortID
	i, _ := slices.BinarySearchFunc(sorted, hash, compareHashes)
	for _, j := range []int{i - 1, i, i + 1} {
		if j < 0 || j >= len(sorted) || sorted[j] == hash {
			continue
		}
		n = max(n, commonHexPrefix(full, sorted[j].String())+1)
	}
	return full[:min(n, len(full))]
}

func commonHexPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
