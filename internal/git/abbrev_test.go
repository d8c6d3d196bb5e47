package git

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
)

func TestShortestUnique(t *testing.T) {
	t.Parallel()

	target := plumbing.NewHash("1234567890abcdef1234567890abcdef12345678")
	sorted := sortHashes([]plumbing.Hash{
		plumbing.NewHash("123456789fffffffffffffffffffffffffffffff"),
		target,
		plumbing.NewHash("1234567000000000000000000000000000000000"),
		plumbing.NewHash("ffffffffffffffffffffffffffffffffffffffff"),
		target,
	})
	if len(sorted) != 4 {
		t.Fatalf("sortHashes() kept %d ids, want 4", len(sorted))
	}

	tests := []struct {
		name string
		ids  []plumbing.Hash
		want string
	}{
		{name: "alone", ids: []plumbing.Hash{target}, want: "1234567"},
		{name: "empty listing", ids: nil, want: "1234567"},
		{name: "close neighbour", ids: sorted, want: "1234567890"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortestUnique(target, tt.ids); got != tt.want {
				t.Fatalf("shortestUnique() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAbbreviator_MatchesResolve(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	c1 := r.commitFiles("first", map[string]string{"a.txt": "one\n", "b.txt": "bee\n"})
	c2 := r.commitFiles("second", map[string]string{"a.txt": "two\n"})

	abbrev := r.svc.Abbreviator()
	for _, hash := range []plumbing.Hash{c1, c2, r.commitTree(c1), r.commitTree(c2)} {
		short := abbrev.ShortID(hash)
		if short != r.svc.ShortID(hash) {
			t.Fatalf("Abbreviator.ShortID(%s) = %q, Service.ShortID = %q", hash, short, r.svc.ShortID(hash))
		}
		obj, err := r.svc.Resolve(short)
		if err != nil || obj.Hash != hash {
			t.Fatalf("Resolve(%q) = %v, %v, want %s", short, obj, err, hash)
		}
	}
}
