package git

import (
	"errors"
	"testing"
)

func TestLs(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	c1 := r.commitFiles("first", map[string]string{
		"a.txt":         "one\n",
		"dir/b.txt":     "bee\n",
		"dir/sub/c.txt": "sea\n",
	})

	root, err := r.svc.Ls("", "")
	if err != nil {
		t.Fatalf("Ls() error = %v", err)
	}
	if root.Tree != r.commitTree(c1) {
		t.Fatalf("Ls() tree = %s, want %s", root.Tree, r.commitTree(c1))
	}
	if len(root.Entries) != 2 || root.Entries[0].Name != "a.txt" || root.Entries[1].Kind != EntryDir {
		t.Fatalf("Ls() entries = %+v", root.Entries)
	}

	sub, err := r.svc.Ls(c1.String(), "dir/sub")
	if err != nil {
		t.Fatalf("Ls(dir/sub) error = %v", err)
	}
	if len(sub.Parents) != 2 || sub.Parents[0].Name != "dir" || sub.Parents[1].Name != "sub" {
		t.Fatalf("Ls(dir/sub) parents = %+v", sub.Parents)
	}
	if len(sub.Entries) != 1 || sub.Entries[0].Name != "c.txt" || sub.Entries[0].Kind != EntryFile {
		t.Fatalf("Ls(dir/sub) entries = %+v", sub.Entries)
	}

	tests := []struct {
		subpath string
		want    error
	}{
		{subpath: "/dir", want: ErrAbsolutePath},
		{subpath: "missing", want: ErrNotFound},
		{subpath: "dir/nope", want: ErrNotFound},
		{subpath: "a.txt", want: ErrWrongKind},
	}
	for _, tt := range tests {
		if _, err := r.svc.Ls("", tt.subpath); !errors.Is(err, tt.want) {
			t.Fatalf("Ls(%q) error = %v, want %v", tt.subpath, err, tt.want)
		}
	}
}

func TestLs_TreeLabel(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	c1 := r.commitFiles("first", map[string]string{"a.txt": "one\n"})
	blob := r.blob("one\n")

	listing, err := r.svc.Ls(r.commitTree(c1).String(), ".")
	if err != nil {
		t.Fatalf("Ls(tree) error = %v", err)
	}
	if len(listing.Entries) != 1 || listing.Entries[0].Hash != blob {
		t.Fatalf("Ls(tree) entries = %+v", listing.Entries)
	}
	if _, err := r.svc.Ls(blob.String(), ""); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("Ls(blob) error = %v, want ErrWrongKind", err)
	}
}
