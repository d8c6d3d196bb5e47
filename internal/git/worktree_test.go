package git

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommit_FromUnbornHead(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	if _, err := r.svc.Commit("empty"); !errors.Is(err, ErrNothingStaged) {
		t.Fatalf("Commit() on empty index error = %v, want ErrNothingStaged", err)
	}

	r.write("a.txt", "one\n")
	if err := r.svc.Stage([]string{"a.txt"}); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	hash, err := r.svc.Commit("first")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	_, head, err := r.svc.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if head.Hash != hash || head.Message != "first" {
		t.Fatalf("Head() = %s %q, want %s", head.Hash, head.Message, hash)
	}
	if head.Author.Email != testSignature.Email {
		t.Fatalf("author = %q, want configured identity", head.Author.Email)
	}
	if _, err := r.svc.Commit("again"); !errors.Is(err, ErrNothingStaged) {
		t.Fatalf("Commit() with nothing staged error = %v, want ErrNothingStaged", err)
	}
}

func TestUnstage(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commitFiles("first", map[string]string{"a.txt": "one\n"})
	r.write("a.txt", "two\n")
	r.write("c.txt", "new\n")
	if err := r.svc.Stage([]string{"a.txt", "c.txt"}); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if err := r.svc.Unstage([]string{"c.txt"}); err != nil {
		t.Fatalf("Unstage(c.txt) error = %v", err)
	}
	staged, err := r.svc.stagedChanges()
	if err != nil {
		t.Fatalf("stagedChanges() error = %v", err)
	}
	if got := strings.Join(changeSummary(staged.Changes), ","); got != "M a.txt" {
		t.Fatalf("staged after Unstage(c.txt) = %q", got)
	}

	if err := r.svc.Unstage(nil); err != nil {
		t.Fatalf("Unstage() error = %v", err)
	}
	changes, err := r.svc.LocalChanges()
	if err != nil {
		t.Fatalf("LocalChanges() error = %v", err)
	}
	if changes != (LocalChanges{HasWorktree: true}) {
		t.Fatalf("LocalChanges() = %+v, want worktree changes only", changes)
	}
	if got := r.read("a.txt"); got != "two\n" {
		t.Fatalf("Unstage() touched the worktree: %q", got)
	}
	r.requireNormalIndex()
	r.requireNoConflicts()
}

func TestClean_SavesAndRestores(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commitFiles("first", map[string]string{"a.txt": "one\n", "b.txt": "bee\n"})
	r.write("a.txt", "precious edit\n")
	r.write("b.txt", "other edit\n")

	cleaned, err := r.svc.Clean([]string{"a.txt"})
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if len(cleaned) != 1 || cleaned[0].Path != "a.txt" {
		t.Fatalf("Clean() = %+v, want a.txt", cleaned)
	}
	if got := r.read("a.txt"); got != "one\n" {
		t.Fatalf("a.txt = %q after Clean, want HEAD version", got)
	}
	if got := r.read("b.txt"); got != "other edit\n" {
		t.Fatalf("Clean(a.txt) touched b.txt: %q", got)
	}
	r.requireNormalIndex()

	short := r.svc.ShortID(cleaned[0].Hash)
	if _, err := r.svc.Restore(short, "a.txt"); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := r.read("a.txt"); got != "precious edit\n" {
		t.Fatalf("a.txt = %q after Restore", got)
	}
}

func TestClean_Everything(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commitFiles("first", map[string]string{"a.txt": "one\n", "dir/b.txt": "bee\n"})
	r.write("a.txt", "edit\n")
	r.remove("dir/b.txt")
	r.write("c.txt", "staged new\n")
	r.stage("c.txt")

	if _, err := r.svc.Clean(nil); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	changes, err := r.svc.LocalChanges()
	if err != nil {
		t.Fatalf("LocalChanges() error = %v", err)
	}
	if changes != (LocalChanges{}) {
		t.Fatalf("LocalChanges() = %+v after Clean, want clean", changes)
	}
	if got := r.read("dir/b.txt"); got != "bee\n" {
		t.Fatalf("dir/b.txt = %q after Clean", got)
	}
	r.requireNormalIndex()
	r.requireNoConflicts()
}

func TestRestore_WrongKind(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commitFiles("first", map[string]string{"a.txt": "one\n"})

	if _, err := r.svc.Restore("", "a.txt"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("Restore(commit) error = %v, want ErrWrongKind", err)
	}
}

func TestIgnore(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commitFiles("first", map[string]string{".gitignore": "*.tmp", "a.txt": "one\n"})

	res, err := r.svc.Ignore("*.log", true)
	if err != nil {
		t.Fatalf("Ignore(pattern) error = %v", err)
	}
	if res.Entry != "*.log" || res.Tracked {
		t.Fatalf("Ignore(pattern) = %+v", res)
	}

	res, err = r.svc.Ignore(filepath.Join(r.dir, "a.txt"), false)
	if err != nil {
		t.Fatalf("Ignore(path) error = %v", err)
	}
	if res.Entry != "a.txt" || !res.Tracked {
		t.Fatalf("Ignore(path) = %+v, want tracked a.txt", res)
	}

	if got, want := r.read(".gitignore"), "*.tmp\n*.log\na.txt\n"; got != want {
		t.Fatalf(".gitignore = %q, want %q", got, want)
	}
}

func TestRelPath(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	tests := []struct {
		in   string
		want string
	}{
		{in: r.dir, want: ""},
		{in: filepath.Join(r.dir, "a.txt"), want: "a.txt"},
		{in: filepath.Join(r.dir, "dir", "b.txt"), want: "dir/b.txt"},
	}
	for _, tt := range tests {
		got, err := r.svc.RelPath(tt.in)
		if err != nil {
			t.Fatalf("RelPath(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("RelPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := r.svc.RelPath(filepath.Dir(r.dir)); err == nil {
		t.Fatal("expected error for a path outside the repository")
	}
}
