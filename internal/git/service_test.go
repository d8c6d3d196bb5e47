package git

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestFormatCommitHeader(t *testing.T) {
	ts := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	commit := &object.Commit{
		Hash:    plumbing.NewHash("1234567890abcdef1234567890abcdef12345678"),
		Author:  object.Signature{Name: "Alice", Email: "alice@example.com", When: ts},
		Message: "Subject line\n\nBody line",
	}
	got := FormatCommitHeader(commit)
	if !strings.Contains(got, "commit 1234567890abcdef1234567890abcdef12345678") {
		t.Fatalf("header missing hash: %s", got)
	}
	if !strings.Contains(got, "Author: Alice <alice@example.com>") {
		t.Fatalf("header missing author: %s", got)
	}
	if strings.Contains(got, "Committer:") {
		t.Fatalf("header repeats an identical committer: %s", got)
	}
	if !strings.Contains(got, "Subject line") || !strings.Contains(got, "Body line") {
		t.Fatalf("header missing message lines: %s", got)
	}
}

func TestFormatCommitHeader_DistinctCommitter(t *testing.T) {
	commit := &object.Commit{
		Author:    object.Signature{Name: "Alice", Email: "alice@example.com"},
		Committer: object.Signature{Name: "Bob", Email: "bob@example.com"},
	}
	got := FormatCommitHeader(commit)
	if !strings.Contains(got, "Committer: Bob <bob@example.com>") {
		t.Fatalf("header missing committer: %s", got)
	}
	if !strings.Contains(got, "(no commit message)") {
		t.Fatalf("header missing empty message marker: %s", got)
	}
}

func TestDiscover_FromSubdirectory(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commitFiles("first", map[string]string{"dir/a.txt": "one\n"})

	svc, err := Discover(filepath.Join(r.dir, "dir"))
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if svc.RepoPath() != r.dir {
		t.Fatalf("RepoPath() = %q, want %q", svc.RepoPath(), r.dir)
	}
	where, err := svc.Where()
	if err != nil {
		t.Fatalf("Where() error = %v", err)
	}
	if where != r.dir {
		t.Fatalf("Where() = %q, want %q", where, r.dir)
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Init(dir, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		t.Fatalf("Init() did not create .git: %v", err)
	}
	if _, err := Init(dir, false); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("Init() twice error = %v, want ErrAlreadyExists", err)
	}

	bare, err := Init(t.TempDir(), true)
	if err != nil {
		t.Fatalf("Init(bare) error = %v", err)
	}
	if _, err := bare.Where(); !errors.Is(err, ErrBareRepository) {
		t.Fatalf("Where() on bare error = %v, want ErrBareRepository", err)
	}
}

func TestHead(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	if _, _, err := r.svc.Head(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Head() on unborn error = %v, want ErrNotFound", err)
	}
	c1 := r.commitFiles("first", map[string]string{"a.txt": "one\n"})
	name, commit, err := r.svc.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if name != "master" || commit.Hash != c1 {
		t.Fatalf("Head() = %s %s, want master %s", name, commit.Hash, c1)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	id, err := r.svc.Me()
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if id.Name != testSignature.Name || id.Email != testSignature.Email {
		t.Fatalf("Me() = %+v", id)
	}
}

func TestShortID(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	c1 := r.commitFiles("first", map[string]string{"a.txt": "one\n"})

	short := r.svc.ShortID(c1)
	if len(short) < minShortID || !strings.HasPrefix(c1.String(), short) {
		t.Fatalf("ShortID() = %q", short)
	}
	obj, err := r.svc.Resolve(short)
	if err != nil || obj.Hash != c1 {
		t.Fatalf("Resolve(ShortID()) = %v, %v", obj, err)
	}
}
