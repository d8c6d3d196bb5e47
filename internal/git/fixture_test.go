package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var testSignature = object.Signature{
	Name:  "Test User",
	Email: "test@example.com",
	When:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
}

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gitlib.Repository
	svc  *Service
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	cfg, err := repo.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	cfg.User.Name = testSignature.Name
	cfg.User.Email = testSignature.Email
	if err := repo.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, svc: NewWithRepository(repo, dir)}
}

func (r *testRepo) write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func (r *testRepo) read(path string) string {
	r.t.Helper()
	data, err := os.ReadFile(filepath.Join(r.dir, filepath.FromSlash(path)))
	if err != nil {
		r.t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func (r *testRepo) remove(path string) {
	r.t.Helper()
	if err := os.Remove(filepath.Join(r.dir, filepath.FromSlash(path))); err != nil {
		r.t.Fatalf("Remove(%s) error = %v", path, err)
	}
}

func (r *testRepo) stage(paths ...string) {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree() error = %v", err)
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			r.t.Fatalf("Add(%s) error = %v", p, err)
		}
	}
}

func (r *testRepo) commit(msg string) plumbing.Hash {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree() error = %v", err)
	}
	sig := testSignature
	hash, err := wt.Commit(msg, &gitlib.CommitOptions{Author: &sig, AllowEmptyCommits: true})
	if err != nil {
		r.t.Fatalf("Commit() error = %v", err)
	}
	return hash
}

// commitFiles writes, stages and commits the given files.
func (r *testRepo) commitFiles(msg string, files map[string]string) plumbing.Hash {
	r.t.Helper()
	for path, content := range files {
		r.write(path, content)
		r.stage(path)
	}
	return r.commit(msg)
}

func (r *testRepo) lightweightTag(name string, hash plumbing.Hash) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), hash)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("SetReference() error = %v", err)
	}
}

func (r *testRepo) annotatedTag(name string, hash plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	sig := testSignature
	ref, err := r.repo.CreateTag(name, hash, &gitlib.CreateTagOptions{Tagger: &sig, Message: name})
	if err != nil {
		r.t.Fatalf("CreateTag() error = %v", err)
	}
	return ref.Hash()
}

func (r *testRepo) blob(content string) plumbing.Hash {
	r.t.Helper()
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		r.t.Fatalf("Writer() error = %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		r.t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		r.t.Fatalf("Close() error = %v", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("SetEncodedObject() error = %v", err)
	}
	return hash
}

func (r *testRepo) commitTree(hash plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		r.t.Fatalf("CommitObject() error = %v", err)
	}
	return c.TreeHash
}

func changeSummary(changes []Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Action.Code()+" "+c.Path)
	}
	return out
}

// requireNormalIndex fails if any index entry is left at a merge stage.
func (r *testRepo) requireNormalIndex() {
	r.t.Helper()
	idx, err := r.repo.Storer.Index()
	if err != nil {
		r.t.Fatalf("Index() error = %v", err)
	}
	for _, e := range idx.Entries {
		if e.Stage != stageNormal {
			r.t.Fatalf("index entry %s at stage %d, want %d", e.Name, e.Stage, stageNormal)
		}
	}
}

// requireNoConflicts fails if Status reports a conflicted path.
func (r *testRepo) requireNoConflicts() {
	r.t.Helper()
	entries, err := r.svc.Status(StatusOptions{})
	if err != nil {
		r.t.Fatalf("Status() error = %v", err)
	}
	for _, e := range entries {
		if e.Conflict {
			r.t.Fatalf("Status() reports %s as conflicted: %+v", e.Path, entries)
		}
	}
}
