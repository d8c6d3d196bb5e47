package cmd

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/milkvcs/milk/internal/output"
)

var hexID = regexp.MustCompile(`[0-9a-f]{7,40}`)

func TestCommitAndStatus(t *testing.T) {
	r := newCLIRepo(t)
	r.commit("initial", map[string]string{"a.txt": "one\n", "b.txt": "bee\n"})
	if out := r.mustMilk("status"); out != "" {
		t.Fatalf("status on a clean repository =\n%q", out)
	}

	r.write("a.txt", "two\n")
	r.write("new.txt", "fresh\n")
	r.mustMilk("stage", r.path("new.txt"))

	out := r.mustMilk("status")
	want := "     mod a.txt\n new     new.txt\n"
	if out != want {
		t.Fatalf("status =\n%q\nwant\n%q", out, want)
	}

	out = r.mustMilk("--json", "status")
	var entries []statusJSON
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, out)
	}
	if len(entries) != 2 || entries[0].Worktree != "mod" || entries[1].Index != "new" {
		t.Fatalf("status --json = %+v", entries)
	}

	r.write("untracked.txt", "?\n")
	if out := r.mustMilk("status"); strings.Contains(out, "untracked.txt") {
		t.Fatalf("status without -u listed an untracked file:\n%s", out)
	}
	if out := r.mustMilk("status", "-u"); !strings.Contains(out, "     new untracked.txt") {
		t.Fatalf("status -u =\n%s", out)
	}

	r.mustMilk("unstage", r.path("new.txt"))
	if out := r.mustMilk("status"); out != "     mod a.txt\n" {
		t.Fatalf("status after unstage =\n%q", out)
	}
}

func TestCommitNothingStaged(t *testing.T) {
	r := newCLIRepo(t)
	r.commit("initial", map[string]string{"a.txt": "one\n"})

	_, err := r.milk("commit", "-m", "again")
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Fatalf("exit code = %d, want %d (err = %v)", code, output.ExitUserError, err)
	}
	out, err := r.milk("--json", "commit", "-m", "again")
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Fatalf("--json exit code = %d, want %d", code, output.ExitUserError)
	}
	var res struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil || res.Code != output.ExitUserError || res.Error == "" {
		t.Fatalf("--json commit error output = %q (%v)", out, err)
	}
}

func TestDiffCommand(t *testing.T) {
	r := newCLIRepo(t)
	r.commit("initial", map[string]string{"a.txt": "one\n"})
	r.write("a.txt", "two\n")

	out := r.mustMilk("diff")
	for _, want := range []string{"--- a/a.txt", "+++ b/a.txt", "-one", "+two"} {
		if !strings.Contains(out, want) {
			t.Fatalf("diff output missing %q:\n%s", want, out)
		}
	}

	if out := r.mustMilk("diff", "/HEAD", "/INDEX"); out != "" {
		t.Fatalf("nothing staged, diff /HEAD /INDEX = %q", out)
	}

	if out := r.mustMilk("diff", "--name-status", "/WORK", "/INDEX"); out != "M\ta.txt\n" {
		t.Fatalf("diff --name-status /WORK /INDEX = %q", out)
	}

	_, err := r.milk("diff", "/INDEX", "/INDEX")
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Fatalf("degenerate diff exit code = %d, want %d", code, output.ExitUserError)
	}
	_, err = r.milk("diff", "#missing", "/WORK")
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Fatalf("unknown label exit code = %d, want %d", code, output.ExitUserError)
	}
}

func TestBranchCommands(t *testing.T) {
	r := newCLIRepo(t)
	r.commit("initial", map[string]string{"a.txt": "one\n"})

	r.mustMilk("branch", "new", "topic")
	out := r.mustMilk("branch", "ls")
	if !strings.Contains(out, "* master") || !strings.Contains(out, "  topic") {
		t.Fatalf("branch ls =\n%s", out)
	}

	_, err := r.milk("branch", "new", "topic")
	if code := output.GetExitCode(err); code != output.ExitConflict {
		t.Fatalf("duplicate branch exit code = %d, want %d", code, output.ExitConflict)
	}

	r.write("a.txt", "dirty\n")
	_, err = r.milk("branch", "switch", "topic")
	if code := output.GetExitCode(err); code != output.ExitConflict {
		t.Fatalf("dirty switch exit code = %d, want %d", code, output.ExitConflict)
	}
	r.mustMilk("clean")
	r.mustMilk("branch", "switch", "topic")
	if out := r.mustMilk("head"); !strings.HasPrefix(out, "topic ") {
		t.Fatalf("head after switch =\n%s", out)
	}

	r.mustMilk("branch", "rename", "topic", "feature")
	if out := r.mustMilk("--json", "head"); !strings.Contains(out, `"name": "feature"`) {
		t.Fatalf("head --json after rename =\n%s", out)
	}
	_, err = r.milk("branch", "rm", "feature")
	if code := output.GetExitCode(err); code != output.ExitConflict {
		t.Fatalf("removing checked out branch exit code = %d, want %d", code, output.ExitConflict)
	}
	r.mustMilk("branch", "switch", "master")
	r.mustMilk("branch", "rm", "feature")
}

func TestTagShowAndLs(t *testing.T) {
	r := newCLIRepo(t)
	r.commit("initial", map[string]string{"docs/readme.md": "# hi\n", "main.go": "package main\n"})

	r.mustMilk("tag", "v1")
	if out := r.mustMilk("tag"); !strings.HasPrefix(out, "#v1") {
		t.Fatalf("tag =\n%s", out)
	}
	_, err := r.milk("tag", "v1")
	if code := output.GetExitCode(err); code != output.ExitConflict {
		t.Fatalf("duplicate tag exit code = %d, want %d", code, output.ExitConflict)
	}

	out := r.mustMilk("show", "#v1")
	if !strings.HasPrefix(out, "commit ") || !strings.Contains(out, "tag: v1") || !strings.Contains(out, "    initial") {
		t.Fatalf("show #v1 =\n%s", out)
	}

	out = r.mustMilk("ls", "--ref", "#v1")
	if !strings.Contains(out, "docs/") || !strings.Contains(out, "main.go") {
		t.Fatalf("ls =\n%s", out)
	}
	out = r.mustMilk("ls", "docs")
	if !strings.Contains(out, "docs/") || !strings.Contains(out, "readme.md") {
		t.Fatalf("ls docs =\n%s", out)
	}
	_, err = r.milk("ls", "/docs")
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Fatalf("absolute ls exit code = %d, want %d", code, output.ExitUserError)
	}
}

func TestCleanAndRestore(t *testing.T) {
	r := newCLIRepo(t)
	r.commit("initial", map[string]string{"a.txt": "one\n"})
	r.write("a.txt", "precious\n")

	out := r.mustMilk("clean", r.path("a.txt"))
	if got := r.read("a.txt"); got != "one\n" {
		t.Fatalf("a.txt after clean = %q", got)
	}
	id := hexID.FindString(out)
	if id == "" {
		t.Fatalf("clean did not print a blob id:\n%s", out)
	}

	r.mustMilk("restore", id, r.path("a.txt"))
	if got := r.read("a.txt"); got != "precious\n" {
		t.Fatalf("a.txt after restore = %q", got)
	}
}

func TestIdentityAndWhere(t *testing.T) {
	r := newCLIRepo(t)

	if out := r.mustMilk("me"); out != "Test User test@example.com\n" {
		t.Fatalf("me = %q", out)
	}
	out := r.mustMilk("--json", "where")
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if res["bare"] != false || res["path"] == "" {
		t.Fatalf("where --json = %v", res)
	}
}

func TestIgnoreCommand(t *testing.T) {
	r := newCLIRepo(t)
	r.write("build/out.bin", "x")

	r.mustMilk("ignore", "--pattern", "*.log")
	r.mustMilk("ignore", r.path("build"))
	if got := r.read(".gitignore"); got != "*.log\nbuild\n" {
		t.Fatalf(".gitignore = %q", got)
	}
}
