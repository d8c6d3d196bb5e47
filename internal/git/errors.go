package git

import "errors"

// Resolution and comparison failures. They are deterministic for a given
// repository state and label, so callers report them instead of retrying.
var (
	// ErrNotFound reports a label that names no ref, tag, branch or object.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous reports an abbreviated hash shared by several objects.
	ErrAmbiguous = errors.New("ambiguous object name")
	// ErrWrongKind reports an object that exists but cannot serve the
	// requested purpose, e.g. a blob where a tree is needed.
	ErrWrongKind = errors.New("wrong object kind")
	// ErrDegenerateComparison reports a diff whose two sides are the same
	// pseudo-target (index/index or worktree/worktree).
	ErrDegenerateComparison = errors.New("degenerate comparison")
)

var (
	ErrBareRepository = errors.New("repository is bare")
	ErrNothingStaged  = errors.New("nothing staged to commit")
	ErrDirtyWorktree  = errors.New("local changes would be overwritten")
	ErrAlreadyExists  = errors.New("already exists")
	ErrCheckedOut     = errors.New("branch is checked out")
	ErrAbsolutePath   = errors.New("path must be relative")
)
