package output

import (
	"errors"

	"github.com/milkvcs/milk/internal/git"
)

// Exit codes:
// 0 = Success
// 1 = User error (bad label, not found, ambiguous, degenerate comparison)
// 2 = System error (I/O, object store)
// 3 = Conflict (branch or tag exists, local changes block a switch)
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
	ExitConflict    = 3
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

func NewUserError(message string) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message}
}

// NewUserErrorWithCause reports a bad invocation or input that came with an
// underlying error, such as an unreadable config file.
func NewUserErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message, Cause: cause}
}

func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message, Cause: cause}
}

var (
	userErrors = []error{
		git.ErrNotFound,
		git.ErrAmbiguous,
		git.ErrWrongKind,
		git.ErrDegenerateComparison,
		git.ErrAbsolutePath,
		git.ErrNothingStaged,
		git.ErrBareRepository,
	}
	conflictErrors = []error{
		git.ErrDirtyWorktree,
		git.ErrAlreadyExists,
		git.ErrCheckedOut,
	}
)

// FromError classifies err by the repository sentinels it wraps. Errors
// that already carry an exit code pass through unchanged; anything
// unrecognised is a system error.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: classify(err), Message: err.Error(), Cause: err}
}

func classify(err error) int {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return ExitConflict
		}
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return ExitUserError
		}
	}
	return ExitSystemError
}

// GetExitCode returns the code the process should exit with. Errors that
// never went through FromError are usage errors from flag parsing.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUserError
}
