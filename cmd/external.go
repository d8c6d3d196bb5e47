package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/output"
)

var lookPath = exec.LookPath

// runExternal runs <prefix>-<name> from PATH with the remaining arguments
// and the caller's standard streams. A non-zero exit becomes this
// process's exit code.
func runExternal(cmd *cobra.Command, prefix, name string, args []string) error {
	program := prefix + "-" + name
	path, err := lookPath(program)
	if err != nil {
		return output.NewUserError(fmt.Sprintf("unknown command %q for %q (no %s in PATH)", name, cmd.CommandPath(), program))
	}
	slog.Debug("running external command", slog.String("path", path), slog.Any("args", args))

	ext := exec.CommandContext(cmd.Context(), path, args...)
	ext.Stdin = cmd.InOrStdin()
	ext.Stdout = cmd.OutOrStdout()
	ext.Stderr = cmd.ErrOrStderr()
	if err := ext.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				code = output.ExitSystemError
			}
			return &output.ExitError{
				Code:    code,
				Message: fmt.Sprintf("%s exited with code %d", program, code),
				Cause:   err,
			}
		}
		return output.NewSystemErrorWithCause(fmt.Sprintf("couldn't execute command: %s", program), err)
	}
	return nil
}
