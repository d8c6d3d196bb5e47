package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
	"github.com/milkvcs/milk/internal/output"
	"github.com/milkvcs/milk/internal/watch"
)

const clearScreen = "\x1b[H\x1b[2J"

// render draws one frame of a command's output into w.
type render func(w io.Writer) error

// show runs r once, or with follow set, again after every change to the
// repository until the command's context is cancelled.
func (a *app) show(cmd *cobra.Command, svc *git.Service, follow bool, r render) error {
	out := cmd.OutOrStdout()
	if !follow {
		return r(out)
	}
	if a.json {
		return output.NewUserError("--watch cannot be combined with --json")
	}
	root, err := svc.Where()
	if err != nil {
		return err
	}
	tty := output.IsTTY(out)
	return watch.Run(cmd.Context(), root, watch.DefaultDelay, func() {
		var buf bytes.Buffer
		if tty {
			buf.WriteString(clearScreen)
		}
		if err := r(&buf); err != nil {
			slog.Debug("render failed", slog.Any("error", err))
			fmt.Fprintf(&buf, "%s\n", err)
		}
		if _, err := out.Write(buf.Bytes()); err != nil {
			slog.Error("write output", slog.Any("error", err))
		}
	})
}
