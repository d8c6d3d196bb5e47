package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func newUnstageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unstage [path]...",
		Short: "Reset index entries to their HEAD version",
		Long:  "Reset index entries to their HEAD version. Without paths the whole index is reset; the worktree is never touched.",
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			paths, err := relPaths(svc, args)
			if err != nil {
				return err
			}
			if err := svc.Unstage(paths); err != nil {
				return err
			}
			msg := "Unstaged all changes"
			if len(paths) > 0 {
				msg = "Unstaged " + strings.Join(paths, ", ")
			}
			return a.printer(cmd).Success(map[string]any{"message": msg, "unstaged": paths})
		}),
	}
}
