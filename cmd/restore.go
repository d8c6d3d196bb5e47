package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <label> <path>",
		Short: "Write the contents of a blob to a worktree file",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			rel, err := svc.RelPath(args[1])
			if err != nil {
				return err
			}
			hash, err := svc.Restore(args[0], rel)
			if err != nil {
				return err
			}
			return a.printer(cmd).Success(map[string]any{
				"message": fmt.Sprintf("Restored %s from %s", rel, svc.ShortID(hash)),
				"path":    rel,
				"hash":    hash.String(),
			})
		}),
	}
}
