package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
)

func newInitCmd(a *app) *cobra.Command {
	var bare bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			path := a.repoPath
			if len(args) == 1 {
				path = args[0]
			}
			svc, err := git.Init(path, bare)
			if err != nil {
				return err
			}
			return a.printer(cmd).Success(map[string]any{
				"message": fmt.Sprintf("Initialized repository in %s", svc.RepoPath()),
				"path":    svc.RepoPath(),
				"bare":    bare,
			})
		}),
	}
	cmd.Flags().BoolVar(&bare, "bare", false, "create a repository without a worktree")
	return cmd
}
