package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
)

func newWhereCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "where",
		Short: "Print the root of the repository's worktree",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			root, err := svc.Where()
			bare := errors.Is(err, git.ErrBareRepository)
			if err != nil && !bare {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				return p.WriteJSON(map[string]any{"path": root, "bare": bare})
			}
			if bare {
				p.Println("Repository is bare.")
				return nil
			}
			p.Println(root)
			return nil
		}),
	}
}
