package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <path>...",
		Short: "Copy files from the worktree into the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			paths, err := relPaths(svc, args)
			if err != nil {
				return err
			}
			for i, p := range paths {
				if p == "" {
					paths[i] = "."
				}
			}
			if err := svc.Stage(paths); err != nil {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				return p.WriteJSON(map[string]any{"staged": paths})
			}
			for _, path := range paths {
				if err := p.Success(map[string]any{"message": fmt.Sprintf("Staged %s", path)}); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}
