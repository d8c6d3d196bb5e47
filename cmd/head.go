package cmd

import (
	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
)

func newHeadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "head",
		Short: "Show the branch and commit HEAD points to",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			name, commit, err := svc.Head()
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				return p.WriteJSON(map[string]any{"name": name, "hash": commit.Hash.String()})
			}
			p.Println(namedID(p, name, svc.ShortID(commit.Hash)) + decoration(p, svc, commit.Hash))
			p.Print("%s", git.FormatCommitHeader(commit))
			return nil
		}),
	}
}
