package cmd

import (
	"github.com/spf13/cobra"
)

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the identity new commits are signed with",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			id, err := svc.Me()
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				return p.WriteJSON(map[string]any{"name": id.Name, "email": id.Email})
			}
			st := p.Styles()
			p.Println(st.Key.Render(id.Name), st.Dim.Render(id.Email))
			return nil
		}),
	}
}
