package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagCmd(a *app) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "tag [name]",
		Short: "List tags, or create a lightweight tag",
		Long: `Without a name, list every tag with the object it points to. With a name,
create a lightweight tag on the object --ref names (HEAD by default).
Existing tags are never moved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if len(args) == 0 {
				tags, err := svc.Tags()
				if err != nil {
					return err
				}
				if p.IsJSON() {
					out := make([]map[string]string, 0, len(tags))
					for _, t := range tags {
						out = append(out, map[string]string{"name": t.Name, "hash": t.Hash.String(), "target": t.Target.String()})
					}
					return p.WriteJSON(out)
				}
				abbrev := svc.Abbreviator()
				rows := make([][]string, 0, len(tags))
				for _, t := range tags {
					rows = append(rows, []string{p.Styles().Accent.Render("#" + t.Name), p.Styles().Dim.Render(abbrev.ShortID(t.Target))})
				}
				p.Table(nil, rows)
				return nil
			}
			tag, err := svc.CreateTag(args[0], ref)
			if err != nil {
				return err
			}
			return p.Success(map[string]any{
				"message": fmt.Sprintf("Tagged %s as #%s", svc.ShortID(tag.Hash), tag.Name),
				"name":    tag.Name,
				"hash":    tag.Hash.String(),
			})
		}),
	}
	cmd.Flags().StringVarP(&ref, "ref", "r", "", "label of the object to tag (default HEAD)")
	return cmd
}
