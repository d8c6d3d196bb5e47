package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [path]...",
		Short: "Discard local changes, keeping a copy in the object store",
		Long: `Discard staged and unstaged changes to tracked files, under the given
paths or everywhere. Each discarded file is saved as a blob first and its id
is printed, so it can be brought back with: milk restore <id> <path>`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			paths, err := relPaths(svc, args)
			if err != nil {
				return err
			}
			cleaned, err := svc.Clean(paths)
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				files := make([]map[string]string, 0, len(cleaned))
				for _, c := range cleaned {
					files = append(files, map[string]string{"path": c.Path, "hash": c.Hash.String()})
				}
				return p.WriteJSON(map[string]any{"cleaned": files})
			}
			if len(cleaned) == 0 {
				return p.Success(map[string]any{"message": "Nothing to clean"})
			}
			abbrev := svc.Abbreviator()
			rows := make([][]string, 0, len(cleaned))
			for _, c := range cleaned {
				rows = append(rows, []string{c.Path, p.Styles().Dim.Render(abbrev.ShortID(c.Hash))})
			}
			p.Table(nil, rows)
			return p.Success(map[string]any{"message": fmt.Sprintf("Cleaned %d file(s)", len(cleaned))})
		}),
	}
}
