package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

func newIgnoreCmd(a *app) *cobra.Command {
	var pattern bool
	cmd := &cobra.Command{
		Use:   "ignore <path>",
		Short: "Add a path or pattern to .gitignore",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if !pattern {
				if _, err := os.Lstat(args[0]); errors.Is(err, fs.ErrNotExist) {
					p.Warn("file %s does not exist", args[0])
				}
			}
			res, err := svc.Ignore(args[0], pattern)
			if err != nil {
				return err
			}
			if res.Tracked {
				p.Warn("%s is tracked; remove it from the index for the rule to apply", res.Entry)
			}
			return p.Success(map[string]any{
				"message": fmt.Sprintf("Added %s to .gitignore", res.Entry),
				"entry":   res.Entry,
				"tracked": res.Tracked,
			})
		}),
	}
	cmd.Flags().BoolVarP(&pattern, "pattern", "P", false, "add the argument verbatim as a gitignore pattern")
	return cmd
}
