package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/output"
)

func newCommitCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit -m <message>",
		Short: "Record the index as a new commit on HEAD",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(message) == "" {
				return output.NewUserError("empty commit message")
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			hash, err := svc.Commit(message)
			if err != nil {
				return err
			}
			short := svc.ShortID(hash)
			subject, _, _ := strings.Cut(message, "\n")
			return a.printer(cmd).Success(map[string]any{
				"message": fmt.Sprintf("Committed %s %s", short, subject),
				"hash":    hash.String(),
			})
		}),
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
