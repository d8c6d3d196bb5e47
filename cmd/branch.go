package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
)

type branchJSON struct {
	Name   string `json:"name"`
	Hash   string `json:"hash"`
	Head   bool   `json:"head,omitempty"`
	Remote bool   `json:"remote,omitempty"`
}

func newBranchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch [command]",
		Short: "List and manage branches",
		Long: `List and manage branches. Unknown subcommands run milk-branch-<command>
from PATH.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runExternal(cmd, "milk-branch", args[0], args[1:])
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.AddCommand(
		newBranchLsCmd(a),
		newBranchNewCmd(a),
		newBranchMvCmd(a),
		newBranchRenameCmd(a),
		newBranchRmCmd(a),
		newBranchSwitchCmd(a),
	)
	return cmd
}

func newBranchLsCmd(a *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List branches; the current one is marked with *",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			branches, err := svc.Branches(remote)
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				out := make([]branchJSON, 0, len(branches))
				for _, b := range branches {
					out = append(out, branchJSON{Name: b.Name, Hash: b.Hash.String(), Head: b.Head, Remote: b.Remote})
				}
				return p.WriteJSON(out)
			}
			st := p.Styles()
			abbrev := svc.Abbreviator()
			rows := make([][]string, 0, len(branches))
			for _, b := range branches {
				marker, name := " ", b.Name
				switch {
				case b.Head:
					marker, name = st.Success.Render("*"), st.Success.Render(name)
				case b.Remote:
					name = st.Error.Render(name)
				}
				rows = append(rows, []string{marker + " " + name, st.Dim.Render(abbrev.ShortID(b.Hash))})
			}
			p.Table(nil, rows)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "include remote-tracking branches")
	return cmd
}

func newBranchNewCmd(a *app) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a branch at a commit (HEAD by default)",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			b, err := svc.NewBranch(args[0], ref)
			if err != nil {
				return err
			}
			return a.branchSuccess(cmd, svc, "Created", b)
		}),
	}
	cmd.Flags().StringVarP(&ref, "ref", "r", "", "label of the commit to start from (default HEAD)")
	return cmd
}

func newBranchMvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <name> <label>",
		Short: "Point an existing branch at another commit",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			b, err := svc.MoveBranch(args[0], args[1])
			if err != nil {
				return err
			}
			return a.branchSuccess(cmd, svc, "Moved", b)
		}),
	}
}

func newBranchRenameCmd(a *app) *cobra.Command {
	var remote, force bool
	cmd := &cobra.Command{
		Use:   "rename <from> <to>",
		Short: "Rename a branch",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			if err := svc.RenameBranch(args[0], args[1], remote, force); err != nil {
				return err
			}
			return a.printer(cmd).Success(map[string]any{
				"message": fmt.Sprintf("Renamed branch %s to %s", args[0], args[1]),
				"from":    args[0],
				"to":      args[1],
			})
		}),
	}
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "rename a remote-tracking branch")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing branch")
	return cmd
}

func newBranchRmCmd(a *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a branch",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			if err := svc.DeleteBranch(args[0], remote); err != nil {
				return err
			}
			return a.printer(cmd).Success(map[string]any{
				"message": fmt.Sprintf("Deleted branch %s", args[0]),
				"name":    args[0],
			})
		}),
	}
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "delete a remote-tracking branch")
	return cmd
}

func newBranchSwitchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Check out a branch; refused while there are local changes",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			svc, err := a.service()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			names, head, err := svc.LocalBranchNames()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			out := make([]string, 0, len(names))
			for _, n := range names {
				if n != head {
					out = append(out, n)
				}
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			if err := svc.SwitchBranch(args[0]); err != nil {
				return err
			}
			return a.printer(cmd).Success(map[string]any{
				"message": fmt.Sprintf("Switched to branch %s", args[0]),
				"name":    args[0],
			})
		}),
	}
}

func (a *app) branchSuccess(cmd *cobra.Command, svc *git.Service, verb string, b *git.Branch) error {
	return a.printer(cmd).Success(map[string]any{
		"message": fmt.Sprintf("%s branch %s at %s", verb, b.Name, svc.ShortID(b.Hash)),
		"name":    b.Name,
		"hash":    b.Hash.String(),
	})
}
