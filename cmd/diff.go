package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
	"github.com/milkvcs/milk/internal/output"
	"github.com/milkvcs/milk/internal/theme"
)

type changeJSON struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

type diffOptions struct {
	contextLines int
	nameStatus   bool
	untracked    bool
	noSyntax     bool
	follow       bool
}

func newDiffCmd(a *app) *cobra.Command {
	var opts diffOptions
	cmd := &cobra.Command{
		Use:   "diff [old [new]]",
		Short: "Compare two trees, the index or the worktree",
		Long: `Compare old with new. Either side is a label, /INDEX for the staging area
or /WORK for the checked-out files. With no arguments the index is compared
with the worktree; with one, that label is compared with the worktree.

Comparing /INDEX with itself or /WORK with itself is an error.`,
		Example: `  milk diff                 # unstaged changes
  milk diff /HEAD /INDEX    # staged changes
  milk diff @main @topic    # between two branches
  milk diff /WORK /INDEX    # unstaged changes, reversed`,
		Args: cobra.MaximumNArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			oldLabel, newLabel := git.LabelIndex, git.LabelWorkTree
			switch len(args) {
			case 1:
				oldLabel = args[0]
			case 2:
				oldLabel, newLabel = args[0], args[1]
			}
			if !cmd.Flags().Changed("context") {
				opts.contextLines = a.cfg.ContextLines
			}
			if !cmd.Flags().Changed("untracked") {
				opts.untracked = a.cfg.ShowUntracked
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			return a.show(cmd, svc, opts.follow, func(w io.Writer) error {
				d, err := makeDiff(svc, oldLabel, newLabel, opts.untracked)
				if err != nil {
					return err
				}
				return a.writeDiff(cmd, w, d, opts)
			})
		}),
	}
	f := cmd.Flags()
	f.IntVarP(&opts.contextLines, "context", "U", 3, "lines of context around each change")
	f.BoolVar(&opts.nameStatus, "name-status", false, "only list changed paths with their status")
	f.BoolVarP(&opts.untracked, "untracked", "u", false, "include untracked files on the worktree side")
	f.BoolVar(&opts.noSyntax, "no-syntax", false, "color diff markers only, without syntax highlighting")
	f.BoolVarP(&opts.follow, "watch", "w", false, "redraw whenever the repository changes")
	return cmd
}

func makeDiff(svc *git.Service, oldLabel, newLabel string, untracked bool) (*git.DiffHandle, error) {
	var diffOpts []git.DiffOption
	if untracked {
		diffOpts = append(diffOpts, git.WithUntracked())
	}
	return svc.MakeDiff(git.Classify(oldLabel), git.Classify(newLabel), diffOpts...)
}

func (a *app) writeDiff(cmd *cobra.Command, w io.Writer, d *git.DiffHandle, opts diffOptions) error {
	p := a.printerTo(cmd, w)
	if p.IsJSON() {
		changes := make([]changeJSON, 0, len(d.Changes))
		for _, c := range d.Changes {
			entry := changeJSON{Action: c.Action.String(), Path: c.Path}
			if !c.From.IsZero() {
				entry.From = c.From.String()
			}
			if !c.To.IsZero() {
				entry.To = c.To.String()
			}
			changes = append(changes, entry)
		}
		return p.WriteJSON(map[string]any{
			"old":      d.Old.String(),
			"new":      d.New.String(),
			"reversed": d.Reversed,
			"changes":  changes,
		})
	}
	if opts.nameStatus {
		p.Print("%s", d.NameStatus())
		return nil
	}
	patch, sections, err := d.Patch(opts.contextLines)
	if err != nil {
		return err
	}
	return a.writePatch(p, patch, sections, opts.noSyntax)
}

// writePatch prints patch, highlighted when color is enabled.
func (a *app) writePatch(p *output.Printer, patch string, sections []git.FileSection, noSyntax bool) error {
	if p.IsTTY() {
		hl := theme.NewHighlighter(theme.PreferenceFromString(a.theme), a.cfg.Syntax && !noSyntax)
		colored, err := hl.Diff(patch, sections)
		if err != nil {
			return err
		}
		patch = colored
	}
	p.Print("%s", patch)
	return nil
}
