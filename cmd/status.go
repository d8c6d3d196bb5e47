package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
	"github.com/milkvcs/milk/internal/output"
)

type statusJSON struct {
	Path     string `json:"path"`
	OrigPath string `json:"orig_path,omitempty"`
	Index    string `json:"index,omitempty"`
	Worktree string `json:"worktree,omitempty"`
	Ignored  bool   `json:"ignored,omitempty"`
	Conflict bool   `json:"conflict,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	var (
		untracked bool
		ignored   bool
		follow    bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show staged, unstaged and untracked changes",
		Long: `Show one line per changed path. The first column compares HEAD with the
index, the second the index with the worktree: new, mod, del, ren or typ.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("untracked") {
				untracked = a.cfg.ShowUntracked
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			opts := git.StatusOptions{ShowUntracked: untracked, ShowIgnored: ignored}
			return a.show(cmd, svc, follow, func(w io.Writer) error {
				entries, err := svc.Status(opts)
				if err != nil {
					return err
				}
				printStatus(a.printerTo(cmd, w), entries)
				return nil
			})
		}),
	}
	cmd.Flags().BoolVarP(&untracked, "untracked", "u", false, "list untracked files")
	cmd.Flags().BoolVar(&ignored, "ignored", false, "list ignored files")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "redraw whenever the repository changes")
	return cmd
}

func printStatus(p *output.Printer, entries []git.StatusEntry) {
	if p.IsJSON() {
		out := make([]statusJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, statusJSON{
				Path:     e.Path,
				OrigPath: e.OrigPath,
				Index:    e.Index.String(),
				Worktree: e.Worktree.String(),
				Ignored:  e.Ignored,
				Conflict: e.Conflict,
			})
		}
		_ = p.WriteJSON(out)
		return
	}
	st := p.Styles()
	for _, e := range entries {
		path := e.Path
		if e.OrigPath != "" {
			path = e.OrigPath + " -> " + e.Path
		}
		switch {
		case e.Ignored:
			p.Println(st.Key.Render(" ignored"), path)
		case e.Conflict:
			p.Println(st.Error.Render("conflict"), path)
		default:
			p.Println("", statusCell(st, e.Index, false), statusCell(st, e.Worktree, p.IsTTY()), path)
		}
	}
}

func statusCell(st *output.Styles, code git.StatusCode, bold bool) string {
	var style lipgloss.Style
	switch code {
	case git.StatusNew, git.StatusModified:
		style = st.Success
	case git.StatusDeleted:
		style = st.Error
	case git.StatusRenamed, git.StatusTypeChange:
		style = st.Title
	default:
		return "   "
	}
	if bold {
		style = style.Bold(true)
	}
	return style.Render(code.String())
}
