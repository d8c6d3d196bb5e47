package cmd

import (
	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
	"github.com/milkvcs/milk/internal/output"
)

type treeEntryJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Mode string `json:"mode"`
	Hash string `json:"hash"`
}

func newLsCmd(a *app) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a tree",
		Long: `List the tree a label peels to, or the subtree at path inside it. Every
directory walked on the way is printed first. Directories end in "/",
submodules start with "@".`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			subpath := ""
			if len(args) == 1 {
				subpath = args[0]
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			listing, err := svc.Ls(ref, subpath)
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				entries := make([]treeEntryJSON, 0, len(listing.Entries))
				for _, e := range listing.Entries {
					entries = append(entries, treeEntryJSON{
						Name: e.Name,
						Kind: entryKind(e.Kind),
						Mode: e.Mode.String(),
						Hash: e.Hash.String(),
					})
				}
				return p.WriteJSON(map[string]any{"tree": listing.Tree.String(), "entries": entries})
			}
			name := ref
			if name == "" {
				name = "HEAD"
			}
			p.Println(namedID(p, name, svc.ShortID(listing.Tree)))
			printEntries(p, svc, listing.Parents)
			if len(listing.Parents) > 0 {
				p.Println()
			}
			printEntries(p, svc, listing.Entries)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&ref, "ref", "r", "", "label of the tree to list (default HEAD)")
	return cmd
}

func printEntries(p *output.Printer, svc *git.Service, entries []git.TreeEntry) {
	st := p.Styles()
	abbrev := svc.Abbreviator()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		var name string
		switch e.Kind {
		case git.EntryDir:
			name = st.Key.Render(e.Name + "/")
		case git.EntrySubmodule:
			name = st.Accent.Render("@" + e.Name)
		case git.EntrySymlink:
			name = st.Title.Render(e.Name)
		default:
			name = e.Name
		}
		rows = append(rows, []string{name, st.Dim.Render(abbrev.ShortID(e.Hash))})
	}
	p.Table(nil, rows)
}

func entryKind(k git.EntryKind) string {
	switch k {
	case git.EntryDir:
		return "dir"
	case git.EntrySubmodule:
		return "submodule"
	case git.EntrySymlink:
		return "symlink"
	default:
		return "file"
	}
}
