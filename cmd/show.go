package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/git"
	"github.com/milkvcs/milk/internal/output"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		contextLines int
		noSyntax     bool
	)
	cmd := &cobra.Command{
		Use:   "show [label]",
		Short: "Describe the object a label names",
		Long: `Print the kind and id of the object a label names, followed by its
contents: the header and patch of a commit, the bytes of a blob, the
entries of a tree or the message and target of a tag.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			label := ""
			if len(args) == 1 {
				label = args[0]
			}
			if !cmd.Flags().Changed("context") {
				contextLines = a.cfg.ContextLines
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			obj, err := svc.Resolve(label)
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if p.IsJSON() {
				return p.WriteJSON(map[string]any{"kind": obj.Kind.String(), "hash": obj.Hash.String()})
			}
			p.Println(namedID(p, obj.Kind.String(), svc.ShortID(obj.Hash)) + decoration(p, svc, obj.Hash))
			return a.showObject(p, svc, obj, contextLines, noSyntax)
		}),
	}
	cmd.Flags().IntVarP(&contextLines, "context", "U", 3, "lines of context in commit patches")
	cmd.Flags().BoolVar(&noSyntax, "no-syntax", false, "color diff markers only, without syntax highlighting")
	return cmd
}

func (a *app) showObject(p *output.Printer, svc *git.Service, obj *git.Object, contextLines int, noSyntax bool) error {
	switch obj.Kind {
	case git.KindCommit:
		commit, _ := obj.Commit()
		text, sections, err := svc.ShowCommit(commit, contextLines)
		if err != nil {
			return err
		}
		return a.writePatch(p, text, sections, noSyntax)
	case git.KindBlob:
		blob, _ := obj.Blob()
		r, err := blob.Reader()
		if err != nil {
			return fmt.Errorf("read blob %s: %w", blob.Hash, err)
		}
		defer r.Close()
		if _, err := io.Copy(p.Writer(), r); err != nil {
			return fmt.Errorf("read blob %s: %w", blob.Hash, err)
		}
		return nil
	case git.KindTree:
		listing, err := svc.Ls(obj.Hash.String(), "")
		if err != nil {
			return err
		}
		printEntries(p, svc, listing.Entries)
		return nil
	case git.KindTag:
		tag, _ := obj.Tag()
		p.KeyValue("Tag", tag.Name)
		p.KeyValue("Tagger", fmt.Sprintf("%s <%s>  %s", tag.Tagger.Name, tag.Tagger.Email, tag.Tagger.When.Format("2006-01-02 15:04:05 -0700")))
		p.KeyValue("Target", fmt.Sprintf("%s %s", tag.TargetType, svc.ShortID(tag.Target)))
		if msg := strings.TrimRight(tag.Message, "\n"); msg != "" {
			p.Println()
			for line := range strings.SplitSeq(msg, "\n") {
				p.Println("   ", line)
			}
		}
		return nil
	default:
		return nil
	}
}

// decoration lists the refs pointing at hash, e.g. " (HEAD -> main, tag: v1)".
func decoration(p *output.Printer, svc *git.Service, hash plumbing.Hash) string {
	labels, err := svc.RefLabels()
	if err != nil || len(labels[hash]) == 0 {
		return ""
	}
	return " " + p.Styles().Warning.Render("("+strings.Join(labels[hash], ", ")+")")
}

// namedID renders "name id" with the id dimmed.
func namedID(p *output.Printer, name, id string) string {
	st := p.Styles()
	return st.Accent.Render(name) + " " + st.Dim.Render(id)
}
