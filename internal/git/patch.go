package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

const DefaultContextLines = 3

// DiffHandle is the result of MakeDiff. Changes are sorted by path and
// already oriented from Old to New.
type DiffHandle struct {
	Old      DiffTarget
	New      DiffTarget
	Reversed bool
	Changes  []Change

	from endpoint
	to   endpoint
}

// FileSection marks the line where a file's patch starts in rendered output.
type FileSection struct {
	Path string
	Line int
}

func (d *DiffHandle) Empty() bool {
	return len(d.Changes) == 0
}

func (d *DiffHandle) Paths() []string {
	paths := make([]string, 0, len(d.Changes))
	for _, c := range d.Changes {
		paths = append(paths, c.Path)
	}
	return paths
}

// NameStatus renders one "<code>\t<path>" line per change.
func (d *DiffHandle) NameStatus() string {
	var b strings.Builder
	for _, c := range d.Changes {
		fmt.Fprintf(&b, "%s\t%s\n", c.Action.Code(), c.Path)
	}
	return b.String()
}

// Patch renders the changes as a unified diff with contextLines lines of
// context around each hunk.
func (d *DiffHandle) Patch(contextLines int) (string, []FileSection, error) {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}
	var b strings.Builder
	lineNo := 0
	var sections []FileSection
	for _, c := range d.Changes {
		from, to, err := d.files(c)
		if err != nil {
			return "", nil, err
		}
		fromName, toName := "a/"+c.Path, "b/"+c.Path
		header := fmt.Sprintf("diff --git %s %s\n", fromName, toName)
		switch c.Action {
		case Added:
			header += fmt.Sprintf("new file mode %s\n", fileMode(to))
			fromName = "/dev/null"
		case Deleted:
			header += fmt.Sprintf("deleted file mode %s\n", fileMode(from))
			toName = "/dev/null"
		default:
			if from != nil && to != nil && from.Mode != to.Mode {
				header += fmt.Sprintf("old mode %s\nnew mode %s\n", modeString(from.Mode), modeString(to.Mode))
			}
		}
		sections = append(sections, FileSection{Path: c.Path, Line: lineNo + 1})
		b.WriteString(header)
		lineNo += strings.Count(header, "\n")

		isBinary, err := binaryChange(from, to)
		if err != nil {
			return "", nil, err
		}
		if isBinary {
			b.WriteString("Binary files differ\n")
			lineNo++
			continue
		}

		fromLines, err := fileLines(from)
		if err != nil {
			return "", nil, err
		}
		toLines, err := fileLines(to)
		if err != nil {
			return "", nil, err
		}
		ud := difflib.UnifiedDiff{
			A:        fromLines,
			B:        toLines,
			FromFile: fromName,
			ToFile:   toName,
			Context:  contextLines,
		}
		diffText, err := difflib.GetUnifiedDiffString(ud)
		if err != nil {
			return "", nil, err
		}
		if diffText == "" {
			continue
		}
		b.WriteString(diffText)
		lineNo += strings.Count(diffText, "\n")
	}
	return b.String(), sections, nil
}

func (d *DiffHandle) files(c Change) (from, to *object.File, err error) {
	if c.Action != Added {
		from, err = d.from.file(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s (%s): %w", c.Path, d.Old, err)
		}
	}
	if c.Action != Deleted {
		to, err = d.to.file(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s (%s): %w", c.Path, d.New, err)
		}
	}
	return from, to, nil
}

func fileMode(f *object.File) string {
	if f == nil {
		return modeString(filemode.Regular)
	}
	return modeString(f.Mode)
}

// modeString drops the leading zero go-git prints for file modes.
func modeString(m filemode.FileMode) string {
	return strings.TrimLeft(m.String(), "0")
}

func binaryChange(from, to *object.File) (bool, error) {
	for _, f := range []*object.File{from, to} {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil {
			return false, err
		}
		if bin {
			return true, nil
		}
	}
	return false, nil
}

func fileLines(f *object.File) ([]string, error) {
	if f == nil {
		return []string{}, nil
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return difflib.SplitLines(content), nil
}
