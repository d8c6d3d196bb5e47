package theme

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/milkvcs/milk/internal/git"
)

// Highlighter colors unified diffs for a terminal. With syntax enabled the
// code on each +/-/context line is tokenised with the lexer for its file.
type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
	diffLexer chroma.Lexer
	syntax    bool
}

func NewHighlighter(pref Preference, syntax bool) *Highlighter {
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	diffLexer := lexers.Get("diff")
	if diffLexer == nil {
		diffLexer = lexers.Fallback
	}
	return &Highlighter{
		style:     Style(pref),
		formatter: formatter,
		diffLexer: chroma.Coalesce(diffLexer),
		syntax:    syntax,
	}
}

// Diff highlights patch. sections mark where each file starts, as returned
// by DiffHandle.Patch.
func (h *Highlighter) Diff(patch string, sections []git.FileSection) (string, error) {
	if patch == "" {
		return "", nil
	}
	if !h.syntax {
		it, err := h.diffLexer.Tokenise(nil, patch)
		if err != nil {
			return "", err
		}
		return h.format(it)
	}

	starts := make(map[int]string, len(sections))
	for _, sec := range sections {
		starts[sec.Line] = sec.Path
	}
	var tokens []chroma.Token
	var current chroma.Lexer
	inHunk := false
	lines := strings.SplitAfter(patch, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		if path, ok := starts[i+1]; ok {
			current = lexerForPath(path)
			inHunk = false
		}
		if strings.HasPrefix(line, "@@") {
			inHunk = true
		}
		code, prefix, ok := diffLineCode(line)
		if !inHunk || !ok || current == nil {
			lineTokens, err := h.diffLexer.Tokenise(nil, line)
			if err != nil {
				return "", err
			}
			tokens = append(tokens, lineTokens.Tokens()...)
			continue
		}
		tokens = append(tokens, chroma.Token{Type: prefix, Value: line[:1]})
		codeTokens, err := current.Tokenise(nil, code)
		if err != nil {
			return "", err
		}
		tokens = append(tokens, codeTokens.Tokens()...)
	}
	return h.format(chroma.Literator(tokens...))
}

func (h *Highlighter) format(it chroma.Iterator) (string, error) {
	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, it); err != nil {
		return "", fmt.Errorf("format diff: %w", err)
	}
	return b.String(), nil
}

// diffLineCode splits a hunk line into its code and the token type of its
// +/-/space prefix.
func diffLineCode(line string) (string, chroma.TokenType, bool) {
	if line == "" {
		return "", chroma.Text, false
	}
	switch line[0] {
	case '+':
		return line[1:], chroma.GenericInserted, true
	case '-':
		return line[1:], chroma.GenericDeleted, true
	case ' ':
		return line[1:], chroma.Text, true
	default:
		return "", chroma.Text, false
	}
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
