package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes command results either as indented JSON or as styled
// text. Errors and warnings go to a separate writer in text mode.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	json   bool
	isTTY  bool
	quiet  bool
	styles *Styles
}

// Styles are the lipgloss styles commands render with. All of them are
// plain when color is off.
type Styles struct {
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Dim     lipgloss.Style
	Title   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Accent  lipgloss.Style
}

func newStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{
			Error: plain, Success: plain, Warning: plain, Bold: plain,
			Dim: plain, Title: plain, Key: plain, Value: plain, Accent: plain,
		}
	}
	fg := func(ansi string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ansi))
	}
	return &Styles{
		Error:   fg("9").Bold(true),
		Success: fg("10"),
		Warning: fg("11"),
		Bold:    lipgloss.NewStyle().Bold(true),
		Dim:     fg("8"),
		Title:   fg("12").Bold(true),
		Key:     fg("14"),
		Value:   lipgloss.NewStyle(),
		Accent:  fg("13"),
	}
}

// NewPrinter returns a printer writing to w. color enables styles in text
// mode; it is ignored for JSON.
func NewPrinter(w io.Writer, jsonMode bool, color bool) *Printer {
	return &Printer{
		w:      w,
		errW:   w,
		json:   jsonMode,
		isTTY:  color,
		styles: newStyles(color),
	}
}

// WithStderr sends text-mode errors and warnings to w.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.errW = w
	return p
}

func (p *Printer) WithQuiet(quiet bool) *Printer {
	p.quiet = quiet
	return p
}

func (p *Printer) IsJSON() bool      { return p.json }
func (p *Printer) IsTTY() bool       { return p.isTTY }
func (p *Printer) Styles() *Styles   { return p.styles }
func (p *Printer) Writer() io.Writer { return p.w }

// Success reports a finished action. JSON mode writes data as an object.
// Text mode prints data["message"], or every key when there is none, and
// nothing at all when quiet.
func (p *Printer) Success(data map[string]any) error {
	if p.json {
		return p.WriteJSON(data)
	}
	if p.quiet {
		return nil
	}
	if msg, ok := data["message"].(string); ok {
		mustWrite(fmt.Fprintln(p.w, p.styles.Success.Render(msg)))
		return nil
	}
	for _, key := range sortedKeys(data) {
		mustWrite(fmt.Fprintf(p.w, "%s: %v\n", p.styles.Bold.Render(key), data[key]))
	}
	return nil
}

// Error prints err with its exit code as {"error", "code"} in JSON mode
// and as "Error: msg" otherwise.
func (p *Printer) Error(err error) {
	code, msg := ExitUserError, err.Error()
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code, msg = exitErr.Code, exitErr.Message
	}
	if p.json {
		mustWrite(p.w.Write(errorJSON(msg, code)))
		mustWrite(fmt.Fprintln(p.w))
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.Error.Render("Error"), msg))
}

func (p *Printer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		_ = p.WriteJSON(map[string]any{"warning": msg})
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.Warning.Render("Warning"), msg))
}

func (p *Printer) Print(format string, args ...any) {
	mustWrite(fmt.Fprintf(p.w, format, args...))
}

func (p *Printer) Println(args ...any) {
	mustWrite(fmt.Fprintln(p.w, args...))
}

func (p *Printer) WriteJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func errorJSON(message string, code int) []byte {
	out, _ := json.Marshal(struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{message, code})
	return out
}

// mustWrite panics on a failed write; there is nowhere left to report it.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}

// Table aligns rows into columns two spaces apart, with bold headers when
// headers is non-nil. The last cell of a row is never padded.
func (p *Printer) Table(headers []string, rows [][]string) {
	widths := columnWidths(headers, rows)
	if len(widths) == 0 {
		return
	}
	if len(headers) > 0 {
		p.tableRow(headers, widths, p.styles.Bold)
	}
	for _, row := range rows {
		p.tableRow(row, widths, p.styles.Value)
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	var widths []int
	measure := func(cells []string) {
		for i, cell := range cells {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}
	return widths
}

func (p *Printer) tableRow(row []string, widths []int, style lipgloss.Style) {
	cells := make([]string, len(row))
	for i, cell := range row {
		if i < len(row)-1 {
			cell = padRight(cell, widths[i])
		}
		cells[i] = style.Render(cell)
	}
	mustWrite(fmt.Fprintln(p.w, strings.Join(cells, "  ")))
}

// KeyValue prints "key: value".
func (p *Printer) KeyValue(key, value string) {
	mustWrite(fmt.Fprintf(p.w, "%s %s\n", p.styles.Key.Render(key+":"), p.styles.Value.Render(value)))
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
