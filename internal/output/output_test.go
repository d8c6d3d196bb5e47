package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/milkvcs/milk/internal/git"
)

func TestPrinter_JSON_Success(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	if err := printer.Success(map[string]any{"branch": "topic", "hash": "abc1234"}); err != nil {
		t.Fatalf("Success() error = %v", err)
	}
	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["branch"] != "topic" {
		t.Errorf("branch = %v, want %q", result["branch"], "topic")
	}
}

func TestPrinter_JSON_Error(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	printer.Error(FromError(fmt.Errorf("branch topic: %w", git.ErrAlreadyExists)))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if code, ok := result["code"].(float64); !ok || int(code) != ExitConflict {
		t.Errorf("code = %v, want %d", result["code"], ExitConflict)
	}
}

func TestPrinter_Human_ErrorToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	printer := NewPrinter(&out, false, false).WithStderr(&errOut)

	printer.Error(NewUserError("bad label"))
	printer.Warn("skipping %s", "x")

	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
	if got := errOut.String(); got != "Error: bad label\nWarning: skipping x\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestPrinter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false).WithQuiet(true)

	if err := printer.Success(map[string]any{"message": "Created branch topic"}); err != nil {
		t.Fatalf("Success() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("quiet output = %q, want empty", buf.String())
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Table([]string{"NAME", "ID"}, [][]string{
		{"main", "abc1234"},
		{"feature/long", "def5678"},
	})

	want := "NAME          ID\n" +
		"main          abc1234\n" +
		"feature/long  def5678\n"
	if buf.String() != want {
		t.Errorf("Table() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrinter_TableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Table(nil, [][]string{{"a", "1"}, {"bcd", "2"}})
	if got := buf.String(); got != "a    1\nbcd  2\n" {
		t.Errorf("Table() = %q", got)
	}
}

func TestPrinter_KeyValue(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.KeyValue("Name", "Test User")
	if !strings.Contains(buf.String(), "Name: Test User") {
		t.Errorf("KeyValue() = %q", buf.String())
	}
}

func TestPrinter_JSON_PlainError(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true, false).Error(fmt.Errorf("unknown flag: --bogus"))

	if got := buf.String(); got != `{"error":"unknown flag: --bogus","code":1}`+"\n" {
		t.Errorf("Error() = %q", got)
	}
}
