package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/nibzard/todolist-go/internal/testutil"
	"github.com/nibzard/todolist-go/internal/todo"
)

func fixture(t *testing.T) *todo.Store {
	t.Helper()
	s := todo.NewStore(todo.SchemaV2)
	for _, l := range []string{"Collect survey data", "Write report, draft 1", `Review "final" numbers`} {
		if err := s.Add(l); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.ToggleFlag(0, 0)
	_ = s.ToggleFlag(0, 1)
	_ = s.ToggleFlag(1, 0)
	return s
}

func TestExportCSV(t *testing.T) {
	out, err := Export(fixture(t), FormatCSV, Options{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	testutil.Golden(t, "tasks_csv", out)
}

func TestExportCSVRowsReadBack(t *testing.T) {
	s := fixture(t)
	if err := s.Add("two\nlines"); err != nil {
		t.Fatal(err)
	}
	out, err := Export(s, FormatCSV, Options{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(rows) != s.Len()+1 {
		t.Fatalf("rows: got %d, want %d", len(rows), s.Len()+1)
	}
	for i, task := range s.Tasks() {
		if got := rows[i+1][1]; got != task.Label {
			t.Errorf("row %d label: got %q, want %q", i+1, got, task.Label)
		}
	}
}

func TestExportMarkdown(t *testing.T) {
	out, err := Export(fixture(t), FormatMarkdown, Options{Title: "Thesis"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	testutil.Golden(t, "tasks_markdown", out)
}

func TestExportMarkdownEmpty(t *testing.T) {
	out, err := Export(todo.NewStore(todo.SchemaV1), FormatMarkdown, Options{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if string(out) != "# To-Do List\n\n_No tasks._\n" {
		t.Errorf("got %q", out)
	}
}

func TestExportMarkdownSingleFlag(t *testing.T) {
	s := todo.NewStore(todo.SchemaV1)
	_ = s.Add("a")
	_ = s.Add("b")
	_ = s.ToggleFlag(1, 0)
	out, _ := Export(s, FormatMarkdown, Options{Title: "T"})
	if string(out) != "# T\n\n- [ ] a\n- [x] b\n" {
		t.Errorf("got %q", out)
	}
}

func TestExportJSONRoundTrips(t *testing.T) {
	s := fixture(t)
	out, err := Export(s, FormatJSON, Options{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	loaded, _, err := todo.Decode(out, todo.SchemaV2)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Tasks(), s.Tasks()) {
		t.Errorf("got %+v, want %+v", loaded.Tasks(), s.Tasks())
	}
}

func TestExportPDF(t *testing.T) {
	out, err := Export(fixture(t), FormatPDF, Options{Title: "Thesis – plan"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", out[:min(len(out), 16)])
	}

	big := todo.NewStore(todo.SchemaV1)
	for i := 0; i < 120; i++ {
		_ = big.Add(fmt.Sprintf("task %d %s", i, strings.Repeat("long ", 30)))
	}
	out2, err := Export(big, FormatPDF, Options{})
	if err != nil {
		t.Fatalf("Export of long list failed: %v", err)
	}
	if len(out2) <= len(out) {
		t.Errorf("long list PDF (%d bytes) should be larger than short one (%d bytes)", len(out2), len(out))
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{" pdf ", FormatPDF, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
