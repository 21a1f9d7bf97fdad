// Package export renders a task list in formats meant for other tools.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/nibzard/todolist-go/internal/todo"
)

// Format is an export format name.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatPDF}
}

// ParseFormat accepts a format name or a common alias ("md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown format %s", s)
	}
}

// Options tunes the rendered output.
type Options struct {
	Title string
}

// Export renders the store in format.
func Export(store *todo.Store, format Format, opts Options) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "To-Do List"
	}
	switch format {
	case FormatJSON:
		return todo.Encode(store, todo.LayoutVersioned)
	case FormatCSV:
		return exportCSV(store)
	case FormatMarkdown:
		return exportMarkdown(store, opts), nil
	case FormatPDF:
		return exportPDF(store, opts)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

func exportCSV(store *todo.Store) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := append([]string{"position", "label"}, store.Schema().Names()...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, t := range store.Tasks() {
		row := []string{strconv.Itoa(i + 1), t.Label}
		for _, v := range t.Flags {
			row = append(row, strconv.FormatBool(v))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// exportMarkdown writes one checklist line per task. With several flags the
// box shows whether every flag is set and the flag names follow in brackets.
func exportMarkdown(store *todo.Store, opts Options) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	schema := store.Schema()
	tasks := store.Tasks()
	if len(tasks) == 0 {
		b.WriteString("_No tasks._\n")
		return []byte(b.String())
	}
	for _, t := range tasks {
		box := " "
		if t.Done() {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s", box, t.Label)
		if schema.FlagCount() > 1 {
			var set []string
			for i, spec := range schema.Flags {
				if t.Checked(todo.Flag(i)) {
					set = append(set, spec.Title)
				}
			}
			if len(set) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(set, ", "))
			}
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

const (
	pdfMargin    = 15.0
	pdfRowHeight = 8.0
	pdfFlagWidth = 28.0
	pdfBoxSize   = 4.0
)

// exportPDF draws an A4 checklist. Core PDF fonts have no ballot-box glyphs,
// so the boxes and check marks are drawn as vector shapes.
func exportPDF(store *todo.Store, opts Options) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	schema := store.Schema()
	pageWidth, pageHeight := pdf.GetPageSize()
	labelWidth := pageWidth - 2*pdfMargin - float64(schema.FlagCount())*pdfFlagWidth - 10

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(10, pdfRowHeight, "#", "B", 0, "R", false, 0, "")
		pdf.CellFormat(labelWidth, pdfRowHeight, "  Task", "B", 0, "L", false, 0, "")
		for _, spec := range schema.Flags {
			pdf.CellFormat(pdfFlagWidth, pdfRowHeight, spec.Title, "B", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
	}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(opts.Title), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	for i, t := range store.Tasks() {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
		}
		y := pdf.GetY()
		pdf.CellFormat(10, pdfRowHeight, strconv.Itoa(i+1), "", 0, "R", false, 0, "")
		pdf.CellFormat(labelWidth, pdfRowHeight, "  "+tr(truncate(t.Label, 90)), "", 0, "L", false, 0, "")
		x := pdf.GetX()
		for f := range schema.Flags {
			cx := x + float64(f)*pdfFlagWidth + (pdfFlagWidth-pdfBoxSize)/2
			cy := y + (pdfRowHeight-pdfBoxSize)/2
			drawBox(pdf, cx, cy, t.Checked(todo.Flag(f)))
		}
		pdf.Ln(pdfRowHeight)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBox(pdf *gofpdf.Fpdf, x, y float64, checked bool) {
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, y, pdfBoxSize, pdfBoxSize, "D")
	if !checked {
		return
	}
	pdf.SetLineWidth(0.6)
	pdf.Line(x+0.8, y+pdfBoxSize/2, x+pdfBoxSize/2.5, y+pdfBoxSize-0.8)
	pdf.Line(x+pdfBoxSize/2.5, y+pdfBoxSize-0.8, x+pdfBoxSize-0.6, y+0.6)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
