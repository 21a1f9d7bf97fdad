package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todolist-go/internal/todo"
)

const (
	// tableTop is the screen line of the first task row: title, blank, header.
	tableTop     = 3
	footerHeight = 3

	markerWidth   = 2
	numWidth      = 4
	flagWidth     = 12
	minLabelWidth = 16
)

type tableLayout struct {
	label int
	flags int
}

func (m *tuiModel) layout() tableLayout {
	n := m.sess.Schema().FlagCount()
	return tableLayout{
		label: max(minLabelWidth, m.width-markerWidth-numWidth-n*flagWidth),
		flags: n,
	}
}

// columnAt maps a screen column to 0 (label), 1..n (status) or -1.
func (l tableLayout) columnAt(x int) int {
	start := markerWidth + numWidth + l.label
	if x < start {
		return 0
	}
	col := (x-start)/flagWidth + 1
	if col > l.flags {
		return -1
	}
	return col
}

func (m *tuiModel) visibleRows() int {
	return max(1, m.height-tableTop-footerHeight)
}

func (m *tuiModel) View() string {
	if m.fatal != nil {
		return m.overlay(errorBox.Render(warningTitle.Render("Error") + "\n\n" + m.fatal.Error()))
	}
	if m.warning != "" {
		return m.overlay(warningBox.Render(
			warningTitle.Render("Warning") + "\n\n" + m.warning + "\n\n" + dimStyle.Render("press any key"),
		))
	}
	if m.mode == modeHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("To-Do List"))
	b.WriteString("  " + dimStyle.Render(filepath.Base(m.sess.Path())) + "\n\n")
	m.writeTable(&b)
	b.WriteString("\n")
	m.writeFooter(&b)
	return b.String()
}

func (m *tuiModel) writeTable(b *strings.Builder) {
	l := m.layout()
	schema := m.sess.Schema()

	header := strings.Repeat(" ", markerWidth) + pad("#", numWidth) + pad("Task", l.label)
	for _, f := range schema.Flags {
		header += pad(f.Title, flagWidth)
	}
	b.WriteString(headerStyle.Render(strings.TrimRight(header, " ")) + "\n")

	tasks := m.sess.Tasks()
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("  No tasks yet. Press a to add one.") + "\n")
		for i := 1; i < m.visibleRows(); i++ {
			b.WriteString("\n")
		}
		return
	}

	end := min(len(tasks), m.offset+m.visibleRows())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i, tasks[i], l) + "\n")
	}
	for i := end - m.offset; i < m.visibleRows(); i++ {
		b.WriteString("\n")
	}
}

func (m *tuiModel) renderRow(i int, task todo.Task, l tableLayout) string {
	selected := i == m.row
	marker := "  "
	if selected {
		marker = "▸ "
	}

	label := pad(truncate(task.Label, l.label-1), l.label)
	if selected {
		if m.col == 0 {
			label = focusStyle.Render(label)
		} else {
			label = selectedStyle.Render(label)
		}
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(pad(fmt.Sprintf("%d.", i+1), numWidth))
	b.WriteString(label)
	for f := range task.Flags {
		glyph := todo.Glyph(task.Flags[f])
		cell := pad("   "+glyph, flagWidth)
		switch {
		case selected && m.col == f+1:
			cell = focusStyle.Render(cell)
		case task.Flags[f]:
			cell = checkedStyle.Render(cell)
		}
		b.WriteString(cell)
	}
	return b.String()
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	if m.mode == modeInput {
		title := "New task"
		if m.inputKind == inputEdit {
			title = fmt.Sprintf("Edit task %d", m.editRow+1)
		}
		b.WriteString(title + dimStyle.Render("  (enter to save, esc to cancel)") + "\n")
		b.WriteString(m.input.View())
		return
	}

	if m.mode == modeConfirmReset {
		b.WriteString(warningTitle.Render("Clear every status flag? (y/n)") + "\n")
	} else {
		b.WriteString(statusStyle.Render(m.statusLine()) + "\n")
	}
	b.WriteString(dimStyle.Render("a add  e edit  d remove  K/J move  space toggle  R reset  ? help  q quit"))
}

func (m *tuiModel) statusLine() string {
	n := m.sess.Len()
	parts := []string{fmt.Sprintf("%d tasks", n)}
	counts := m.sess.Counts()
	for i, f := range m.sess.Schema().Flags {
		parts = append(parts, fmt.Sprintf("%s %d/%d", f.Title, counts[i], n))
	}
	return strings.Join(parts, "  ")
}

func (m *tuiModel) helpView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts") + "\n\n")
	rows := [][2]string{
		{"↑/k ↓/j", "Select task"},
		{"←/h →/l tab", "Choose column"},
		{"esc", "Clear selection"},
		{"a", "Add task"},
		{"e", "Edit selected task"},
		{"d, delete", "Remove selected task"},
		{"K, shift+↑", "Move task up"},
		{"J, shift+↓", "Move task down"},
		{"space, enter", "Toggle focused status"},
	}
	for i, f := range m.sess.Schema().Flags {
		rows = append(rows, [2]string{fmt.Sprintf("%d", i+1), "Toggle " + f.Title})
	}
	rows = append(rows,
		[2]string{"R", "Reset all status flags"},
		[2]string{"?", "Toggle this help screen"},
		[2]string{"q, ctrl+c", "Quit"},
	)
	for _, r := range rows {
		b.WriteString("  " + pad(r[0], 16) + r[1] + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("Double-click a status cell to toggle it. Press any key to return."))
	return b.String()
}

func (m *tuiModel) overlay(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
