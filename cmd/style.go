package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/nibzard/todolist-go/internal/todo"
)

// Sprint color functions for CLI output. fatih/color turns them into plain
// text when stdout is not a terminal or NO_COLOR is set.
var (
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	okay  = color.New(color.FgGreen).SprintFunc()
	warn  = color.New(color.FgYellow).SprintFunc()
)

func glyph(checked bool) string {
	if checked {
		return green(todo.GlyphChecked)
	}
	return todo.GlyphUnchecked
}

// printList prints one row per task: position, one glyph column per flag,
// then the label. Finished tasks are dimmed.
func printList(w io.Writer, tasks []todo.Task, schema todo.Schema) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, dim("No tasks."))
		return
	}

	numWidth := max(1, len(strconv.Itoa(len(tasks))))
	header := fmt.Sprintf("%*s", numWidth, "#")
	for _, f := range schema.Flags {
		header += "  " + f.Title
	}
	fmt.Fprintln(w, bold(header+"  Task"))

	counts := make([]int, schema.FlagCount())
	for i, task := range tasks {
		line := fmt.Sprintf("%*d", numWidth, i+1)
		for j, f := range schema.Flags {
			line += "  " + glyph(task.Flags[j]) + strings.Repeat(" ", len(f.Title)-1)
			if task.Flags[j] {
				counts[j]++
			}
		}
		label := task.Label
		if task.Done() {
			label = dim(label)
		}
		fmt.Fprintln(w, line+"  "+label)
	}

	summary := []string{fmt.Sprintf("%d tasks", len(tasks))}
	for j, f := range schema.Flags {
		summary = append(summary, fmt.Sprintf("%s %d/%d", f.Title, counts[j], len(tasks)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dim(strings.Join(summary, ", ")))
}
