package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todolist-go/internal/session"
	"github.com/nibzard/todolist-go/internal/todo"
)

// inputCharLimit caps typed labels in the add and edit prompt.
const inputCharLimit = 256

type mode int

const (
	modeList mode = iota
	modeInput
	modeConfirmReset
	modeHelp
)

type inputKind int

const (
	inputAdd inputKind = iota
	inputEdit
)

type click struct {
	row, col int
	at       time.Time
	valid    bool
}

type tuiModel struct {
	ctx  context.Context
	sess *session.Session
	cfg  *tuiConfig

	width, height int
	offset        int

	// row is the selected task or todo.NoSelection; col is 0 for the label
	// and 1..n for the status columns.
	row int
	col int

	mode      mode
	input     textinput.Model
	inputKind inputKind
	editRow   int

	warning   string
	fatal     error
	lastClick click
	now       func() time.Time
}

func newTUIModel(ctx context.Context, sess *session.Session, cfg *tuiConfig) *tuiModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = inputCharLimit
	ti.Width = 50

	m := &tuiModel{
		ctx:    ctx,
		sess:   sess,
		cfg:    cfg,
		width:  80,
		height: 24,
		row:    todo.NoSelection,
		input:  ti,
		now:    time.Now,
	}
	if sess.Schema().FlagCount() > 0 {
		m.col = 1
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-len(m.input.Prompt)-2)
		m.scrollToCursor()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if m.mode == modeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.fatal != nil {
		return m, tea.Quit
	}
	if m.warning != "" {
		m.warning = ""
		return m, nil
	}

	switch m.mode {
	case modeInput:
		return m.handleInputKey(msg)
	case modeConfirmReset:
		m.mode = modeList
		if s := msg.String(); s == "y" || s == "Y" {
			return m, m.apply("reset", m.sess.Reset(m.ctx))
		}
		return m, nil
	case modeHelp:
		m.mode = modeList
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.step(-1)
	case "down", "j":
		m.step(1)
	case "home", "g":
		m.selectRow(0)
	case "end", "G":
		m.selectRow(m.sess.Len() - 1)
	case "esc":
		m.row = todo.NoSelection
	case "left", "h", "shift+tab":
		m.stepColumn(-1)
	case "right", "l", "tab":
		m.stepColumn(1)
	case "a":
		return m, m.startInput(inputAdd, todo.NoSelection, "")
	case "e":
		task, ok := m.sess.Task(m.row)
		if !ok {
			m.warning = "You must select a task to edit."
			return m, nil
		}
		return m, m.startInput(inputEdit, m.row, task.Label)
	case "d", "delete":
		return m, m.remove()
	case "K", "shift+up":
		return m, m.move(todo.Up)
	case "J", "shift+down":
		return m, m.move(todo.Down)
	case " ", "enter":
		return m, m.toggleColumn(m.col)
	case "R":
		if m.cfg.confirmReset {
			m.mode = modeConfirmReset
			return m, nil
		}
		return m, m.apply("reset", m.sess.Reset(m.ctx))
	case "?":
		m.mode = modeHelp
	default:
		if r := msg.Runes; msg.Type == tea.KeyRunes && len(r) == 1 && r[0] >= '1' && r[0] <= '9' {
			if flag := todo.Flag(r[0] - '1'); m.sess.Schema().Valid(flag) {
				return m, m.toggle(flag)
			}
		}
	}
	return m, nil
}

func (m *tuiModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		return m, m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	press := msg.Action == tea.MouseActionPress
	if m.warning != "" {
		if press && msg.Button == tea.MouseButtonLeft {
			m.warning = ""
		}
		return m, nil
	}
	if m.mode != modeList || !press {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.step(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.step(1)
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}

	row, ok := m.rowAt(msg.Y)
	if !ok {
		m.lastClick = click{}
		return m, nil
	}
	col := m.layout().columnAt(msg.X)
	now := m.now()
	double := m.lastClick.valid &&
		m.lastClick.row == row &&
		m.lastClick.col == col &&
		now.Sub(m.lastClick.at) <= m.cfg.doubleClick

	m.row = row
	if col > 0 {
		m.col = col
	}
	if double {
		m.lastClick = click{}
		return m, m.toggleColumn(col)
	}
	m.lastClick = click{row: row, col: col, at: now, valid: true}
	return m, nil
}

func (m *tuiModel) startInput(kind inputKind, row int, value string) tea.Cmd {
	m.mode = modeInput
	m.inputKind = kind
	m.editRow = row
	// An existing label longer than the limit is kept whole.
	m.input.CharLimit = max(inputCharLimit, utf8.RuneCountInString(value))
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) closeInput() {
	m.mode = modeList
	m.input.Blur()
	m.input.Reset()
}

func (m *tuiModel) submitInput() tea.Cmd {
	value := m.input.Value()
	var err error
	switch m.inputKind {
	case inputAdd:
		err = m.sess.Add(m.ctx, value)
		if err == nil {
			m.selectRow(m.sess.Len() - 1)
		}
	case inputEdit:
		err = m.sess.Edit(m.ctx, m.editRow, value)
	}
	if err == nil {
		m.closeInput()
		return nil
	}
	verb := "add"
	if m.inputKind == inputEdit {
		verb = "edit"
	}
	return m.apply(verb, err)
}

func (m *tuiModel) remove() tea.Cmd {
	if err := m.sess.Remove(m.ctx, m.row); err != nil {
		return m.apply("remove", err)
	}
	m.selectRow(min(m.row, m.sess.Len()-1))
	return nil
}

func (m *tuiModel) move(dir todo.Direction) tea.Cmd {
	to, err := m.sess.Move(m.ctx, m.row, dir)
	if err != nil {
		return m.apply("move", err)
	}
	m.selectRow(to)
	return nil
}

// toggleColumn toggles the flag shown in col. With a single flag every
// column maps to it; otherwise the label column does nothing.
func (m *tuiModel) toggleColumn(col int) tea.Cmd {
	schema := m.sess.Schema()
	switch {
	case schema.FlagCount() == 1:
		return m.toggle(0)
	case col <= 0 || col > schema.FlagCount():
		return nil
	}
	return m.toggle(todo.Flag(col - 1))
}

func (m *tuiModel) toggle(flag todo.Flag) tea.Cmd {
	return m.apply("toggle", m.sess.Toggle(m.ctx, m.row, flag))
}

// apply turns an operation error into a warning, or ends the session when
// the error is not the user's to fix.
func (m *tuiModel) apply(verb string, err error) tea.Cmd {
	if err == nil {
		return nil
	}
	if todo.IsUserError(err) {
		m.warning = warningFor(verb, err)
		return nil
	}
	m.fatal = err
	return tea.Quit
}

func warningFor(verb string, err error) string {
	var sel *todo.SelectionError
	if errors.As(err, &sel) {
		if sel.Index == todo.NoSelection {
			return fmt.Sprintf("You must select a task to %s.", verb)
		}
		return sentence(sel.Reason)
	}
	var val *todo.ValidationError
	if errors.As(err, &val) {
		if verb == "edit" {
			return "You must enter a new task."
		}
		return "You must enter a task."
	}
	return sentence(err.Error())
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	out := string(r)
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}

func (m *tuiModel) step(delta int) {
	n := m.sess.Len()
	if n == 0 {
		m.row = todo.NoSelection
		return
	}
	if m.row == todo.NoSelection {
		if delta > 0 {
			m.selectRow(0)
		} else {
			m.selectRow(n - 1)
		}
		return
	}
	m.selectRow(m.row + delta)
}

func (m *tuiModel) selectRow(i int) {
	n := m.sess.Len()
	if n == 0 {
		m.row = todo.NoSelection
		return
	}
	m.row = max(0, min(i, n-1))
	m.scrollToCursor()
}

func (m *tuiModel) stepColumn(delta int) {
	cols := m.sess.Schema().FlagCount() + 1
	m.col = ((m.col+delta)%cols + cols) % cols
}

func (m *tuiModel) scrollToCursor() {
	visible := m.visibleRows()
	if m.row == todo.NoSelection {
		m.offset = min(m.offset, max(0, m.sess.Len()-visible))
		return
	}
	if m.row < m.offset {
		m.offset = m.row
	}
	if m.row >= m.offset+visible {
		m.offset = m.row - visible + 1
	}
}

// rowAt maps a screen line to a task index.
func (m *tuiModel) rowAt(y int) (int, bool) {
	line := y - tableTop
	if line < 0 || line >= m.visibleRows() {
		return 0, false
	}
	i := m.offset + line
	if i >= m.sess.Len() {
		return 0, false
	}
	return i, true
}
