// Package ui provides the interactive terminal editor.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todolist-go/internal/session"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	mouse        bool
	doubleClick  time.Duration
	confirmReset bool
	altScreen    bool
}

// WithMouse enables mouse reporting so rows can be clicked.
func WithMouse(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.mouse = enabled
	}
}

// WithDoubleClick sets the maximum gap between the two clicks of a double-click.
func WithDoubleClick(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.doubleClick = d
		}
	}
}

// WithConfirmReset asks before clearing every flag.
func WithConfirmReset(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.confirmReset = enabled
	}
}

// WithAltScreen controls whether the editor takes over the whole terminal.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

func defaultTUIConfig() *tuiConfig {
	return &tuiConfig{
		mouse:       true,
		doubleClick: 400 * time.Millisecond,
		altScreen:   true,
	}
}

// RunTUI runs the editor over sess until the user quits or ctx is cancelled.
// It returns the storage error that ended the session, if any.
func RunTUI(ctx context.Context, sess *session.Session, opts ...TUIOption) error {
	c := defaultTUIConfig()
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(ctx, sess, c)
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if c.mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	finalModel, err := tea.NewProgram(model, programOpts...).Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
