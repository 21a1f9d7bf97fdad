// Package session binds a task store to its file. Every successful mutation
// is followed by a full save and the post-save hook.
package session

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/hooks"
	"github.com/nibzard/todolist-go/internal/todo"
)

// Options configures a session.
type Options struct {
	Path             string
	Schema           todo.Schema
	Layout           todo.Layout
	KeepStatusOnEdit bool
	HookCommand      string
	// HookOutput receives the hook's stdout and stderr. Nil means the
	// process's own stdout and stderr.
	HookOutput io.Writer
	Logger     *log.Logger
}

// Session owns the store for one editing session.
type Session struct {
	opts   Options
	store  *todo.Store
	info   todo.Info
	logger *log.Logger
}

// Open loads the task file named in opts.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("todo file path is empty")
	}
	if opts.Layout == "" {
		opts.Layout = todo.LayoutVersioned
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	store, info, err := todo.Load(opts.Path, opts.Schema)
	if err != nil {
		return nil, err
	}

	s := &Session{opts: opts, store: store, info: info, logger: logger}
	switch {
	case info.Missing:
		logger.Info("starting with an empty list", "file", opts.Path)
	case info.Upgraded:
		logger.Warn("task file upgraded to a newer schema; it will be rewritten on the next save",
			"file", opts.Path, "from_version", info.Version, "to_version", opts.Schema.Version)
	default:
		logger.Info("loaded task file", "file", opts.Path, "tasks", store.Len(), "layout", info.Layout, "schema_version", info.Version)
	}
	return s, nil
}

// Path returns the task file path.
func (s *Session) Path() string {
	return s.opts.Path
}

// Info describes what was found on disk when the session opened.
func (s *Session) Info() todo.Info {
	return s.info
}

// Schema returns the active schema.
func (s *Session) Schema() todo.Schema {
	return s.store.Schema()
}

// Len returns the number of tasks.
func (s *Session) Len() int {
	return s.store.Len()
}

// Tasks returns a copy of the tasks in order.
func (s *Session) Tasks() []todo.Task {
	return s.store.Tasks()
}

// Task returns a copy of the task at index.
func (s *Session) Task(index int) (todo.Task, bool) {
	return s.store.Task(index)
}

// Counts returns the number of checked tasks per flag.
func (s *Session) Counts() []int {
	return s.store.Counts()
}

// Store exposes the underlying store for read-only consumers such as export.
func (s *Session) Store() *todo.Store {
	return s.store
}

// Add appends a task and saves.
func (s *Session) Add(ctx context.Context, label string) error {
	if err := s.store.Add(label); err != nil {
		return s.rejected("add", err)
	}
	return s.commit(ctx, "add", "position", s.store.Len())
}

// Remove deletes the task at index and saves.
func (s *Session) Remove(ctx context.Context, index int) error {
	if err := s.store.Remove(index); err != nil {
		return s.rejected("remove", err)
	}
	return s.commit(ctx, "remove", "position", index+1)
}

// Edit replaces the label at index and saves. Flags are cleared unless the
// session keeps status on edit.
func (s *Session) Edit(ctx context.Context, index int, label string) error {
	edit := s.store.Edit
	if s.opts.KeepStatusOnEdit {
		edit = s.store.Rename
	}
	if err := edit(index, label); err != nil {
		return s.rejected("edit", err)
	}
	return s.commit(ctx, "edit", "position", index+1)
}

// Move shifts the task at index and saves. It returns the task's new index.
func (s *Session) Move(ctx context.Context, index int, dir todo.Direction) (int, error) {
	to, err := s.store.Move(index, dir)
	if err != nil {
		return index, s.rejected("move", err)
	}
	return to, s.commit(ctx, "move", "from", index+1, "to", to+1)
}

// Toggle flips one flag on the task at index and saves.
func (s *Session) Toggle(ctx context.Context, index int, flag todo.Flag) error {
	if err := s.store.ToggleFlag(index, flag); err != nil {
		return s.rejected("toggle", err)
	}
	task, _ := s.store.Task(index)
	return s.commit(ctx, "toggle", "position", index+1, "flag", s.Schema().Flags[flag].Name, "checked", task.Checked(flag))
}

// Reset clears every flag and saves.
func (s *Session) Reset(ctx context.Context) error {
	s.store.ResetAll()
	return s.commit(ctx, "reset")
}

// Save writes the current snapshot without a mutation, e.g. to rewrite a
// legacy file in the configured layout.
func (s *Session) Save(ctx context.Context) error {
	return s.commit(ctx, "save")
}

func (s *Session) rejected(op string, err error) error {
	s.logger.Debug("operation rejected", "op", op, "err", err)
	return err
}

func (s *Session) commit(ctx context.Context, op string, keyvals ...interface{}) error {
	if err := todo.Save(s.opts.Path, s.store, s.opts.Layout); err != nil {
		s.logger.Error("save failed", "op", op, "file", s.opts.Path, "err", err)
		return fmt.Errorf("saving after %s: %w", op, err)
	}
	s.logger.Info(op, append(keyvals, "tasks", s.store.Len())...)

	out := s.opts.HookOutput
	result, err := hooks.Invoke(ctx, hooks.Options{
		Command:   s.opts.HookCommand,
		TodoFile:  s.opts.Path,
		Operation: op,
		Tasks:     s.store.Len(),
		Stdout:    out,
		Stderr:    out,
	})
	if err != nil {
		s.logger.Warn("post-save hook failed", "op", op, "exit_code", result.ExitCode, "err", err)
	} else if result.Ran {
		s.logger.Debug("post-save hook ran", "op", op, "command", result.Command)
	}
	return nil
}
