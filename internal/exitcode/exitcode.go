// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"context"
	"errors"

	"github.com/nibzard/todolist-go/internal/todo"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, empty label, no such task).
	UserError = 1

	// ConfigError indicates an invalid config file, environment variable or flag.
	ConfigError = 2

	// StorageError indicates the task file could not be read, parsed or written.
	StorageError = 3

	// Interrupted indicates the process was stopped by SIGINT or SIGTERM.
	Interrupted = 130
)

// Error attaches an exit code to an error.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err tagged with code. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// For maps an error returned by the CLI to its exit code.
func For(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	switch {
	case errors.Is(err, context.Canceled):
		return Interrupted
	case todo.IsUserError(err):
		return UserError
	default:
		return StorageError
	}
}
