package todo

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches any *ValidationError via errors.Is.
	ErrValidation = errors.New("validation error")
	// ErrSelection matches any *SelectionError via errors.Is.
	ErrSelection = errors.New("selection error")
	// ErrUnknownFlag is returned for a flag outside the active schema.
	ErrUnknownFlag = errors.New("unknown flag")
)

// ValidationError reports rejected user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SelectionError reports an operation that needs a valid selected task.
type SelectionError struct {
	Op     string
	Index  int
	Reason string
}

func (e *SelectionError) Error() string {
	if e.Index == NoSelection {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s task %d: %s", e.Op, e.Index+1, e.Reason)
}

// Is makes errors.Is(err, ErrSelection) true.
func (e *SelectionError) Is(target error) bool {
	return target == ErrSelection
}

// FormatError reports a task file whose content does not match the format.
type FormatError struct {
	Path string // location inside the document, e.g. "tasks[3][1]"
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err is correctable by the user (bad input or
// missing selection) rather than a storage fault.
func IsUserError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrSelection) || errors.Is(err, ErrUnknownFlag)
}
