// Package hooks invokes the external post-save hook.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Options configures a hook invocation.
type Options struct {
	Command   string
	TodoFile  string
	Operation string
	Tasks     int
	// WorkDir defaults to the directory holding TodoFile.
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook as: <command> <todo file> <operation> <task count>.
// An empty command is a no-op.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if opts.TodoFile == "" {
		return Result{}, fmt.Errorf("hook: todo file path is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	args := []string{opts.TodoFile, opts.Operation, strconv.Itoa(opts.Tasks)}
	cmd := exec.CommandContext(ctx, opts.Command, args...)
	cmd.Dir = opts.WorkDir
	if cmd.Dir == "" {
		cmd.Dir = filepath.Dir(opts.TodoFile)
	}
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
