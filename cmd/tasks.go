package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/todolist-go/internal/export"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/session"
	"github.com/nibzard/todolist-go/internal/todo"
)

// withSession opens the task file, runs fn, and leaves saving to the session.
func (c *cli) withSession(ctx context.Context, fn func(*session.Session) error) error {
	sess, err := c.openSession(ctx, c.consoleLogger(), c.stderr)
	if err != nil {
		return err
	}
	return fn(sess)
}

func (c *cli) addCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("add")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	label := strings.Join(fs.Args(), " ")

	return c.withSession(ctx, func(sess *session.Session) error {
		if err := sess.Add(ctx, label); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Added task %d: %s\n", sess.Len(), label)
		return nil
	})
}

func (c *cli) removeCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("rm")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	index, rest, err := parsePosition("rm", fs.Args())
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usageError("rm: unexpected arguments: %v", rest)
	}

	return c.withSession(ctx, func(sess *session.Session) error {
		task, _ := sess.Task(index)
		if err := sess.Remove(ctx, index); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Removed task %d: %s\n", index+1, task.Label)
		return nil
	})
}

func (c *cli) editCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("edit")
	keep := fs.Bool("keep-status", c.cfg.KeepStatusOnEdit, "Keep status flags")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	index, rest, err := parsePosition("edit", fs.Args())
	if err != nil {
		return err
	}
	c.cfg.KeepStatusOnEdit = *keep
	label := strings.Join(rest, " ")

	return c.withSession(ctx, func(sess *session.Session) error {
		if err := sess.Edit(ctx, index, label); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Updated task %d: %s\n", index+1, label)
		return nil
	})
}

func (c *cli) moveCommand(ctx context.Context, name string, args []string) error {
	fs := c.flagSet(name)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	index, rest, err := parsePosition(name, fs.Args())
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usageError("%s: unexpected arguments: %v", name, rest)
	}
	dir := todo.Up
	if name == "down" {
		dir = todo.Down
	}

	return c.withSession(ctx, func(sess *session.Session) error {
		to, err := sess.Move(ctx, index, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Moved task %d to position %d\n", index+1, to+1)
		return nil
	})
}

func (c *cli) toggleCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("toggle")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	index, rest, err := parsePosition("toggle", fs.Args())
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return usageError("toggle: unexpected arguments: %v", rest[1:])
	}
	schema, err := c.cfg.Schema()
	if err != nil {
		return err
	}

	var flag todo.Flag
	switch {
	case len(rest) == 1:
		flag, err = schema.Flag(rest[0])
		if err != nil {
			return fmt.Errorf("toggle: %w (want one of %s)", err, strings.Join(schema.Names(), ", "))
		}
	case schema.FlagCount() == 1:
		flag = 0
	default:
		return usageError("toggle: name the flag to flip (%s)", strings.Join(schema.Names(), ", "))
	}

	return c.withSession(ctx, func(sess *session.Session) error {
		if err := sess.Toggle(ctx, index, flag); err != nil {
			return err
		}
		task, _ := sess.Task(index)
		fmt.Fprintf(c.stdout, "Task %d: %s %s\n", index+1, schema.Flags[flag].Title, glyph(task.Checked(flag)))
		return nil
	})
}

func (c *cli) resetCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("reset")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return usageError("reset: unexpected arguments: %v", fs.Args())
	}

	return c.withSession(ctx, func(sess *session.Session) error {
		if err := sess.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Cleared every flag on %d tasks\n", sess.Len())
		return nil
	})
}

// listCommand prints the list in order.
func (c *cli) listCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("list")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := c.fileArg(fs.Args()); err != nil {
		return err
	}

	sess, err := c.openSession(ctx, logging.Discard(), nil)
	if err != nil {
		return err
	}
	printList(c.stdout, sess.Tasks(), sess.Schema())
	return nil
}

func (c *cli) exportCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("export")
	formatName := fs.String("format", string(export.FormatMarkdown), "Export format (json|csv|markdown|pdf)")
	out := fs.String("out", "", "Write to file instead of stdout")
	fs.StringVar(out, "o", "", "Write to file instead of stdout")
	title := fs.String("title", "", "Document title (markdown and pdf)")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := c.fileArg(fs.Args()); err != nil {
		return err
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return usageError("export: %v", err)
	}
	if format == export.FormatPDF && *out == "" {
		return usageError("export: pdf output needs -out FILE")
	}

	sess, err := c.openSession(ctx, c.consoleLogger(), nil)
	if err != nil {
		return err
	}
	data, err := export.Export(sess.Store(), format, export.Options{Title: *title})
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	if *out == "" {
		_, err := c.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(c.stderr, "Exported %d tasks to %s\n", sess.Len(), *out)
	return nil
}

// parsePosition reads a 1-based task position from args[0] and returns
// the 0-based index and the remaining args.
func parsePosition(name string, args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, usageError("%s: missing task position", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, nil, usageError("%s: invalid task position %q (positions start at 1)", name, args[0])
	}
	return n - 1, args[1:], nil
}
