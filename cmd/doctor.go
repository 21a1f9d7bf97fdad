package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/todolist-go/internal/hooks"
	"github.com/nibzard/todolist-go/internal/todo"
)

// doctorCommand checks config, the task file, the log directory and the hook.
func (c *cli) doctorCommand(args []string) error {
	fs := c.flagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := c.fileArg(fs.Args()); err != nil {
		return err
	}

	w := c.stdout
	pass := func(format string, a ...any) { fmt.Fprintf(w, "  %s %s\n", okay("✔"), fmt.Sprintf(format, a...)) }
	note := func(format string, a ...any) { fmt.Fprintf(w, "  %s %s\n", warn("!"), fmt.Sprintf(format, a...)) }
	allOK := true
	fail := func(format string, a ...any) {
		fmt.Fprintf(w, "  %s %s\n", red("✘"), fmt.Sprintf(format, a...))
		allOK = false
	}

	fmt.Fprintln(w, bold("Todolist Doctor"))
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	// Config
	fmt.Fprintln(w, "Config:")
	if f := c.cws.SourceFile(); f != "" {
		pass("Config file: %s", f)
	} else {
		pass("Config file: none (defaults)")
	}
	schema, err := c.cfg.Schema()
	if err != nil {
		fail("Schema version: %v", err)
		schema = todo.SchemaV2
	} else {
		titles := make([]string, len(schema.Flags))
		for i, f := range schema.Flags {
			titles[i] = f.Title
		}
		pass("Schema version: %d (%s)", schema.Version, strings.Join(titles, ", "))
	}
	if layout, err := c.cfg.Layout(); err != nil {
		fail("File format: %v", err)
	} else {
		pass("File format: %s", layout)
	}
	fmt.Fprintln(w)

	// Task file
	fmt.Fprintf(w, "Todo file: %s\n", c.cfg.TodoFile)
	if info, err := os.Stat(c.cfg.TodoFile); err == nil && info.IsDir() {
		fail("Error: path is a directory")
	} else {
		result := todo.ValidateFile(c.cfg.TodoFile, schema)
		switch {
		case !result.Valid:
			fail("Validation failed:")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "     - %v\n", e)
			}
		case result.Info.Missing:
			note("Not found (created on the first change)")
		default:
			pass("Valid: %d tasks, %s layout, schema version %d", result.Tasks, result.Info.Layout, result.Info.Version)
			if result.Info.Upgraded {
				note("Written with schema version %d; rewritten as version %d on the next change", result.Info.Version, schema.Version)
			}
			if *verbose {
				if store, _, err := todo.Load(c.cfg.TodoFile, schema); err == nil {
					fmt.Fprintln(w)
					printList(w, store.Tasks(), schema)
				}
			}
		}
	}
	fmt.Fprintln(w)

	// Log directory
	fmt.Fprintf(w, "Log directory: %s\n", c.cfg.LogDir)
	if info, err := os.Stat(c.cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			note("Not found (created by the first editor session)")
		} else {
			fail("Error: %v", err)
		}
	} else if !info.IsDir() {
		fail("Error: path is not a directory")
	} else {
		pass("OK")
	}
	fmt.Fprintln(w)

	// Hook
	fmt.Fprintln(w, "Hook command:")
	if c.cfg.HookCommand == "" {
		pass("None configured")
	} else if path, err := hooks.Resolve(c.cfg.HookCommand, filepath.Dir(c.cfg.TodoFile)); err != nil {
		fail("%s: %v", c.cfg.HookCommand, err)
	} else {
		pass("%s (%s)", c.cfg.HookCommand, path)
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, okay("All checks passed!"))
		return nil
	}
	fmt.Fprintln(w, warn("Some checks failed."))
	return fmt.Errorf("doctor checks failed")
}
