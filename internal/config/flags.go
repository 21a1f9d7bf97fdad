package config

import (
	"flag"
)

// flagFields maps CLI flag names to config field names.
var flagFields = map[string]string{
	"todo":           "todo_file",
	"schema-version": "schema_version",
	"format":         "file_format",
	"keep-status":    "keep_status_on_edit",
	"hook":           "hook_command",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"no-mouse":       "ui.mouse",
}

// parseFlags defines and parses CLI flags. Flags the user set explicitly
// are recorded in sources.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todolist", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.TodoFile, "todo", cfg.TodoFile, "Path to task file")
	fs.IntVar(&cfg.SchemaVersion, "schema-version", cfg.SchemaVersion, "Task schema version (1: finished, 2: data ready + finished)")
	fs.StringVar(&cfg.FileFormat, "format", cfg.FileFormat, "Task file layout (versioned|legacy)")
	fs.BoolVar(&cfg.KeepStatusOnEdit, "keep-status", cfg.KeepStatusOnEdit, "Keep status flags when editing a label")
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Command to run after each save")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")

	noMouse := !cfg.UI.Mouse
	fs.BoolVar(&noMouse, "no-mouse", noMouse, "Disable mouse support in the TUI")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.UI.Mouse = !noMouse

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagFields[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
