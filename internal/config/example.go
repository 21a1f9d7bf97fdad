package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todolist configuration file
# Values can be overridden by TODOLIST_* environment variables or CLI flags

# Task file (relative to the current directory)
todo_file = "todo_list.json"

# Task schema: 1 = one "finished" column, 2 = "data ready" + "finished"
schema_version = 2

# File layout: "versioned" ({"schema_version": N, "tasks": [...]})
# or "legacy" (bare array, readable by older releases)
file_format = "versioned"

# Keep status flags when a task label is edited (default clears them)
keep_status_on_edit = false

# Command to run after every save: <hook> <todo file> <operation> <task count>
# hook_command = "/path/to/hook.sh"

# Log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.todolist"

# Logging: debug, info, warn, error / text, json, logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

[ui]
# Maximum milliseconds between the two clicks of a double-click
double_click_ms = 400
# Ask before clearing every flag with R
confirm_reset = false
# Mouse support (click to select, double-click a status cell to toggle)
mouse = true
`
}
