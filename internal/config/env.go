package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by loadFromEnv.
const (
	EnvTodoFile      = "TODOLIST_TODO"
	EnvSchemaVersion = "TODOLIST_SCHEMA_VERSION"
	EnvFileFormat    = "TODOLIST_FORMAT"
	EnvKeepStatus    = "TODOLIST_KEEP_STATUS"
	EnvHookCommand   = "TODOLIST_HOOK"
	EnvLogDir        = "TODOLIST_LOG_DIR"
	EnvLogLevel      = "TODOLIST_LOG_LEVEL"
	EnvLogFormat     = "TODOLIST_LOG_FORMAT"
)

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv(EnvTodoFile); v != "" {
		cfg.TodoFile = v
		set("todo_file")
	}
	if v := os.Getenv(EnvSchemaVersion); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSchemaVersion, err)
		}
		cfg.SchemaVersion = n
		set("schema_version")
	}
	if v := os.Getenv(EnvFileFormat); v != "" {
		cfg.FileFormat = v
		set("file_format")
	}
	if v := os.Getenv(EnvKeepStatus); v != "" {
		cfg.KeepStatusOnEdit = boolFromString(v)
		set("keep_status_on_edit")
	}
	if v := os.Getenv(EnvHookCommand); v != "" {
		cfg.HookCommand = v
		set("hook_command")
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		cfg.LogDir = v
		set("log_dir")
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	return nil
}
