// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/todolist-go/internal/todo"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	Files   []string // config files that were read, lowest priority first
}

// Default values.
const (
	DefaultTodoFile      = "todo_list.json"
	DefaultSchemaVersion = todo.LatestSchemaVersion
	DefaultFileFormat    = string(todo.LayoutVersioned)
	DefaultLogDir        = "~/.todolist"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultDoubleClickMs = 400
)

// Config holds the full configuration for todolist.
type Config struct {
	// Paths
	TodoFile string `toml:"todo_file"`
	LogDir   string `toml:"log_dir"`

	// Task file layout
	SchemaVersion int    `toml:"schema_version"`
	FileFormat    string `toml:"file_format"`

	// Keep flags when a label is edited instead of clearing them
	KeepStatusOnEdit bool `toml:"keep_status_on_edit"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	UI UIConfig `toml:"ui"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	DoubleClickMs int  `toml:"double_click_ms"`
	ConfirmReset  bool `toml:"confirm_reset"`
	Mouse         bool `toml:"mouse"`
}

// Schema returns the task schema selected by SchemaVersion.
func (c *Config) Schema() (todo.Schema, error) {
	return todo.SchemaForVersion(c.SchemaVersion)
}

// Layout returns the file layout selected by FileFormat.
func (c *Config) Layout() (todo.Layout, error) {
	return todo.ParseLayout(c.FileFormat)
}

// DoubleClick returns the maximum interval between two clicks of a double-click.
func (c *Config) DoubleClick() time.Duration {
	if c.UI.DoubleClickMs <= 0 {
		return DefaultDoubleClickMs * time.Millisecond
	}
	return time.Duration(c.UI.DoubleClickMs) * time.Millisecond
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if _, err := c.Schema(); err != nil {
		return fmt.Errorf("schema_version: %w", err)
	}
	if _, err := c.Layout(); err != nil {
		return fmt.Errorf("file_format: %w", err)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format: unknown format %q (want text, json, or logfmt)", c.LogFormat)
	}
	return nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"todo_file",
		"log_dir",
		"schema_version",
		"file_format",
		"keep_status_on_edit",
		"hook_command",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"ui.double_click_ms",
		"ui.confirm_reset",
		"ui.mouse",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TodoFile = DefaultTodoFile
	cfg.LogDir = DefaultLogDir
	cfg.SchemaVersion = DefaultSchemaVersion
	cfg.FileFormat = DefaultFileFormat
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.UI.DoubleClickMs = DefaultDoubleClickMs
	cfg.UI.Mouse = true
}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{"todolist.toml", ".todolist.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.todolist/todolist.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".todolist", "todolist.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "todolist", "todolist.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Entry is one resolved configuration value.
type Entry struct {
	Key    string
	Value  string
	Source ConfigSource
}

// Entries returns every configurable value with its source, in a stable order.
func (cws *ConfigWithSources) Entries() []Entry {
	cfg := cws.Config
	values := map[string]string{
		"todo_file":           cfg.TodoFile,
		"log_dir":             cfg.LogDir,
		"schema_version":      strconv.Itoa(cfg.SchemaVersion),
		"file_format":         cfg.FileFormat,
		"keep_status_on_edit": strconv.FormatBool(cfg.KeepStatusOnEdit),
		"hook_command":        cfg.HookCommand,
		"log_level":           cfg.LogLevel,
		"log_format":          cfg.LogFormat,
		"log_timestamps":      strconv.FormatBool(cfg.LogTimestamps),
		"log_caller":          strconv.FormatBool(cfg.LogCaller),
		"ui.double_click_ms":  strconv.Itoa(cfg.UI.DoubleClickMs),
		"ui.confirm_reset":    strconv.FormatBool(cfg.UI.ConfirmReset),
		"ui.mouse":            strconv.FormatBool(cfg.UI.Mouse),
	}
	fields := configFields()
	entries := make([]Entry, 0, len(fields))
	for _, key := range fields {
		source := cws.Sources[key]
		if source == "" {
			source = SourceDefault
		}
		entries = append(entries, Entry{Key: key, Value: values[key], Source: source})
	}
	return entries
}
