// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

// isolate points user config lookups at an empty directory and moves into a
// fresh working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, env := range []string{EnvTodoFile, EnvSchemaVersion, EnvFileFormat, EnvKeepStatus, EnvHookCommand, EnvLogDir, EnvLogLevel, EnvLogFormat} {
		t.Setenv(env, "")
	}
	wd := t.TempDir()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(wd); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", wd)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
	return wd
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.TodoFile != DefaultTodoFile {
		t.Errorf("TodoFile: got %q, want %q", cfg.TodoFile, DefaultTodoFile)
	}
	if cfg.SchemaVersion != 2 {
		t.Errorf("SchemaVersion: got %d, want 2", cfg.SchemaVersion)
	}
	if cfg.FileFormat != "versioned" {
		t.Errorf("FileFormat: got %q, want versioned", cfg.FileFormat)
	}
	if cfg.KeepStatusOnEdit {
		t.Error("KeepStatusOnEdit: got true, want false")
	}
	if !cfg.UI.Mouse {
		t.Error("UI.Mouse: got false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadDefaultsResolveTodoFile(t *testing.T) {
	wd := isolate(t)

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(wd, DefaultTodoFile)
	if cfg.TodoFile != want {
		t.Errorf("TodoFile: got %q, want %q", cfg.TodoFile, want)
	}
	if cfg.ProjectRoot != wd {
		t.Errorf("ProjectRoot: got %q, want %q", cfg.ProjectRoot, wd)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTodoFile, "custom-todo.json")
	t.Setenv(EnvSchemaVersion, "1")
	t.Setenv(EnvFileFormat, "legacy")
	t.Setenv(EnvKeepStatus, "yes")

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	if err := loadFromEnv(cfg, sources); err != nil {
		t.Fatalf("loadFromEnv: %v", err)
	}

	if cfg.TodoFile != "custom-todo.json" {
		t.Errorf("TodoFile: got %q, want custom-todo.json", cfg.TodoFile)
	}
	if cfg.SchemaVersion != 1 {
		t.Errorf("SchemaVersion: got %d, want 1", cfg.SchemaVersion)
	}
	if cfg.FileFormat != "legacy" {
		t.Errorf("FileFormat: got %q, want legacy", cfg.FileFormat)
	}
	if !cfg.KeepStatusOnEdit {
		t.Error("KeepStatusOnEdit: got false, want true")
	}
	if sources["schema_version"] != SourceEnv {
		t.Errorf("schema_version source: got %q", sources["schema_version"])
	}
}

func TestLoadFromEnvBadNumber(t *testing.T) {
	isolate(t)
	t.Setenv(EnvSchemaVersion, "two")

	cfg := &Config{}
	setDefaults(cfg)
	if err := loadFromEnv(cfg, nil); err == nil {
		t.Fatal("expected error for non-numeric schema version")
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "todolist.toml")

	content := []byte(`todo_file = "custom.json"
schema_version = 1
keep_status_on_edit = true

[ui]
double_click_ms = 250
`)
	if err := os.WriteFile(configFile, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	for _, f := range configFields() {
		sources[f] = SourceDefault
	}
	if err := loadConfigFile(cfg, configFile, sources, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.TodoFile != "custom.json" {
		t.Errorf("TodoFile: got %q, want custom.json", cfg.TodoFile)
	}
	if cfg.SchemaVersion != 1 {
		t.Errorf("SchemaVersion: got %d, want 1", cfg.SchemaVersion)
	}
	if !cfg.KeepStatusOnEdit {
		t.Error("KeepStatusOnEdit: got false, want true")
	}
	if cfg.UI.DoubleClickMs != 250 {
		t.Errorf("UI.DoubleClickMs: got %d, want 250", cfg.UI.DoubleClickMs)
	}
	// Unset keys keep their defaults.
	if cfg.FileFormat != DefaultFileFormat {
		t.Errorf("FileFormat: got %q, want %q", cfg.FileFormat, DefaultFileFormat)
	}
	if sources["ui.double_click_ms"] != SourceProjFile {
		t.Errorf("ui.double_click_ms source: got %q", sources["ui.double_click_ms"])
	}
	if sources["file_format"] != SourceDefault {
		t.Errorf("file_format source: got %q", sources["file_format"])
	}
}

func TestLoadConfigFileUnknownKey(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "todolist.toml")
	if err := os.WriteFile(configFile, []byte("max_iterations = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{}
	setDefaults(cfg)
	err := loadConfigFile(cfg, configFile, nil, SourceProjFile)
	if err == nil || !strings.Contains(err.Error(), "max_iterations") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	wd := isolate(t)

	userDir := filepath.Join(os.Getenv("HOME"), ".todolist")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	userCfg := "todo_file = \"user.json\"\nlog_level = \"debug\"\nfile_format = \"legacy\"\n"
	if err := os.WriteFile(filepath.Join(userDir, "todolist.toml"), []byte(userCfg), 0644); err != nil {
		t.Fatal(err)
	}
	projCfg := "todo_file = \"project.json\"\nlog_level = \"warn\"\n"
	if err := os.WriteFile(filepath.Join(wd, "todolist.toml"), []byte(projCfg), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvLogLevel, "error")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"--todo", "flag.json", "list"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if cfg.TodoFile != filepath.Join(wd, "flag.json") {
		t.Errorf("TodoFile: got %q", cfg.TodoFile)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel: got %q, want error", cfg.LogLevel)
	}
	if cfg.FileFormat != "legacy" {
		t.Errorf("FileFormat: got %q, want legacy", cfg.FileFormat)
	}

	want := map[string]ConfigSource{
		"todo_file":      SourceFlag,
		"log_level":      SourceEnv,
		"file_format":    SourceUserFile,
		"schema_version": SourceDefault,
	}
	for field, src := range want {
		if cws.Sources[field] != src {
			t.Errorf("source of %s: got %q, want %q", field, cws.Sources[field], src)
		}
	}
	if got := fs.Args(); len(got) != 1 || got[0] != "list" {
		t.Errorf("remaining args: got %v, want [list]", got)
	}
	if cws.SourceFile() != "todolist.toml" {
		t.Errorf("SourceFile: got %q, want todolist.toml", cws.SourceFile())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"schema version", []string{"--schema-version", "7"}},
		{"file format", []string{"--format", "yaml"}},
		{"log format", []string{"--log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if _, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	root := filepath.Join(t.TempDir(), "project")
	t.Setenv("TODOLIST_TEST_DIR", "lists")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"relative.json", filepath.Join(root, "relative.json")},
		{"$TODOLIST_TEST_DIR/todo.json", filepath.Join(root, "lists", "todo.json")},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("TODOLIST_TEST_HOME", home)
		tests = append(tests,
			struct{ input, want string }{`%TODOLIST_TEST_HOME%\logs`, filepath.Join(home, "logs")},
			struct{ input, want string }{`%TODOLIST_UNSET_VAR%\x`, filepath.Join(root, `%TODOLIST_UNSET_VAR%\x`)},
		)
	} else {
		tests = append(tests,
			struct{ input, want string }{"/absolute/path", "/absolute/path"},
			struct{ input, want string }{`~\test`, filepath.Join(root, `~\test`)},
		)
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := resolvePath(tt.input, root); got != tt.want {
				t.Errorf("resolvePath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args := []string{
		"--todo", "flag-todo.json",
		"--schema-version", "1",
		"--keep-status",
		"--no-mouse",
		"--hook", "./after-save.sh",
	}

	if err := parseFlags(cfg, fs, args, nil); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if cfg.TodoFile != "flag-todo.json" {
		t.Errorf("TodoFile: got %q, want flag-todo.json", cfg.TodoFile)
	}
	if cfg.SchemaVersion != 1 {
		t.Errorf("SchemaVersion: got %d, want 1", cfg.SchemaVersion)
	}
	if !cfg.KeepStatusOnEdit {
		t.Error("KeepStatusOnEdit: got false, want true")
	}
	if cfg.UI.Mouse {
		t.Error("UI.Mouse: got true, want false")
	}
	if cfg.HookCommand != "./after-save.sh" {
		t.Errorf("HookCommand: got %q", cfg.HookCommand)
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := boolFromString(tt.input); got != tt.want {
			t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if len(md.Undecoded()) > 0 {
		t.Errorf("example config has unknown keys: %v", md.Undecoded())
	}
	if cfg.TodoFile != DefaultTodoFile || cfg.UI.DoubleClickMs != DefaultDoubleClickMs {
		t.Errorf("example config drifted from defaults: %+v", cfg)
	}
}

func TestDoubleClick(t *testing.T) {
	cfg := &Config{}
	if got := cfg.DoubleClick().Milliseconds(); got != DefaultDoubleClickMs {
		t.Errorf("zero config: got %dms", got)
	}
	cfg.UI.DoubleClickMs = 150
	if got := cfg.DoubleClick().Milliseconds(); got != 150 {
		t.Errorf("got %dms, want 150", got)
	}
}

func TestEntries(t *testing.T) {
	isolate(t)
	t.Setenv(EnvHookCommand, "notify")

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), []string{"--schema-version", "1"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}

	got := map[string]Entry{}
	for _, e := range cws.Entries() {
		got[e.Key] = e
	}
	if len(got) != len(configFields()) {
		t.Errorf("entries: got %d, want %d", len(got), len(configFields()))
	}
	checks := []Entry{
		{Key: "schema_version", Value: "1", Source: SourceFlag},
		{Key: "hook_command", Value: "notify", Source: SourceEnv},
		{Key: "ui.double_click_ms", Value: "400", Source: SourceDefault},
		{Key: "ui.mouse", Value: "true", Source: SourceDefault},
	}
	for _, want := range checks {
		if got[want.Key] != want {
			t.Errorf("%s: got %+v, want %+v", want.Key, got[want.Key], want)
		}
	}
}
