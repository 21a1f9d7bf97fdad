package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/todo"
)

func openTest(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "todo_list.json")
	}
	if opts.Schema.Version == 0 {
		opts.Schema = todo.SchemaV2
	}
	s, err := Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func reload(t *testing.T, s *Session) []todo.Task {
	t.Helper()
	store, _, err := todo.Load(s.Path(), s.Schema())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	return store.Tasks()
}

func TestOpenMissingFile(t *testing.T) {
	s := openTest(t, Options{})
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
	if !s.Info().Missing {
		t.Error("expected Info().Missing")
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("opening should not create the file")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), Options{Schema: todo.SchemaV1}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestEveryMutationSaves(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	steps := []struct {
		name string
		do   func() error
		want []todo.Task
	}{
		{"add", func() error { return s.Add(ctx, "write report") }, []todo.Task{
			{Label: "write report", Flags: []bool{false, false}},
		}},
		{"add second", func() error { return s.Add(ctx, "collect data") }, []todo.Task{
			{Label: "write report", Flags: []bool{false, false}},
			{Label: "collect data", Flags: []bool{false, false}},
		}},
		{"move up", func() error { _, err := s.Move(ctx, 1, todo.Up); return err }, []todo.Task{
			{Label: "collect data", Flags: []bool{false, false}},
			{Label: "write report", Flags: []bool{false, false}},
		}},
		{"toggle", func() error { return s.Toggle(ctx, 0, 0) }, []todo.Task{
			{Label: "collect data", Flags: []bool{true, false}},
			{Label: "write report", Flags: []bool{false, false}},
		}},
		{"edit", func() error { return s.Edit(ctx, 0, "collect all data") }, []todo.Task{
			{Label: "collect all data", Flags: []bool{false, false}},
			{Label: "write report", Flags: []bool{false, false}},
		}},
		{"toggle finished", func() error { return s.Toggle(ctx, 1, 1) }, []todo.Task{
			{Label: "collect all data", Flags: []bool{false, false}},
			{Label: "write report", Flags: []bool{false, true}},
		}},
		{"reset", func() error { return s.Reset(ctx) }, []todo.Task{
			{Label: "collect all data", Flags: []bool{false, false}},
			{Label: "write report", Flags: []bool{false, false}},
		}},
		{"remove", func() error { return s.Remove(ctx, 0) }, []todo.Task{
			{Label: "write report", Flags: []bool{false, false}},
		}},
	}

	for _, step := range steps {
		if err := step.do(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if got := reload(t, s); !reflect.DeepEqual(got, step.want) {
			t.Fatalf("%s: on disk %+v, want %+v", step.name, got, step.want)
		}
	}
}

func TestRejectedOperationsDoNotSave(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})

	if err := s.Add(ctx, ""); !errors.Is(err, todo.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := s.Remove(ctx, todo.NoSelection); !errors.Is(err, todo.ErrSelection) {
		t.Fatalf("expected ErrSelection, got %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("rejected operations must not write the file")
	}

	if err := s.Add(ctx, "only"); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if to, err := s.Move(ctx, 0, todo.Up); !errors.Is(err, todo.ErrSelection) || to != 0 {
		t.Fatalf("Move at top: got %d, %v", to, err)
	}
	after, _ := os.ReadFile(s.Path())
	if !bytes.Equal(before, after) {
		t.Error("file changed after rejected move")
	}
}

func TestKeepStatusOnEdit(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{KeepStatusOnEdit: true})

	_ = s.Add(ctx, "draft")
	_ = s.Toggle(ctx, 0, 1)
	if err := s.Edit(ctx, 0, "final"); err != nil {
		t.Fatal(err)
	}
	want := []todo.Task{{Label: "final", Flags: []bool{false, true}}}
	if got := reload(t, s); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLegacyFileUpgradedOnSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todo_list.json")
	if err := os.WriteFile(path, []byte(`[["Buy milk", "☑"]]`), 0644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	s := openTest(t, Options{
		Path:   path,
		Layout: todo.LayoutVersioned,
		Logger: logging.NewFromConfig(&logs, "debug", "logfmt", false, false),
	})
	if !s.Info().Upgraded {
		t.Error("expected upgrade to be reported")
	}
	if !strings.Contains(logs.String(), "upgraded") {
		t.Errorf("expected upgrade warning in logs: %q", logs.String())
	}

	if err := s.Save(ctx); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"schema_version": 2`) {
		t.Errorf("file not rewritten as versioned:\n%s", data)
	}
	want := []todo.Task{{Label: "Buy milk", Flags: []bool{true, false}}}
	if got := reload(t, s); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestHookRunsAfterSave(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts are POSIX shell")
	}
	dir := t.TempDir()
	record := filepath.Join(dir, "hook.log")
	hook := filepath.Join(dir, "hook.sh")
	script := "#!/bin/sh\necho \"$2 $3 $(wc -c < \"$1\" | tr -d ' ')\" >> " + record + "\n"
	if err := os.WriteFile(hook, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	s := openTest(t, Options{Path: filepath.Join(dir, "todo_list.json"), HookCommand: hook})
	_ = s.Add(ctx, "a")
	_ = s.Add(ctx, "")
	_ = s.Add(ctx, "b")
	_ = s.Remove(ctx, 0)

	data, err := os.ReadFile(record)
	if err != nil {
		t.Fatalf("hook did not run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("hook runs: got %d (%q), want 3", len(lines), lines)
	}
	for i, prefix := range []string{"add 1 ", "add 2 ", "remove 1 "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("run %d: got %q, want prefix %q", i, lines[i], prefix)
		}
		// The file already holds the snapshot when the hook runs.
		if strings.HasSuffix(lines[i], " 0") {
			t.Errorf("run %d saw an empty file", i)
		}
	}
}

func TestHookFailureKeepsSave(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts are POSIX shell")
	}
	dir := t.TempDir()
	hook := filepath.Join(dir, "hook.sh")
	if err := os.WriteFile(hook, []byte("#!/bin/sh\nexit 3\n"), 0755); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	s := openTest(t, Options{
		Path:        filepath.Join(dir, "todo_list.json"),
		HookCommand: hook,
		HookOutput:  &bytes.Buffer{},
		Logger:      logging.NewFromConfig(&logs, "info", "logfmt", false, false),
	})
	if err := s.Add(context.Background(), "a"); err != nil {
		t.Fatalf("hook failure should not fail the operation: %v", err)
	}
	if len(reload(t, s)) != 1 {
		t.Error("save was lost")
	}
	if !strings.Contains(logs.String(), "exit_code=3") {
		t.Errorf("expected hook failure logged: %q", logs.String())
	}
}

func TestSaveErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, Options{Path: filepath.Join(dir, "missing-dir", "todo_list.json")})
	err := s.Add(context.Background(), "a")
	if err == nil {
		t.Fatal("expected save error")
	}
	if todo.IsUserError(err) {
		t.Errorf("save error should not be a user error: %v", err)
	}
}
