package hooks

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolve(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix permission bits")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "notify.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		command string
		want    string
		wantErr bool
	}{
		{"absolute", script, script, false},
		{"relative to task dir", "./notify.sh", script, false},
		{"not executable", "./notes.txt", "", true},
		{"directory", dir, "", true},
		{"missing", "./nope.sh", "", true},
		{"empty", "", "", true},
		{"not on PATH", "definitely-not-a-real-hook-binary", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.command, dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.command, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.command, got, tt.want)
			}
		})
	}
}

func TestWindowsExecutableExtensions(t *testing.T) {
	tests := []struct {
		name    string
		pathext string
		want    []string
	}{
		{"default PATHEXT", "", []string{".com", ".exe", ".bat", ".cmd"}},
		{"custom PATHEXT", ".COM;.EXE;.PS1", []string{".com", ".exe", ".ps1"}},
		{"PATHEXT without dots", "COM;EXE;BAT", []string{".com", ".exe", ".bat"}},
		{"mixed format with spaces", ".COM; .EXE ; .BAT", []string{".com", ".exe", ".bat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PATHEXT", tt.pathext)
			got := windowsExecutableExtensions()
			if len(got) != len(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			for _, ext := range tt.want {
				if !got[ext] {
					t.Errorf("missing %s in %v", ext, got)
				}
			}
		})
	}
}
