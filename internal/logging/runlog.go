package logging

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// RunLogger owns the log file of a single TUI session. The terminal belongs to
// the UI while it runs, so log output goes here instead of stderr.
type RunLogger struct {
	Dir     string
	RunID   string
	LogPath string
	file    *os.File
}

// NewRunLogger creates <baseDir>/<project-slug>/<run-id>.log, where the project
// is the directory holding the task file.
func NewRunLogger(baseDir, todoPath string) (*RunLogger, error) {
	dir, err := FindLogDir(baseDir, todoPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	r := &RunLogger{Dir: dir, RunID: runID(time.Now())}
	r.LogPath = filepath.Join(dir, r.RunID+".log")
	r.file, err = os.OpenFile(r.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	return r, nil
}

// Writer returns the underlying log file writer.
func (r *RunLogger) Writer() *os.File {
	return r.file
}

// Close closes the log file.
func (r *RunLogger) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// FindLogDir returns the log directory used for the task file at todoPath.
// Task files in the same directory share one.
func FindLogDir(baseDir, todoPath string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}

	project := filepath.Dir(todoPath)
	if abs, err := filepath.Abs(project); err == nil {
		project = abs
	}
	if !filepath.IsAbs(baseDir) {
		baseDir = filepath.Join(project, baseDir)
	}

	slug := slugify(filepath.Base(project)) + "-" + hashPath(project)
	return filepath.Join(filepath.Clean(baseDir), slug), nil
}

var slugInvalid = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// slugify keeps ASCII letters, digits, '.', '_' and '-'; every other run of
// bytes becomes a single underscore.
func slugify(input string) string {
	slug := strings.Trim(slugInvalid.ReplaceAllString(input, "_"), "_")
	if slug == "" {
		return "project"
	}
	return slug
}

func hashPath(input string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(input)))[:8]
}

func runID(now time.Time) string {
	return fmt.Sprintf("%s-%d", now.UTC().Format("20060102T150405"), os.Getpid())
}
