package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Layout selects how a task file is written.
type Layout string

const (
	// LayoutVersioned wraps records in {"schema_version": N, "tasks": [...]}.
	LayoutVersioned Layout = "versioned"
	// LayoutLegacy writes the bare record array used by older releases.
	LayoutLegacy Layout = "legacy"
)

// ParseLayout parses a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutVersioned, "":
		return LayoutVersioned, nil
	case LayoutLegacy:
		return LayoutLegacy, nil
	default:
		return "", fmt.Errorf("unknown file format %q (want versioned or legacy)", s)
	}
}

// Info describes what Load found on disk.
type Info struct {
	Missing  bool   // file did not exist; store is empty
	Layout   Layout // layout the file was written in
	Version  int    // schema version declared or inferred from record arity
	Upgraded bool   // records were padded to the active schema
}

type document struct {
	SchemaVersion int        `json:"schema_version"`
	Tasks         [][]string `json:"tasks"`
}

// Load reads the task file at path into a store using schema. A missing file
// yields an empty store.
func Load(path string, schema Schema) (*Store, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStore(schema), Info{Missing: true, Version: schema.Version}, nil
		}
		return nil, Info{}, fmt.Errorf("read todo file: %w", err)
	}

	store, info, err := Decode(data, schema)
	if err != nil {
		return nil, Info{}, fmt.Errorf("parse todo file %s: %w", path, err)
	}
	return store, info, nil
}

// Decode parses task file content into a store using schema.
func Decode(data []byte, schema Schema) (*Store, Info, error) {
	if errs := validateDocument(data); len(errs) > 0 {
		return nil, Info{}, deepest(errs)
	}

	var (
		records [][]string
		info    Info
	)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, Info{}, &FormatError{Err: err}
		}
		info.Layout = LayoutLegacy
		info.Version = inferVersion(records, schema)
	} else {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, Info{}, &FormatError{Err: err}
		}
		records = doc.Tasks
		info.Layout = LayoutVersioned
		info.Version = doc.SchemaVersion
	}

	declared, err := SchemaForVersion(info.Version)
	if err != nil {
		return nil, Info{}, &FormatError{Path: "schema_version", Err: err}
	}
	if declared.FlagCount() > schema.FlagCount() {
		return nil, Info{}, &FormatError{
			Path: "schema_version",
			Err:  fmt.Errorf("file uses schema version %d, newer than active version %d", declared.Version, schema.Version),
		}
	}
	info.Upgraded = declared.FlagCount() < schema.FlagCount()

	store := NewStore(schema)
	for i, rec := range records {
		task, err := decodeRecord(rec, declared)
		if err != nil {
			return nil, Info{}, &FormatError{Path: recordPath(info.Layout, i), Err: err}
		}
		if len(task.Flags) < schema.FlagCount() {
			info.Upgraded = true
		}
		store.insert(task)
	}
	return store, info, nil
}

func decodeRecord(rec []string, schema Schema) (Task, error) {
	if len(rec) < 1 {
		return Task{}, errors.New("empty record")
	}
	glyphs := rec[1:]
	if len(glyphs) > schema.FlagCount() {
		return Task{}, fmt.Errorf("record has %d flags, schema version %d allows %d", len(glyphs), schema.Version, schema.FlagCount())
	}
	task := Task{Label: rec[0], Flags: make([]bool, len(glyphs))}
	for i, g := range glyphs {
		v, err := ParseGlyph(g)
		if err != nil {
			return Task{}, err
		}
		task.Flags[i] = v
	}
	return task, nil
}

// inferVersion picks the schema version matching the widest legacy record.
// An empty legacy file takes the active version.
func inferVersion(records [][]string, active Schema) int {
	if len(records) == 0 {
		return active.Version
	}
	widest := 0
	for _, rec := range records {
		if n := len(rec) - 1; n > widest {
			widest = n
		}
	}
	for v := 1; v <= LatestSchemaVersion; v++ {
		if s, _ := SchemaForVersion(v); s.FlagCount() >= widest {
			return v
		}
	}
	return LatestSchemaVersion + 1
}

// deepest picks the violation located furthest into the document, which for
// a failed oneOf is the branch that got closest to matching.
func deepest(errs []error) error {
	best := errs[0]
	bestLen := -1
	for _, err := range errs {
		var fe *FormatError
		if errors.As(err, &fe) && len(fe.Path) > bestLen {
			best, bestLen = err, len(fe.Path)
		}
	}
	return best
}

func recordPath(layout Layout, i int) string {
	if layout == LayoutLegacy {
		return fmt.Sprintf("[%d]", i)
	}
	return fmt.Sprintf("tasks[%d]", i)
}

// Encode renders the store as task file content.
func Encode(s *Store, layout Layout) ([]byte, error) {
	records := make([][]string, 0, s.Len())
	for _, t := range s.tasks {
		rec := make([]string, 0, 1+len(t.Flags))
		rec = append(rec, t.Label)
		for _, v := range t.Flags {
			rec = append(rec, Glyph(v))
		}
		records = append(records, rec)
	}

	var v interface{} = document{SchemaVersion: s.schema.Version, Tasks: records}
	if layout == LayoutLegacy {
		v = records
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal todo file: %w", err)
	}
	return append(data, '\n'), nil
}

// Save overwrites path with a full snapshot of the store. The write is not
// atomic; a crash mid-write can leave a truncated file.
func Save(path string, s *Store, layout Layout) error {
	data, err := Encode(s, layout)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write todo file: %w", err)
	}
	return nil
}

// ValidationResult contains the outcome of checking a task file on disk.
type ValidationResult struct {
	Valid  bool
	Errors []error
	Info   Info
	Tasks  int
}

// ValidateFile checks the task file at path without keeping the result.
func ValidateFile(path string, schema Schema) *ValidationResult {
	result := &ValidationResult{Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Info = Info{Missing: true, Version: schema.Version}
			return result
		}
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("read todo file: %w", err))
		return result
	}

	if errs := validateDocument(data); len(errs) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, errs...)
		return result
	}

	store, info, err := Decode(data, schema)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		return result
	}
	result.Info = info
	result.Tasks = store.Len()
	return result
}
