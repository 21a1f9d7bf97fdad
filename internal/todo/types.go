// Package todo holds the task list, its operations, and the file codec.
package todo

import (
	"fmt"
	"strings"
)

// Glyphs used on disk for flag values.
const (
	GlyphUnchecked = "☐"
	GlyphChecked   = "☑"
)

// Flag identifies a status flag by its position in the schema.
type Flag int

// FlagSpec describes one status flag column.
type FlagSpec struct {
	Name  string
	Title string
}

// Schema is an explicit flag layout. Every task in a store carries exactly
// len(Flags) flags.
type Schema struct {
	Version int
	Flags   []FlagSpec
}

var (
	// SchemaV1 has a single "finished" flag.
	SchemaV1 = Schema{
		Version: 1,
		Flags: []FlagSpec{
			{Name: "finished", Title: "Finished"},
		},
	}

	// SchemaV2 adds a "data ready" flag ahead of "finished".
	SchemaV2 = Schema{
		Version: 2,
		Flags: []FlagSpec{
			{Name: "data", Title: "Data Ready"},
			{Name: "finished", Title: "Finished"},
		},
	}
)

// LatestSchemaVersion is the newest known schema version.
const LatestSchemaVersion = 2

// SchemaForVersion returns the schema registered for version.
func SchemaForVersion(version int) (Schema, error) {
	switch version {
	case 1:
		return SchemaV1, nil
	case 2:
		return SchemaV2, nil
	default:
		return Schema{}, fmt.Errorf("unknown schema version %d (want 1..%d)", version, LatestSchemaVersion)
	}
}

// FlagCount returns the number of flags per task.
func (s Schema) FlagCount() int {
	return len(s.Flags)
}

// Valid reports whether f names a flag in this schema.
func (s Schema) Valid(f Flag) bool {
	return f >= 0 && int(f) < len(s.Flags)
}

// Flag resolves a flag by name or 1-based number ("data", "finished", "2").
func (s Schema) Flag(name string) (Flag, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, spec := range s.Flags {
		if spec.Name == key || strings.EqualFold(spec.Title, key) {
			return Flag(i), nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(key, "%d", &n); err == nil && s.Valid(Flag(n-1)) {
		return Flag(n - 1), nil
	}
	return -1, fmt.Errorf("%w %q", ErrUnknownFlag, name)
}

// Names returns the flag names in column order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Flags))
	for i, spec := range s.Flags {
		names[i] = spec.Name
	}
	return names
}

// Task is a single entry in the list.
type Task struct {
	Label string
	Flags []bool
}

// Checked reports whether flag f is set. Out-of-range flags read as false.
func (t Task) Checked(f Flag) bool {
	if f < 0 || int(f) >= len(t.Flags) {
		return false
	}
	return t.Flags[f]
}

// Done reports whether every flag is set.
func (t Task) Done() bool {
	if len(t.Flags) == 0 {
		return false
	}
	for _, v := range t.Flags {
		if !v {
			return false
		}
	}
	return true
}

func (t Task) clone() Task {
	flags := make([]bool, len(t.Flags))
	copy(flags, t.Flags)
	return Task{Label: t.Label, Flags: flags}
}

// Direction is a move offset.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// NoSelection is the index used when no task is selected.
const NoSelection = -1

// Glyph returns the on-disk encoding of v.
func Glyph(v bool) string {
	if v {
		return GlyphChecked
	}
	return GlyphUnchecked
}

// ParseGlyph decodes a flag glyph.
func ParseGlyph(s string) (bool, error) {
	switch s {
	case GlyphChecked:
		return true, nil
	case GlyphUnchecked:
		return false, nil
	default:
		return false, fmt.Errorf("invalid status glyph %q, must be %q or %q", s, GlyphUnchecked, GlyphChecked)
	}
}
