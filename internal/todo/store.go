package todo

import (
	"fmt"
	"strings"
)

// Store is the ordered, in-memory task list.
type Store struct {
	schema Schema
	tasks  []Task
}

// NewStore returns an empty store using schema.
func NewStore(schema Schema) *Store {
	return &Store{schema: schema}
}

// Schema returns the active schema.
func (s *Store) Schema() Schema {
	return s.schema
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Task returns a copy of the task at index.
func (s *Store) Task(index int) (Task, bool) {
	if index < 0 || index >= len(s.tasks) {
		return Task{}, false
	}
	return s.tasks[index].clone(), true
}

// Tasks returns a copy of all tasks in order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

// Counts returns how many tasks have each flag set, by flag position.
func (s *Store) Counts() []int {
	counts := make([]int, s.schema.FlagCount())
	for _, t := range s.tasks {
		for i, v := range t.Flags {
			if v {
				counts[i]++
			}
		}
	}
	return counts
}

// Add appends a task with every flag unchecked.
func (s *Store) Add(label string) error {
	if err := checkLabel(label); err != nil {
		return err
	}
	s.tasks = append(s.tasks, Task{Label: label, Flags: make([]bool, s.schema.FlagCount())})
	return nil
}

// Remove deletes the task at index.
func (s *Store) Remove(index int) error {
	if err := s.checkIndex("remove", index); err != nil {
		return err
	}
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	return nil
}

// Edit replaces the label at index and clears its flags.
func (s *Store) Edit(index int, label string) error {
	if err := s.checkIndex("edit", index); err != nil {
		return err
	}
	if err := checkLabel(label); err != nil {
		return err
	}
	s.tasks[index] = Task{Label: label, Flags: make([]bool, s.schema.FlagCount())}
	return nil
}

// Rename replaces the label at index and keeps its flags.
func (s *Store) Rename(index int, label string) error {
	if err := s.checkIndex("edit", index); err != nil {
		return err
	}
	if err := checkLabel(label); err != nil {
		return err
	}
	s.tasks[index].Label = label
	return nil
}

// Move shifts the task at index one position in dir and returns its new
// index. A move past either end leaves the list untouched and returns a
// SelectionError.
func (s *Store) Move(index int, dir Direction) (int, error) {
	if err := s.checkIndex("move", index); err != nil {
		return index, err
	}
	if dir != Up && dir != Down {
		return index, fmt.Errorf("invalid direction %d", int(dir))
	}
	target := index + int(dir)
	if target < 0 || target >= len(s.tasks) {
		return index, &SelectionError{
			Op:     "move",
			Index:  index,
			Reason: fmt.Sprintf("cannot move %s, already at the %s", dir, edgeName(dir)),
		}
	}
	task := s.tasks[index]
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.tasks = append(s.tasks[:target], append([]Task{task}, s.tasks[target:]...)...)
	return target, nil
}

// ToggleFlag flips flag f on the task at index.
func (s *Store) ToggleFlag(index int, f Flag) error {
	if err := s.checkIndex("toggle", index); err != nil {
		return err
	}
	if !s.schema.Valid(f) {
		return fmt.Errorf("%w %d for schema version %d", ErrUnknownFlag, int(f)+1, s.schema.Version)
	}
	s.tasks[index].Flags[f] = !s.tasks[index].Flags[f]
	return nil
}

// ResetAll clears every flag on every task.
func (s *Store) ResetAll() {
	for i := range s.tasks {
		for j := range s.tasks[i].Flags {
			s.tasks[i].Flags[j] = false
		}
	}
}

// Upgrade switches the store to a schema with at least as many flags,
// padding every task with unchecked flags.
func (s *Store) Upgrade(schema Schema) error {
	if schema.FlagCount() < s.schema.FlagCount() {
		return fmt.Errorf("cannot downgrade from schema version %d to %d", s.schema.Version, schema.Version)
	}
	for i := range s.tasks {
		s.tasks[i].Flags = padFlags(s.tasks[i].Flags, schema.FlagCount())
	}
	s.schema = schema
	return nil
}

// insert appends a fully formed task; used by the decoder.
func (s *Store) insert(t Task) {
	t.Flags = padFlags(t.Flags, s.schema.FlagCount())
	s.tasks = append(s.tasks, t)
}

func (s *Store) checkIndex(op string, index int) error {
	if index == NoSelection {
		return &SelectionError{Op: op, Index: NoSelection, Reason: "no task selected"}
	}
	if index < 0 || index >= len(s.tasks) {
		return &SelectionError{Op: op, Index: index, Reason: fmt.Sprintf("no such task (list has %d)", len(s.tasks))}
	}
	return nil
}

func checkLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return &ValidationError{Field: "label", Reason: "must not be empty"}
	}
	return nil
}

func padFlags(flags []bool, n int) []bool {
	if len(flags) >= n {
		return flags
	}
	out := make([]bool, n)
	copy(out, flags)
	return out
}

func edgeName(dir Direction) string {
	if dir == Up {
		return "top"
	}
	return "bottom"
}
