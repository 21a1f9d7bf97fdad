// Package todo holds the task list, its operations, and the file codec.
//
// The task file (todo_list.json) stores each task as a fixed-arity record of a
// label followed by one glyph per status flag:
//
//	{
//	  "schema_version": 2,
//	  "tasks": [
//	    ["Collect survey data", "☑", "☐"],
//	    ["Write report", "☐", "☐"]
//	  ]
//	}
//
// # Schema Versions
//
//   - 1: one flag, "finished"
//   - 2: two flags, "data" (data ready) then "finished"
//
// # Legacy Layout
//
// Files written by older releases are a bare JSON array of records with no
// envelope. For those files the schema version is taken from the record arity.
// Records with fewer flags than the active schema are padded with unchecked
// flags; records with more flags are rejected.
//
// Padding is positional. The single v1 flag is named "finished", but the first
// v2 flag is "data", so a v1 task marked finished loads under schema version 2
// as data ready and not finished. The file keeps that reading once it is saved
// with two flags.
//
// # Glyphs
//
//   - "☐": unchecked
//   - "☑": checked
//
// # File Format
//
// When writing task files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - A full snapshot on every save (no partial updates)
package todo
