// Package buffer provides the two edit-application back-ends: an in-memory
// line buffer mirroring an interactive editor, and a file snapshot that
// writes back only when content actually changed.
package buffer

import (
	"fmt"
	"os"
	"strings"
)

// Memory is a line-addressable buffer over document content. It mirrors an
// interactive editor: edits are visible immediately through Line and Value
// without reloading anything.
type Memory struct {
	lines []string
	dirty bool
}

// NewMemory builds a buffer from full document content.
func NewMemory(content string) *Memory {
	return &Memory{lines: strings.Split(content, "\n")}
}

// Line returns the 0-based line, reporting false when out of range.
func (b *Memory) Line(i int) (string, bool) {
	if i < 0 || i >= len(b.lines) {
		return "", false
	}
	return b.lines[i], true
}

// SetLine replaces the 0-based line. Out-of-range indices are ignored.
func (b *Memory) SetLine(i int, text string) {
	if i < 0 || i >= len(b.lines) {
		return
	}
	if b.lines[i] != text {
		b.lines[i] = text
		b.dirty = true
	}
}

// Value returns the full buffer content.
func (b *Memory) Value() string {
	return strings.Join(b.lines, "\n")
}

// Dirty reports whether any line changed since construction.
func (b *Memory) Dirty() bool { return b.dirty }

// Snapshot reads a file once and applies edits to an in-memory copy.
// Flush writes back only when a line actually changed, so unchanged files
// produce no modification events.
type Snapshot struct {
	path string
	mem  *Memory
	mode os.FileMode
}

// OpenSnapshot reads the file at path.
func OpenSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	return &Snapshot{path: path, mem: NewMemory(string(data)), mode: mode}, nil
}

// Line returns the 0-based line, reporting false when out of range.
func (s *Snapshot) Line(i int) (string, bool) { return s.mem.Line(i) }

// SetLine replaces the 0-based line.
func (s *Snapshot) SetLine(i int, text string) { s.mem.SetLine(i, text) }

// Value returns the current in-memory content.
func (s *Snapshot) Value() string { return s.mem.Value() }

// Dirty reports whether Flush would write.
func (s *Snapshot) Dirty() bool { return s.mem.Dirty() }

// Flush writes the content back, skipping the write when nothing changed.
func (s *Snapshot) Flush() error {
	if !s.mem.Dirty() {
		return nil
	}
	if err := os.WriteFile(s.path, []byte(s.mem.Value()), s.mode); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
