// Package buffer provides the text buffers the client edits and reloads.
//
// A Buffer holds its content as lines, a modification timestamp that
// increases on every change, and the on-disk timestamp recorded when the
// file was last read or acknowledged. The editing engine proper lives
// elsewhere; this package only offers what the shell bridge and the
// autoreload workflow need.
package buffer

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dshills/keybridge/internal/option"
)

// Flags describe the kind of a buffer.
type Flags uint8

const (
	// FlagFile marks a buffer backed by a file on disk.
	FlagFile Flags = 1 << iota
	// FlagNew marks a file buffer whose file did not exist when opened.
	FlagNew
	// FlagDebug marks the debug buffer.
	FlagDebug
)

// Has reports whether f contains flag.
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// Coord is a position in a buffer. Column is a byte offset into the line.
type Coord struct {
	Line   int
	Column int
}

// Buffer is a named text buffer.
type Buffer struct {
	mu sync.Mutex

	name        string
	flags       Flags
	lines       []string
	timestamp   int
	saved       int
	fsTimestamp time.Time
	options     *option.Manager
	closed      bool
}

// New creates a buffer with the given content. The buffer's option scope
// falls back to parent.
func New(name string, content string, flags Flags, parent *option.Manager) *Buffer {
	b := &Buffer{
		name:    name,
		flags:   flags,
		lines:   splitLines(content),
		options: option.NewManager(parent),
	}
	return b
}

// splitLines splits content into lines without their terminators.
// Content always has at least one line.
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

// Name returns the buffer name. For file buffers this is the file path.
func (b *Buffer) Name() string {
	return b.name
}

// DisplayName returns the short name shown in the mode line.
func (b *Buffer) DisplayName() string {
	if b.Flags().Has(FlagFile) {
		return filepath.Base(b.name)
	}
	return b.name
}

// Flags returns the buffer flags.
func (b *Buffer) Flags() Flags {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flags
}

// Options returns the buffer's option scope.
func (b *Buffer) Options() *option.Manager {
	return b.options
}

// Timestamp returns the modification timestamp. It increases on every change.
func (b *Buffer) Timestamp() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timestamp
}

// IsModified reports whether the buffer changed since it was last loaded
// or saved.
func (b *Buffer) IsModified() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timestamp != b.saved
}

// MarkSaved records the current content as saved.
func (b *Buffer) MarkSaved() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = b.timestamp
}

// FSTimestamp returns the on-disk timestamp recorded for the buffer's file.
func (b *Buffer) FSTimestamp() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fsTimestamp
}

// SetFSTimestamp records the on-disk timestamp for the buffer's file.
func (b *Buffer) SetFSTimestamp(ts time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fsTimestamp = ts
}

// Closed reports whether the buffer was removed from its manager.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Line returns line i, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// Text returns the full content with a trailing newline per line.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n") + "\n"
}

// Replace replaces the whole content.
func (b *Buffer) Replace(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = splitLines(content)
	b.timestamp++
}

// Write appends p to the end of the buffer. It lets the debug buffer
// serve as a log destination.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text := strings.TrimSuffix(string(p), "\n")
	added := strings.Split(text, "\n")
	if len(b.lines) == 1 && b.lines[0] == "" {
		b.lines = added
	} else {
		b.lines = append(b.lines, added...)
	}
	b.timestamp++
	return len(p), nil
}

// Clamp returns c moved to the nearest valid position in the buffer.
// Columns are snapped back to the start of a character.
func (b *Buffer) Clamp(c Coord) Coord {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.Line < 0 {
		c.Line = 0
	}
	if c.Line >= len(b.lines) {
		c.Line = len(b.lines) - 1
	}
	line := b.lines[c.Line]
	if c.Column < 0 {
		c.Column = 0
	}
	if c.Column > len(line) {
		c.Column = len(line)
	}
	for c.Column > 0 && c.Column < len(line) && !utf8.RuneStart(line[c.Column]) {
		c.Column--
	}
	return c
}

func (b *Buffer) clearFlag(flag Flags) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flags &^= flag
}

func (b *Buffer) markClosed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
