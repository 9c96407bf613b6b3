package buffer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/keybridge/internal/option"
)

// DebugName is the name of the buffer collecting diagnostics.
const DebugName = "*debug*"

// Buffer manager errors.
var (
	// ErrBufferNotFound indicates no buffer has the given name.
	ErrBufferNotFound = errors.New("buffer not found")

	// ErrBufferExists indicates a buffer with the same name is already open.
	ErrBufferExists = errors.New("buffer already exists")

	// ErrNotFile indicates the buffer has no file to write to.
	ErrNotFile = errors.New("buffer is not backed by a file")
)

// FileTimestamp returns the modification time of path, or the zero time
// when the file cannot be stat'ed.
func FileTimestamp(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Manager tracks the open buffers by name.
//
// Manager is not safe for concurrent use.
type Manager struct {
	options *option.Manager
	buffers map[string]*Buffer
	order   []string
}

// NewManager creates a manager whose buffers inherit options from global.
func NewManager(global *option.Manager) *Manager {
	return &Manager{
		options: global,
		buffers: make(map[string]*Buffer),
	}
}

// Get returns the buffer called name, or nil if there is none.
func (m *Manager) Get(name string) *Buffer {
	return m.buffers[name]
}

// Buffers returns the open buffers in creation order.
func (m *Manager) Buffers() []*Buffer {
	out := make([]*Buffer, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.buffers[name])
	}
	return out
}

// Scratch creates a buffer not backed by a file.
func (m *Manager) Scratch(name, content string) (*Buffer, error) {
	if _, exists := m.buffers[name]; exists {
		return nil, fmt.Errorf("%s: %w", name, ErrBufferExists)
	}
	b := New(name, content, 0, m.options)
	m.add(b)
	return b, nil
}

// Debug returns the debug buffer, creating it on first use.
func (m *Manager) Debug() *Buffer {
	if b, ok := m.buffers[DebugName]; ok {
		return b
	}
	b := New(DebugName, "", FlagDebug, m.options)
	m.add(b)
	return b
}

// Open returns the buffer for path, reading the file if it is not open yet.
// A path that does not exist yields an empty buffer flagged new.
func (m *Manager) Open(path string) (*Buffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if b, ok := m.buffers[abs]; ok {
		return b, nil
	}
	b, err := m.readFile(abs, m.options)
	if err != nil {
		return nil, err
	}
	m.add(b)
	return b, nil
}

// Reload re-reads the file of the buffer called name into a fresh buffer
// that replaces it. The replaced buffer is marked closed and the new one
// keeps its option scope. When the file no longer exists the buffer is
// left in place and the error matches fs.ErrNotExist.
func (m *Manager) Reload(name string) (*Buffer, error) {
	old, ok := m.buffers[name]
	if !ok {
		return nil, fmt.Errorf("reload %s: %w", name, ErrBufferNotFound)
	}
	b, err := m.readFile(name, nil)
	if err != nil {
		return nil, err
	}
	if b.Flags().Has(FlagNew) {
		return nil, &fs.PathError{Op: "reload", Path: name, Err: fs.ErrNotExist}
	}
	b.options = old.options
	old.markClosed()
	m.buffers[name] = b
	return b, nil
}

// Save writes the buffer called name to its file and records the new
// on-disk timestamp, so the write is not mistaken for an external change.
func (m *Manager) Save(name string) error {
	b, ok := m.buffers[name]
	if !ok {
		return fmt.Errorf("save %s: %w", name, ErrBufferNotFound)
	}
	if !b.Flags().Has(FlagFile) {
		return fmt.Errorf("save %s: %w", name, ErrNotFile)
	}
	if err := os.WriteFile(name, []byte(b.Text()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	b.MarkSaved()
	b.SetFSTimestamp(FileTimestamp(name))
	b.clearFlag(FlagNew)
	return nil
}

// Delete closes the buffer called name.
func (m *Manager) Delete(name string) error {
	b, ok := m.buffers[name]
	if !ok {
		return fmt.Errorf("delete %s: %w", name, ErrBufferNotFound)
	}
	b.markClosed()
	delete(m.buffers, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Manager) add(b *Buffer) {
	m.buffers[b.name] = b
	m.order = append(m.order, b.name)
}

func (m *Manager) readFile(path string, parent *option.Manager) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(path, "", FlagFile|FlagNew, parent), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	b := New(path, string(data), FlagFile, parent)
	b.fsTimestamp = FileTimestamp(path)
	return b, nil
}
