package option

import (
	"sort"
	"strings"
)

// Manager is one scope in the option hierarchy (global, buffer, window).
//
// Values set at a scope shadow the same name in its ancestors. The parent
// is a back reference only: a Manager never tracks its children, and the
// owning editor object decides the scope's lifetime.
//
// Manager is not safe for concurrent use. It is read and mutated only from
// the editor's input loop.
type Manager struct {
	parent  *Manager
	options map[string]*Option
}

// NewManager creates a scope whose lookups fall back to parent.
// A nil parent makes the scope a root.
func NewManager(parent *Manager) *Manager {
	return &Manager{
		parent:  parent,
		options: make(map[string]*Option),
	}
}

// NewGlobalManager creates the root scope with the built-in defaults.
func NewGlobalManager() *Manager {
	m := NewManager(nil)
	m.Lookup("tabstop").Set(8)
	return m
}

// Parent returns the parent scope, or nil for the root.
func (m *Manager) Parent() *Manager {
	return m.parent
}

// root walks up to the scope with no parent.
func (m *Manager) root() *Manager {
	r := m
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Get returns the value visible from this scope.
// It returns a *NotFoundError when no scope in the chain declares name.
func (m *Manager) Get(name string) (Option, error) {
	if opt, ok := m.options[name]; ok {
		return *opt, nil
	}
	if m.parent != nil {
		return m.parent.Get(name)
	}
	return Option{}, &NotFoundError{Name: name}
}

// Lookup returns the option visible from this scope for modification.
//
// Unlike Get it never fails: when no scope in the chain declares name, a
// default-valued option is created at the root scope, because each scope
// delegates its miss to the parent's Lookup. A fresh name looked up from a
// window scope therefore becomes a global declaration visible everywhere.
func (m *Manager) Lookup(name string) *Option {
	if opt, ok := m.options[name]; ok {
		return opt
	}
	if m.parent != nil {
		return m.parent.Lookup(name)
	}
	opt := &Option{}
	m.options[name] = opt
	return opt
}

// Declared reports whether any scope in the chain declares name.
func (m *Manager) Declared(name string) bool {
	for s := m; s != nil; s = s.parent {
		if _, ok := s.options[name]; ok {
			return true
		}
	}
	return false
}

// Set assigns value to name.
//
// A name already declared somewhere in the chain is set at this scope,
// shadowing the ancestors without changing them. An undeclared name goes
// through Lookup and so is declared at the root.
func (m *Manager) Set(name string, value any) {
	if !m.Declared(name) {
		m.Lookup(name).Set(value)
		return
	}
	if opt, ok := m.options[name]; ok {
		opt.Set(value)
		return
	}
	m.options[name] = &Option{value: value}
}

// Unset removes the value set at this scope, re-exposing the parent's.
// Unsetting at the root removes the declaration entirely.
func (m *Manager) Unset(name string) {
	delete(m.options, name)
}

// IsLocal reports whether name is set at this scope.
func (m *Manager) IsLocal(name string) bool {
	_, ok := m.options[name]
	return ok
}

// Names returns the names set at this scope, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.options))
	for name := range m.options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Complete returns every option name visible from this scope that starts
// with prefix. Ancestor names come first, root outermost, then names set
// at this scope that were not already listed.
func (m *Manager) Complete(prefix string) []string {
	var result []string
	if m.parent != nil {
		result = m.parent.Complete(prefix)
	}
	seen := make(map[string]struct{}, len(result))
	for _, name := range result {
		seen[name] = struct{}{}
	}
	for _, name := range m.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

// Apply sets every entry of values at this scope.
func (m *Manager) Apply(values map[string]any) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.Set(name, values[name])
	}
}
