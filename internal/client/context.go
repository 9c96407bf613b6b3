package client

import (
	"github.com/dshills/keybridge/internal/buffer"
	"github.com/dshills/keybridge/internal/option"
)

// Selection is a range in the buffer. Cursor is the end that moves.
type Selection struct {
	Anchor buffer.Coord
	Cursor buffer.Coord
}

// NewCursor returns an empty selection at c.
func NewCursor(c buffer.Coord) Selection {
	return Selection{Anchor: c, Cursor: c}
}

// Last returns the trailing position of the selection.
func (s Selection) Last() buffer.Coord {
	return s.Cursor
}

// Context bundles what an editing command runs against: the client, its
// window and buffer, the selections and the option scope.
//
// A headless context has no client or window; its options come from the
// scope it was created with. Commands run from the command line use one.
type Context struct {
	name       string
	client     *Client
	window     *Window
	selections []Selection
	main       int
	options    *option.Manager
}

// NewHeadlessContext creates a context without client or window.
func NewHeadlessContext(name string, options *option.Manager) *Context {
	return &Context{
		name:       name,
		options:    options,
		selections: []Selection{{}},
	}
}

// Name returns the context name, the client name for interactive contexts.
func (c *Context) Name() string { return c.name }

// Client returns the owning client, or nil for headless contexts.
func (c *Context) Client() *Client { return c.client }

// HasWindow reports whether the context is attached to a window.
func (c *Context) HasWindow() bool { return c.window != nil }

// Window returns the active window, or nil for headless contexts.
func (c *Context) Window() *Window { return c.window }

// Buffer returns the buffer of the active window, or nil.
func (c *Context) Buffer() *buffer.Buffer {
	if c.window == nil {
		return nil
	}
	return c.window.Buffer()
}

// Options returns the narrowest option scope: the window's when there is
// one, otherwise the scope the context was created with.
func (c *Context) Options() *option.Manager {
	if c.window != nil {
		return c.window.Options()
	}
	return c.options
}

// Selections returns the current selections.
func (c *Context) Selections() []Selection { return c.selections }

// MainSelection returns the primary selection.
func (c *Context) MainSelection() Selection { return c.selections[c.main] }

// SetSelections replaces the selections. The first becomes the primary one.
// An empty list leaves a single cursor at the origin.
func (c *Context) SetSelections(sels []Selection) {
	if len(sels) == 0 {
		sels = []Selection{{}}
	}
	c.selections = sels
	c.main = 0
}

// PrintStatus shows a status message on the owning client, if any.
func (c *Context) PrintStatus(line DisplayLine) {
	if c.client != nil {
		c.client.PrintStatus(line)
	}
}

// setWindow attaches the context to win and resets the selections.
func (c *Context) setWindow(win *Window) {
	c.window = win
	c.SetSelections(nil)
}
