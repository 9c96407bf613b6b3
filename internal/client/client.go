package client

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/keybridge/internal/buffer"
)

// Client is one user interface attached to the editing session.
//
// It owns its window, its input handler and the status line. The status
// and mode lines are pulled by RedrawIfNeeded; printing a status only
// invalidates the window so the next redraw picks it up.
type Client struct {
	ui      UserInterface
	buffers *buffer.Manager
	session string
	ctx     *Context
	input   *InputHandler
	status  DisplayLine
}

// New creates a client named name showing win. buffers is used to find
// and reload buffers by name; session is shown in the mode line.
func New(ui UserInterface, win *Window, buffers *buffer.Manager, name, session string, mode Mode) *Client {
	c := &Client{
		ui:      ui,
		buffers: buffers,
		session: session,
	}
	c.ctx = &Context{name: name, client: c}
	c.ctx.setWindow(win)
	c.input = NewInputHandler(c.ctx, mode)
	return c
}

// Context returns the client's context.
func (c *Client) Context() *Context { return c.ctx }

// UI returns the user interface handle.
func (c *Client) UI() UserInterface { return c.ui }

// Input returns the input handler.
func (c *Client) Input() *InputHandler { return c.input }

// Session returns the session identifier.
func (c *Client) Session() string { return c.session }

// HandleAvailableInput feeds every available key to the input handler.
func (c *Client) HandleAvailableInput() {
	for c.ui.IsKeyAvailable() {
		c.input.HandleKey(c.ui.GetKey())
	}
	c.ctx.Window().ForgetTimestamp()
}

// PrintStatus sets the status line shown on the next redraw.
func (c *Client) PrintStatus(line DisplayLine) {
	c.status = line
	c.ctx.Window().ForgetTimestamp()
}

// Status returns the current status line.
func (c *Client) Status() DisplayLine { return c.status }

// ModeLine builds the mode summary: buffer name, cursor position and
// state markers, mode name and client/session identifiers.
func (c *Client) ModeLine() DisplayLine {
	buf := c.ctx.Buffer()
	pos := c.ctx.MainSelection().Last()
	col := CharColumn(buf.Line(pos.Line), pos.Column)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d:%d", buf.DisplayName(), pos.Line+1, col+1)
	if buf.IsModified() {
		sb.WriteString(" [+]")
	}
	if c.input.IsRecording() {
		fmt.Fprintf(&sb, " [recording (%c)]", c.input.RecordingReg())
	}
	if buf.Flags().Has(buffer.FlagNew) {
		sb.WriteString(" [new file]")
	}
	fmt.Fprintf(&sb, " [%s] - %s@[%s]", c.input.ModeString(), c.ctx.Name(), c.session)
	return DisplayLine{Text: sb.String(), Face: FaceStatusLine}
}

// CharColumn converts the byte column col of line to a character count,
// counting code points. Columns past the end count the whole line.
func CharColumn(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}
	return utf8.RuneCountInString(line[:col])
}

// ChangeBuffer switches the client to a new window on buf, keeping the
// current screen dimensions.
func (c *Client) ChangeBuffer(buf *buffer.Buffer) {
	win := NewWindow(buf)
	win.SetDimensions(c.ui.Dimensions())
	c.ctx.setWindow(win)
}

// RedrawIfNeeded redraws when the buffer changed since the window was last
// rendered. It does nothing when the interface has no drawable area.
// It reports whether a draw happened.
func (c *Client) RedrawIfNeeded() bool {
	win := c.ctx.Window()
	if win.Timestamp() == c.ctx.Buffer().Timestamp() {
		return false
	}
	dim := c.ui.Dimensions()
	if !dim.HasArea() {
		return false
	}
	win.SetDimensions(dim)
	win.UpdateDisplayBuffer()
	c.ui.Draw(win.DisplayBuffer(), c.status, c.ModeLine())
	return true
}
