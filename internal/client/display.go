package client

import "github.com/dshills/keybridge/internal/input/key"

// Face names resolved to concrete styles by the user interface.
const (
	FaceDefault     = ""
	FaceStatusLine  = "StatusLine"
	FaceInformation = "Information"
	FacePrompt      = "Prompt"
	FaceError       = "Error"
)

// DisplayCoord is a position or size on screen, in lines and columns.
type DisplayCoord struct {
	Line   int
	Column int
}

// HasArea reports whether a surface of these dimensions can show anything.
func (c DisplayCoord) HasArea() bool {
	return c.Line > 0 && c.Column > 0
}

// DisplayLine is a single line of text drawn with a named face.
type DisplayLine struct {
	Text string
	Face string
}

// DisplayBuffer is the window content prepared for drawing.
type DisplayBuffer []DisplayLine

// UserInterface is the client's handle on the terminal.
type UserInterface interface {
	// IsKeyAvailable reports whether GetKey would return without blocking.
	IsKeyAvailable() bool
	// GetKey returns the next key event.
	GetKey() key.Event
	// Dimensions returns the drawable area. A zero value means nothing
	// can be drawn.
	Dimensions() DisplayCoord
	// Draw renders the window content, the status line and the mode line.
	Draw(display DisplayBuffer, status DisplayLine, modeLine DisplayLine)
}
