package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keybridge/internal/client"
)

// Faces maps face names to terminal styles. Unknown names draw with the
// default style.
type Faces map[string]tcell.Style

// DefaultFaces returns the built-in faces.
func DefaultFaces() Faces {
	return Faces{
		client.FaceDefault:     tcell.StyleDefault,
		client.FaceStatusLine:  tcell.StyleDefault.Foreground(tcell.ColorAqua),
		client.FaceInformation: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow),
		client.FacePrompt:      tcell.StyleDefault.Foreground(tcell.ColorYellow),
		client.FaceError:       tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorRed),
	}
}

// Style returns the style for face.
func (f Faces) Style(face string) tcell.Style {
	if s, ok := f[face]; ok {
		return s
	}
	return tcell.StyleDefault
}

// Set overrides the style of face.
func (f Faces) Set(face string, style tcell.Style) {
	f[face] = style
}
