package client

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/keybridge/internal/buffer"
	"github.com/dshills/keybridge/internal/option"
)

// Window is a view on a buffer.
//
// Its option scope falls back to the buffer's, which falls back to the
// global scope. The render timestamp records which buffer modification the
// display buffer was built from; -1 forces the next redraw.
type Window struct {
	buffer     *buffer.Buffer
	options    *option.Manager
	position   DisplayCoord
	dimensions DisplayCoord
	timestamp  int
	display    DisplayBuffer
}

// NewWindow creates a window showing buf.
func NewWindow(buf *buffer.Buffer) *Window {
	return &Window{
		buffer:    buf,
		options:   option.NewManager(buf.Options()),
		timestamp: -1,
	}
}

// Buffer returns the displayed buffer.
func (w *Window) Buffer() *buffer.Buffer { return w.buffer }

// Options returns the window's option scope.
func (w *Window) Options() *option.Manager { return w.options }

// Position returns the scroll offset: the first displayed line and column.
func (w *Window) Position() DisplayCoord { return w.position }

// SetPosition sets the scroll offset.
func (w *Window) SetPosition(pos DisplayCoord) {
	w.position = pos
	w.timestamp = -1
}

// Dimensions returns the window size.
func (w *Window) Dimensions() DisplayCoord { return w.dimensions }

// SetDimensions sets the window size.
func (w *Window) SetDimensions(dim DisplayCoord) {
	if dim != w.dimensions {
		w.dimensions = dim
		w.timestamp = -1
	}
}

// Timestamp returns the buffer timestamp the display was built from.
func (w *Window) Timestamp() int { return w.timestamp }

// ForgetTimestamp forces the next redraw.
func (w *Window) ForgetTimestamp() { w.timestamp = -1 }

// DisplayBuffer returns the content built by the last UpdateDisplayBuffer.
func (w *Window) DisplayBuffer() DisplayBuffer { return w.display }

// UpdateDisplayBuffer rebuilds the visible lines from the buffer, expanding
// tabs to the tabstop option seen from the window scope.
func (w *Window) UpdateDisplayBuffer() {
	tabstop := 8
	if opt, err := w.options.Get("tabstop"); err == nil {
		if n, err := opt.Int(); err == nil && n > 0 {
			tabstop = n
		}
	}

	display := make(DisplayBuffer, 0, w.dimensions.Line)
	for row := 0; row < w.dimensions.Line; row++ {
		lineNo := w.position.Line + row
		if lineNo >= w.buffer.LineCount() {
			break
		}
		text := expandTabs(w.buffer.Line(lineNo), tabstop)
		text = clipColumns(text, w.position.Column, w.dimensions.Column)
		display = append(display, DisplayLine{Text: text})
	}
	w.display = display
	w.timestamp = w.buffer.Timestamp()
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(line string, tabstop int) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var sb strings.Builder
	col := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		cluster := g.Str()
		if cluster == "\t" {
			n := tabstop - col%tabstop
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteString(cluster)
		col += g.Width()
	}
	return sb.String()
}

// clipColumns drops the first skip display columns and keeps at most width.
func clipColumns(line string, skip, width int) string {
	var sb strings.Builder
	col := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		w := g.Width()
		if col >= skip && col+w-skip <= width {
			sb.WriteString(g.Str())
		}
		col += w
		if col-skip >= width {
			break
		}
	}
	return sb.String()
}
