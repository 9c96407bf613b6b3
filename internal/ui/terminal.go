// Package ui provides the terminal user interface for clients.
package ui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/keybridge/internal/client"
	"github.com/dshills/keybridge/internal/input/key"
)

// Terminal implements client.UserInterface on a tcell screen.
//
// A goroutine started by Init polls the screen and queues key events; the
// input loop drains the queue through IsKeyAvailable and GetKey after
// Ready fires. Everything else runs on the input loop.
type Terminal struct {
	screen tcell.Screen
	faces  Faces

	mu      sync.Mutex
	pending []key.Event
	ready   chan struct{}
	done    chan struct{}
}

// NewTerminal creates a terminal on the process's tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen), nil
}

// NewWithScreen creates a terminal on an existing screen. Tests pass a
// tcell simulation screen.
func NewWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen: screen,
		faces:  DefaultFaces(),
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Init initializes the screen and starts polling for events.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	go t.pollLoop()
	return nil
}

// Fini restores the terminal and stops polling.
func (t *Terminal) Fini() {
	t.screen.Fini()
	<-t.done
}

// Faces returns the face registry used for drawing.
func (t *Terminal) Faces() Faces {
	return t.faces
}

// Ready fires when keys were queued or the screen was resized.
func (t *Terminal) Ready() <-chan struct{} {
	return t.ready
}

func (t *Terminal) signal() {
	select {
	case t.ready <- struct{}{}:
	default:
	}
}

func (t *Terminal) pollLoop() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		switch e := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			t.mu.Lock()
			t.pending = append(t.pending, convertKey(e))
			t.mu.Unlock()
			t.signal()
		case *tcell.EventResize:
			t.screen.Sync()
			t.signal()
		}
	}
}

// IsKeyAvailable implements client.UserInterface.
func (t *Terminal) IsKeyAvailable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// GetKey implements client.UserInterface. It must only be called after
// IsKeyAvailable returned true.
func (t *Terminal) GetKey() key.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return key.Event{}
	}
	ev := t.pending[0]
	t.pending = t.pending[1:]
	return ev
}

// Dimensions implements client.UserInterface. The last row is reserved
// for the status and mode lines.
func (t *Terminal) Dimensions() client.DisplayCoord {
	w, h := t.screen.Size()
	if w <= 0 || h <= 1 {
		return client.DisplayCoord{}
	}
	return client.DisplayCoord{Line: h - 1, Column: w}
}

// Draw implements client.UserInterface.
func (t *Terminal) Draw(display client.DisplayBuffer, status, modeLine client.DisplayLine) {
	w, h := t.screen.Size()
	t.screen.Clear()

	for row, line := range display {
		if row >= h-1 {
			break
		}
		t.putLine(0, row, w, line.Text, t.faces.Style(line.Face))
	}

	bottom := h - 1
	used := t.putLine(0, bottom, w, status.Text, t.faces.Style(status.Face))
	modeWidth := uniseg.StringWidth(modeLine.Text)
	if x := w - modeWidth; x > used {
		t.putLine(x, bottom, w, modeLine.Text, t.faces.Style(modeLine.Face))
	}

	t.screen.Show()
}

// putLine draws text from column x, stopping at width, and returns the
// column after the last cell written.
func (t *Terminal) putLine(x, y, width int, text string, style tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cw := g.Width()
		if x+cw > width {
			break
		}
		runes := g.Runes()
		t.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += cw
	}
	return x
}

// convertKey converts a tcell key event to a key.Event.
func convertKey(e *tcell.EventKey) key.Event {
	mods := convertMod(e.Modifiers())
	switch k := e.Key(); k {
	case tcell.KeyRune:
		return key.NewRuneEvent(e.Rune(), mods)
	case tcell.KeyEscape:
		return key.NewSpecialEvent(key.KeyEscape, mods)
	case tcell.KeyEnter:
		return key.NewSpecialEvent(key.KeyEnter, mods)
	case tcell.KeyTab:
		return key.NewSpecialEvent(key.KeyTab, mods)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.NewSpecialEvent(key.KeyBackspace, mods)
	case tcell.KeyDelete:
		return key.NewSpecialEvent(key.KeyDelete, mods)
	case tcell.KeyHome:
		return key.NewSpecialEvent(key.KeyHome, mods)
	case tcell.KeyEnd:
		return key.NewSpecialEvent(key.KeyEnd, mods)
	case tcell.KeyPgUp:
		return key.NewSpecialEvent(key.KeyPageUp, mods)
	case tcell.KeyPgDn:
		return key.NewSpecialEvent(key.KeyPageDown, mods)
	case tcell.KeyUp:
		return key.NewSpecialEvent(key.KeyUp, mods)
	case tcell.KeyDown:
		return key.NewSpecialEvent(key.KeyDown, mods)
	case tcell.KeyLeft:
		return key.NewSpecialEvent(key.KeyLeft, mods)
	case tcell.KeyRight:
		return key.NewSpecialEvent(key.KeyRight, mods)
	default:
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			return key.NewRuneEvent(rune('a'+int(k-tcell.KeyCtrlA)), mods|key.ModCtrl)
		}
		return key.NewSpecialEvent(key.KeyNone, mods)
	}
}

// convertMod converts tcell modifiers to key modifiers.
func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= key.ModMeta
	}
	return mods
}
