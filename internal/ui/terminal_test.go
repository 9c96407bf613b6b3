package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keybridge/internal/client"
	"github.com/dshills/keybridge/internal/input/key"
)

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewWithScreen(screen)
	require.NoError(t, term.Init())
	screen.SetSize(w, h)
	t.Cleanup(term.Fini)
	return term, screen
}

func row(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		runes := cells[y*w+x].Runes
		if len(runes) == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(string(runes))
	}
	return sb.String()
}

func TestTerminal_Dimensions(t *testing.T) {
	term, screen := newSimTerminal(t, 40, 10)
	assert.Equal(t, client.DisplayCoord{Line: 9, Column: 40}, term.Dimensions())

	screen.SetSize(40, 1)
	assert.False(t, term.Dimensions().HasArea())
}

func TestTerminal_KeysAreQueued(t *testing.T) {
	term, screen := newSimTerminal(t, 20, 5)

	screen.InjectKey(tcell.KeyRune, 'r', tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)

	require.Eventually(t, func() bool {
		term.mu.Lock()
		defer term.mu.Unlock()
		return len(term.pending) == 2
	}, time.Second, 5*time.Millisecond)

	require.True(t, term.IsKeyAvailable())
	assert.True(t, term.GetKey().Is('r'))
	assert.Equal(t, key.KeyEnter, term.GetKey().Key)
	assert.False(t, term.IsKeyAvailable())
	assert.Equal(t, key.Event{}, term.GetKey())
}

func TestTerminal_ReadySignals(t *testing.T) {
	term, screen := newSimTerminal(t, 20, 5)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)

	select {
	case <-term.Ready():
	case <-time.After(time.Second):
		t.Fatal("no ready signal after key")
	}
}

func TestTerminal_Draw(t *testing.T) {
	term, screen := newSimTerminal(t, 20, 4)

	display := client.DisplayBuffer{
		{Text: "hello"},
		{Text: "world"},
	}
	status := client.DisplayLine{Text: "saved", Face: client.FaceInformation}
	mode := client.DisplayLine{Text: "f 1:1", Face: client.FaceStatusLine}
	term.Draw(display, status, mode)

	assert.Equal(t, "hello", strings.TrimRight(row(screen, 0), " "))
	assert.Equal(t, "world", strings.TrimRight(row(screen, 1), " "))
	assert.Equal(t, "saved          f 1:1", row(screen, 3))

	cells, w, _ := screen.GetContents()
	assert.Equal(t, term.Faces().Style(client.FaceInformation), cells[3*w].Style)
}

func TestTerminal_DrawModeLineYieldsToStatus(t *testing.T) {
	term, screen := newSimTerminal(t, 10, 2)

	term.Draw(nil, client.DisplayLine{Text: "a long status"}, client.DisplayLine{Text: "mode"})
	assert.Equal(t, "a long sta", row(screen, 1))
}

func TestFaces(t *testing.T) {
	faces := DefaultFaces()
	assert.Equal(t, tcell.StyleDefault, faces.Style("nope"))

	custom := tcell.StyleDefault.Bold(true)
	faces.Set(client.FaceError, custom)
	assert.Equal(t, custom, faces.Style(client.FaceError))
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want key.Event
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), key.NewRuneEvent('k', 0)},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModAlt), key.NewRuneEvent('k', key.ModAlt)},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyEscape, 0)},
		{"backspace2", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyBackspace, 0)},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyPageDown, 0)},
		{"ctrl letter", tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl), key.NewRuneEvent('r', key.ModCtrl)},
		{"unknown", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyNone, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertKey(tt.ev)
			assert.Equal(t, tt.want.Key, got.Key)
			assert.Equal(t, tt.want.Rune, got.Rune)
			assert.Equal(t, tt.want.Modifiers, got.Modifiers)
		})
	}
}
