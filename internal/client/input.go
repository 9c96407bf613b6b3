package client

import "github.com/dshills/keybridge/internal/input/key"

// Mode is the normal key dispatch the input handler falls back to when no
// continuation is pending.
type Mode interface {
	Name() string
	HandleKey(ev key.Event, ctx *Context)
}

// KeyContinuation consumes exactly one key in place of normal dispatch.
type KeyContinuation func(ev key.Event, ctx *Context)

// InputHandler routes key events for one client.
//
// It holds at most one pending continuation. HandleKey takes the
// continuation out of its slot before calling it, so a continuation may
// register a new one (to keep asking) without it being cleared afterwards.
type InputHandler struct {
	ctx     *Context
	mode    Mode
	nextKey KeyContinuation

	recording rune
	recorded  []key.Event
	registers map[rune][]key.Event
	replaying bool
}

// NewInputHandler creates a handler dispatching to mode in ctx.
func NewInputHandler(ctx *Context, mode Mode) *InputHandler {
	if mode == nil {
		mode = NewNormalMode()
	}
	return &InputHandler{
		ctx:       ctx,
		mode:      mode,
		registers: make(map[rune][]key.Event),
	}
}

// OnNextKey diverts the next key to fn. A continuation already pending is
// replaced.
func (h *InputHandler) OnNextKey(fn KeyContinuation) {
	h.nextKey = fn
}

// HasPendingKey reports whether a continuation is waiting for a key.
func (h *InputHandler) HasPendingKey() bool {
	return h.nextKey != nil
}

// HandleKey processes one key event.
func (h *InputHandler) HandleKey(ev key.Event) {
	if fn := h.nextKey; fn != nil {
		h.nextKey = nil
		fn(ev, h.ctx)
		return
	}

	// the key that stops a recording is not part of it
	reg := h.recording
	h.mode.HandleKey(ev, h.ctx)
	if reg != 0 && h.recording == reg {
		h.recorded = append(h.recorded, ev)
	}
}

// ModeString returns the name of the current mode.
func (h *InputHandler) ModeString() string {
	return h.mode.Name()
}

// StartRecording starts recording dispatched keys into register reg.
func (h *InputHandler) StartRecording(reg rune) {
	h.recording = reg
	h.recorded = nil
}

// StopRecording stores the recorded keys in their register.
func (h *InputHandler) StopRecording() {
	if h.recording == 0 {
		return
	}
	h.registers[h.recording] = h.recorded
	h.recording = 0
	h.recorded = nil
}

// IsRecording reports whether a recording is in progress.
func (h *InputHandler) IsRecording() bool {
	return h.recording != 0
}

// RecordingReg returns the register being recorded into.
func (h *InputHandler) RecordingReg() rune {
	return h.recording
}

// Macro returns the keys recorded into reg.
func (h *InputHandler) Macro(reg rune) []key.Event {
	return h.registers[reg]
}

// Replay feeds the keys recorded into reg through HandleKey. It does
// nothing while recording, and a replay never starts another one.
func (h *InputHandler) Replay(reg rune) {
	if h.recording != 0 || h.replaying {
		return
	}
	h.replaying = true
	defer func() { h.replaying = false }()
	for _, ev := range h.Macro(reg) {
		h.HandleKey(ev)
	}
}

// NormalMode dispatches character keys to bound actions and ignores the
// rest.
type NormalMode struct {
	bindings map[rune]func(ctx *Context)
}

// NewNormalMode creates a mode with no bindings.
func NewNormalMode() *NormalMode {
	return &NormalMode{bindings: make(map[rune]func(ctx *Context))}
}

// Bind makes r run fn.
func (m *NormalMode) Bind(r rune, fn func(ctx *Context)) {
	m.bindings[r] = fn
}

// Name implements Mode.
func (m *NormalMode) Name() string {
	return "normal"
}

// HandleKey implements Mode.
func (m *NormalMode) HandleKey(ev key.Event, ctx *Context) {
	if !ev.IsRune() {
		return
	}
	if fn, ok := m.bindings[ev.Rune]; ok && ev.Is(ev.Rune) {
		fn(ctx)
	}
}
