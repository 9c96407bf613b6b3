package key

import "time"

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{
		Key:       k,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// Is reports whether the event is the plain character r, with no
// modifier other than Shift.
func (e Event) Is(r rune) bool {
	return e.IsRune() && e.Rune == r && e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0
}

// String returns the key name, such as "a", "C-s" or "S-Tab". Shift is
// implied by the character for rune events and not written.
func (e Event) String() string {
	mods := e.Modifiers
	if e.IsRune() {
		mods &^= ModShift
	}
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		return mods.String() + "Space"
	case e.Key == KeyRune:
		return mods.String() + string(e.Rune)
	default:
		return mods.String() + e.Key.String()
	}
}
