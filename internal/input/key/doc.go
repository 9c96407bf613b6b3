// Package key defines the raw key events delivered by the user interface.
//
// An Event is a single key press: a Key identifying special keys, the Rune
// for character keys, and the active modifiers. Events are produced by the
// terminal backend and consumed by the client's input handler, either by a
// pending one-shot continuation or by the current mode.
package key
