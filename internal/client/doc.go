// Package client implements a user interface's view of the editing session.
//
// A Client owns a Window on a buffer, a Context bundling the window with
// the selections and option scope, and an InputHandler routing keys.
//
// # One-shot key continuations
//
// Any workflow can suspend normal key dispatch to ask a single-keystroke
// question:
//
//	c.Input().OnNextKey(func(ev key.Event, ctx *client.Context) {
//	    if ev.Is('y') {
//	        // ...
//	    }
//	})
//
// The next key goes to the continuation and nowhere else. There is at most
// one continuation per client; registering another replaces it.
//
// # Autoreload
//
// CheckBufferFSTimestamp is the reference user of continuations. When the
// active buffer's file changed on disk it consults the autoreload option:
// no leaves the buffer alone, yes reloads it, ask prompts and waits for
// r/y (reload) or k/n (keep). Any other key re-asks. If the buffer is closed
// before the answer arrives the prompt is cleared and nothing happens.
//
// The client is driven by a single input loop and is not safe for
// concurrent use.
package client
