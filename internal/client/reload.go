package client

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dshills/keybridge/internal/buffer"
	"github.com/dshills/keybridge/internal/input/key"
	"github.com/dshills/keybridge/internal/option"
)

// ReloadState is the outcome of checking a buffer against its file.
type ReloadState int

const (
	// StateClean means the file did not change since it was read, or the
	// buffer is not backed by a file.
	StateClean ReloadState = iota
	// StatePolicySkip means autoreload is off (or unreadable).
	StatePolicySkip
	// StatePolicyAuto means the buffer was reloaded without asking.
	StatePolicyAuto
	// StateAwaitingKey means the user was asked and the next key decides.
	StateAwaitingKey
)

// String returns a human-readable state name.
func (s ReloadState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StatePolicySkip:
		return "policy-skip"
	case StatePolicyAuto:
		return "policy-auto"
	case StateAwaitingKey:
		return "awaiting-key"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Keys answering the reload prompt.
const (
	KeyReload    = 'r'
	KeyReloadAlt = 'y'
	KeyKeep      = 'k'
	KeyKeepAlt   = 'n'
)

// CheckBufferFSTimestamp compares the active buffer with its file on disk
// and applies the autoreload policy when the file changed.
//
// With policy ask, the prompt is shown and the next key is diverted to
// resolveReload: r/y reload, k/n keep the buffer, anything else asks again.
func (c *Client) CheckBufferFSTimestamp() ReloadState {
	buf := c.ctx.Buffer()
	if buf.Closed() || !buf.Flags().Has(buffer.FlagFile) {
		return StateClean
	}

	policy, err := c.autoreloadPolicy()
	if err != nil {
		c.PrintStatus(DisplayLine{Text: "autoreload: " + err.Error(), Face: FaceError})
		return StatePolicySkip
	}
	if policy == option.No {
		return StatePolicySkip
	}

	filename := buf.Name()
	ts := buffer.FileTimestamp(filename)
	if ts.Equal(buf.FSTimestamp()) {
		return StateClean
	}

	if policy == option.Ask {
		c.PrintStatus(DisplayLine{
			Text: fmt.Sprintf("'%s' was modified externally, press %c or %c to reload, %c or %c to keep",
				buf.DisplayName(), KeyReload, KeyReloadAlt, KeyKeep, KeyKeepAlt),
			Face: FacePrompt,
		})
		c.input.OnNextKey(func(ev key.Event, _ *Context) {
			c.resolveReload(ev, filename, ts)
		})
		return StateAwaitingKey
	}

	c.reloadBuffer(filename, ts)
	return StatePolicyAuto
}

func (c *Client) autoreloadPolicy() (option.YesNoAsk, error) {
	opt, err := c.ctx.Options().Get("autoreload")
	if err != nil {
		return option.No, err
	}
	return opt.YesNoAsk()
}

// resolveReload handles the key answering the reload prompt for filename,
// whose file had timestamp ts when the prompt was shown.
func (c *Client) resolveReload(ev key.Event, filename string, ts time.Time) {
	buf := c.buffers.Get(filename)
	if buf == nil {
		// closed while the prompt was up
		c.PrintStatus(DisplayLine{})
		return
	}

	switch {
	case ev.Is(KeyReload), ev.Is(KeyReloadAlt):
		c.reloadBuffer(filename, ts)
	case ev.Is(KeyKeep), ev.Is(KeyKeepAlt):
		buf.SetFSTimestamp(ts)
		c.PrintStatus(DisplayLine{Text: fmt.Sprintf("'%s' kept", buf.DisplayName()), Face: FaceInformation})
	default:
		c.CheckBufferFSTimestamp()
	}
}

// reloadBuffer replaces the buffer called filename with the file's current
// content and switches the client to it, keeping the cursor and scroll
// position. The cursor is clamped when the file shrank. A file removed from
// disk leaves the buffer as it is; ts is recorded so the removal is not
// reported again.
func (c *Client) reloadBuffer(filename string, ts time.Time) {
	viewPos := c.ctx.Window().Position()
	cursor := c.ctx.MainSelection().Last()

	buf, err := c.buffers.Reload(filename)
	if errors.Is(err, fs.ErrNotExist) {
		if old := c.buffers.Get(filename); old != nil {
			old.SetFSTimestamp(ts)
			c.PrintStatus(DisplayLine{
				Text: fmt.Sprintf("'%s' no longer exists on disk, buffer kept", old.DisplayName()),
				Face: FaceError,
			})
		}
		return
	}
	if err != nil {
		c.PrintStatus(DisplayLine{Text: err.Error(), Face: FaceError})
		return
	}

	c.ChangeBuffer(buf)
	c.ctx.SetSelections([]Selection{NewCursor(buf.Clamp(cursor))})
	c.ctx.Window().SetPosition(viewPos)
	c.PrintStatus(DisplayLine{Text: fmt.Sprintf("'%s' reloaded", buf.DisplayName()), Face: FaceInformation})
}
