package app

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/keybridge/internal/buffer"
	"github.com/dshills/keybridge/internal/client"
)

// FilterOption names the option holding the command run by the | key.
const FilterOption = "filtercmd"

// MacroRegister is the register Q records into and @ replays.
const MacroRegister = '@'

// ScratchName names the buffer shown when no file is open.
const ScratchName = "*scratch*"

// normalMode builds the key bindings shared by every client.
func (e *Editor) normalMode() *client.NormalMode {
	m := client.NewNormalMode()
	m.Bind('q', func(*client.Context) { e.Quit() })
	m.Bind('Q', toggleRecording)
	m.Bind('@', func(ctx *client.Context) { ctx.Client().Input().Replay(MacroRegister) })
	m.Bind('h', moveCursor(0, -1))
	m.Bind('l', moveCursor(0, 1))
	m.Bind('j', moveCursor(1, 0))
	m.Bind('k', moveCursor(-1, 0))
	m.Bind('|', e.filterBuffer)
	m.Bind('w', e.saveBuffer)
	m.Bind('D', e.closeBuffer)
	return m
}

func toggleRecording(ctx *client.Context) {
	input := ctx.Client().Input()
	if input.IsRecording() {
		input.StopRecording()
		return
	}
	input.StartRecording(MacroRegister)
}

func moveCursor(dLine, dColumn int) func(*client.Context) {
	return func(ctx *client.Context) {
		buf := ctx.Buffer()
		pos := ctx.MainSelection().Last()
		pos.Line += dLine
		pos.Column += dColumn
		if dColumn > 0 {
			// step over the whole character
			line := buf.Line(pos.Line)
			for pos.Column < len(line) && !utf8.RuneStart(line[pos.Column]) {
				pos.Column++
			}
		}
		ctx.SetSelections([]client.Selection{client.NewCursor(buf.Clamp(pos))})
	}
}

// filterBuffer pipes the whole buffer through the filter command and
// replaces it with the output. Empty output leaves the buffer alone.
func (e *Editor) filterBuffer(ctx *client.Context) {
	opt, err := ctx.Options().Get(FilterOption)
	if err != nil {
		ctx.PrintStatus(client.DisplayLine{Text: err.Error(), Face: client.FaceError})
		return
	}
	cmdline := opt.String()
	if cmdline == "" {
		ctx.PrintStatus(client.DisplayLine{Text: FilterOption + " is empty", Face: client.FaceError})
		return
	}

	buf := ctx.Buffer()
	out := e.shell.Pipe(buf.Text(), cmdline, ctx, nil, nil)
	if out == "" {
		ctx.PrintStatus(client.DisplayLine{Text: "filter produced no output", Face: client.FaceError})
		return
	}
	cursor := ctx.MainSelection().Last()
	buf.Replace(out)
	ctx.SetSelections([]client.Selection{client.NewCursor(buf.Clamp(cursor))})
	e.logger.Debug("filtered %s through %q", buf.Name(), cmdline)
}

func (e *Editor) saveBuffer(ctx *client.Context) {
	buf := ctx.Buffer()
	if err := e.buffers.Save(buf.Name()); err != nil {
		ctx.PrintStatus(client.DisplayLine{Text: err.Error(), Face: client.FaceError})
		return
	}
	ctx.PrintStatus(client.DisplayLine{Text: fmt.Sprintf("'%s' written", buf.DisplayName()), Face: client.FaceInformation})
}

// closeBuffer deletes the current buffer and moves every client showing it
// to another buffer. The debug buffer stays open.
func (e *Editor) closeBuffer(ctx *client.Context) {
	buf := ctx.Buffer()
	if buf.Flags().Has(buffer.FlagDebug) {
		ctx.PrintStatus(client.DisplayLine{Text: "cannot close " + buffer.DebugName, Face: client.FaceError})
		return
	}

	name := buf.Name()
	if err := e.buffers.Delete(name); err != nil {
		ctx.PrintStatus(client.DisplayLine{Text: err.Error(), Face: client.FaceError})
		return
	}
	if e.watcher != nil && e.watcher.IsWatching(name) {
		if err := e.watcher.Remove(name); err != nil {
			e.logger.Warn("unwatch %s: %v", name, err)
		}
	}

	next := e.fallbackBuffer()
	for _, c := range e.clients {
		if c.Context().Buffer() == buf {
			c.ChangeBuffer(next)
		}
	}
	ctx.PrintStatus(client.DisplayLine{Text: fmt.Sprintf("'%s' closed", buf.DisplayName()), Face: client.FaceInformation})
	e.logger.Debug("closed %s", name)
}

// fallbackBuffer returns the most recently created buffer other than the
// debug buffer, creating an empty scratch buffer when none is left.
func (e *Editor) fallbackBuffer() *buffer.Buffer {
	bufs := e.buffers.Buffers()
	for i := len(bufs) - 1; i >= 0; i-- {
		if !bufs[i].Flags().Has(buffer.FlagDebug) {
			return bufs[i]
		}
	}
	buf, err := e.buffers.Scratch(ScratchName, "")
	if err != nil {
		return e.buffers.Debug()
	}
	return buf
}
