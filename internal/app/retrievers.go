package app

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/keybridge/internal/buffer"
	"github.com/dshills/keybridge/internal/client"
	"github.com/dshills/keybridge/internal/shell"
)

var errNoWindow = errors.New("context has no window")

// RegisterBuiltins registers the editor's own variables on reg. They are
// registered before any user rule and therefore take priority.
func RegisterBuiltins(reg *shell.Registry, session string) {
	withBuffer := func(fn func(buf *buffer.Buffer, ctx *client.Context) string) shell.Retriever {
		return func(_ string, ctx *client.Context) (string, error) {
			buf := ctx.Buffer()
			if buf == nil {
				return "", errNoWindow
			}
			return fn(buf, ctx), nil
		}
	}

	reg.MustRegister(`bufname`, withBuffer(func(buf *buffer.Buffer, _ *client.Context) string {
		return buf.DisplayName()
	}))
	reg.MustRegister(`buffile`, withBuffer(func(buf *buffer.Buffer, _ *client.Context) string {
		return buf.Name()
	}))
	reg.MustRegister(`timestamp`, withBuffer(func(buf *buffer.Buffer, _ *client.Context) string {
		return strconv.Itoa(buf.Timestamp())
	}))
	reg.MustRegister(`selection`, withBuffer(func(buf *buffer.Buffer, ctx *client.Context) string {
		return selectionText(buf, ctx.MainSelection())
	}))
	reg.MustRegister(`cursor_line`, withBuffer(func(_ *buffer.Buffer, ctx *client.Context) string {
		return strconv.Itoa(ctx.MainSelection().Last().Line + 1)
	}))
	reg.MustRegister(`cursor_column`, withBuffer(func(_ *buffer.Buffer, ctx *client.Context) string {
		return strconv.Itoa(ctx.MainSelection().Last().Column + 1)
	}))
	reg.MustRegister(`cursor_char_column`, withBuffer(func(buf *buffer.Buffer, ctx *client.Context) string {
		pos := ctx.MainSelection().Last()
		return strconv.Itoa(client.CharColumn(buf.Line(pos.Line), pos.Column) + 1)
	}))
	reg.MustRegister(`window_width`, func(_ string, ctx *client.Context) (string, error) {
		if !ctx.HasWindow() {
			return "", errNoWindow
		}
		return strconv.Itoa(ctx.Window().Dimensions().Column), nil
	})
	reg.MustRegister(`window_height`, func(_ string, ctx *client.Context) (string, error) {
		if !ctx.HasWindow() {
			return "", errNoWindow
		}
		return strconv.Itoa(ctx.Window().Dimensions().Line), nil
	})
	reg.MustRegister(`session`, func(string, *client.Context) (string, error) {
		return session, nil
	})
	reg.MustRegister(`client`, func(_ string, ctx *client.Context) (string, error) {
		return ctx.Name(), nil
	})
	reg.MustRegister(`opt_.+`, func(name string, ctx *client.Context) (string, error) {
		opt, err := ctx.Options().Get(strings.TrimPrefix(name, "opt_"))
		if err != nil {
			return "", err
		}
		return opt.String(), nil
	})
}

// selectionText returns the text covered by sel. Both ends are inclusive;
// an end past the last character of its line includes the line break.
func selectionText(buf *buffer.Buffer, sel client.Selection) string {
	begin, end := buf.Clamp(sel.Anchor), buf.Clamp(sel.Cursor)
	if end.Line < begin.Line || (end.Line == begin.Line && end.Column < begin.Column) {
		begin, end = end, begin
	}

	var sb strings.Builder
	for l := begin.Line; l <= end.Line; l++ {
		line := buf.Line(l) + "\n"
		from := 0
		if l == begin.Line {
			from = begin.Column
		}
		to := len(line)
		if l == end.Line {
			to = end.Column + charLen(line, end.Column)
		}
		sb.WriteString(line[from:to])
	}
	return sb.String()
}

func charLen(s string, i int) int {
	if i >= len(s) {
		return 0
	}
	_, n := utf8.DecodeRuneInString(s[i:])
	return n
}
