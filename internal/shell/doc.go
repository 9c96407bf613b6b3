// Package shell runs external commands for editing commands.
//
// Commands are handed to the shell named by the shell option:
//
//	sh -c '<command>'                  // no parameters
//	sh -c '<command>' sh p1 p2 ...     // parameters as $1, $2, ...
//
// # Dynamic variables
//
// A command may reference editor state through variables such as
// $kak_bufname or ${kak_cursor_line}. Only referenced variables are
// computed. Each name is resolved first from the per-call EnvVarMap, then
// from the Registry, whose rules are tried in registration order:
//
//	reg := shell.NewRegistry(logger)
//	reg.MustRegister(`cursor_line`, func(_ string, ctx *client.Context) (string, error) {
//	    return strconv.Itoa(ctx.MainSelection().Last().Line + 1), nil
//	})
//	sm := shell.NewManager(reg, shell.WithLogger(logger))
//	out := sm.Pipe(selection, "sort", ctx, nil, nil)
//
// A variable that cannot be resolved is not exported at all.
//
// # Failures
//
// Pipe never returns an error: a command that fails to start, fails while
// running or writes to stderr only shows up as short output and a debug
// log entry. Callers treat the result as best-effort text.
package shell
