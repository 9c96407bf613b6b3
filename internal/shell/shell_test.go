package shell

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keybridge/internal/client"
	"github.com/dshills/keybridge/internal/option"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(msg, args...))
}

func (l *recordingLogger) joined() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

func newContext() *client.Context {
	global := option.NewGlobalManager()
	global.Set("shell", "sh")
	return client.NewHeadlessContext("test", global)
}

func TestReferences(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		want    []string
	}{
		{"none", "echo hello", nil},
		{"bare", "echo $kak_bufname", []string{"bufname"}},
		{"braced", "echo ${kak_cursor_line}", []string{"cursor_line"}},
		{"braced modifier", "echo ${kak_opt_x:-fallback}", []string{"opt_x"}},
		{"order and dedup", "echo $kak_b ${kak_a} $kak_b $kak_c", []string{"b", "a", "c"}},
		{"other vars ignored", "echo $HOME $kakx ${PATH}", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, References(tt.cmdline))
		})
	}
}

func TestArgs(t *testing.T) {
	assert.Equal(t, []string{"sh", "-c", "echo"}, Args("sh", "echo", nil))
	assert.Equal(t, []string{"bash", "-c", "echo $1", "bash", "a", "b"},
		Args("bash", "echo $1", []string{"a", "b"}))
}

func TestRegistry_OrderIsPriority(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(`cursor_.+`, func(string, *client.Context) (string, error) { return "first", nil }))
	require.NoError(t, reg.Register(`cursor_line`, func(string, *client.Context) (string, error) { return "second", nil }))
	assert.Equal(t, 2, reg.Len())

	v, ok := reg.Resolve("cursor_line", newContext(), nil)
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestRegistry_FullMatchOnly(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(`line`, func(string, *client.Context) (string, error) { return "1", nil })

	_, ok := reg.Resolve("cursor_line", newContext(), nil)
	assert.False(t, ok)
	_, ok = reg.Resolve("line", newContext(), nil)
	assert.True(t, ok)
}

func TestRegistry_ExplicitWins(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(`x`, func(string, *client.Context) (string, error) { return "A", nil })

	v, ok := reg.Resolve("x", newContext(), EnvVarMap{"x": "B"})
	require.True(t, ok)
	assert.Equal(t, "B", v)
}

func TestRegistry_RetrieverFailureIsAbsent(t *testing.T) {
	log := &recordingLogger{}
	reg := NewRegistry(log)
	reg.MustRegister(`x`, func(string, *client.Context) (string, error) { return "", errors.New("boom") })
	reg.MustRegister(`.*`, func(string, *client.Context) (string, error) { return "fallback", nil })

	_, ok := reg.Resolve("x", newContext(), nil)
	assert.False(t, ok, "the first matching rule decides, even when it fails")
	assert.Contains(t, log.joined(), "boom")
}

func TestRegistry_InvalidPattern(t *testing.T) {
	reg := NewRegistry(nil)
	err := reg.Register(`(`, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, reg.Len())
	assert.Panics(t, func() { reg.MustRegister(`(`, nil) })
}

func TestPipe_PassThrough(t *testing.T) {
	sm := NewManager(nil)
	assert.Equal(t, "hello", sm.Pipe("hello", "cat", newContext(), nil, nil))
}

func TestPipe_LargeInputAndOutput(t *testing.T) {
	sm := NewManager(nil)
	input := strings.Repeat("0123456789abcdef\n", 64*1024)

	out := sm.Pipe(input, "cat; cat >&2 </dev/null", newContext(), nil, nil)
	assert.Equal(t, len(input), len(out))
}

func TestEval(t *testing.T) {
	sm := NewManager(nil)
	assert.Equal(t, "hi\n", sm.Eval("echo hi", newContext(), nil, nil))
}

func TestPipe_ExportsResolvedVariables(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(`cursor_column`, func(string, *client.Context) (string, error) { return "5", nil })
	sm := NewManager(reg)

	out := sm.Eval(`printf %s "$kak_cursor_column"; env | grep -c '^kak_cursor_column=5$'`, newContext(), nil, nil)
	assert.Equal(t, "51\n", out)
}

func TestPipe_FailingRetrieverLeavesVariableUnset(t *testing.T) {
	t.Setenv("kak_cursor_column", "inherited")
	reg := NewRegistry(nil)
	reg.MustRegister(`cursor_column`, func(string, *client.Context) (string, error) { return "", errors.New("no cursor") })
	sm := NewManager(reg)

	out := sm.Eval(`echo "${kak_cursor_column-unset}"`, newContext(), nil, nil)
	assert.Equal(t, "unset\n", out)
}

func TestPipe_ExplicitOverride(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(`name`, func(string, *client.Context) (string, error) { return "A", nil })
	sm := NewManager(reg)

	out := sm.Eval(`printf %s "$kak_name"`, newContext(), nil, EnvVarMap{"name": "B"})
	assert.Equal(t, "B", out)
}

func TestPipe_OnlyReferencedVariables(t *testing.T) {
	calls := 0
	reg := NewRegistry(nil)
	reg.MustRegister(`.*`, func(string, *client.Context) (string, error) {
		calls++
		return "v", nil
	})
	sm := NewManager(reg)

	sm.Eval(`echo $kak_a ${kak_a} $kak_b`, newContext(), nil, nil)
	assert.Equal(t, 2, calls)
}

func TestPipe_PositionalParams(t *testing.T) {
	sm := NewManager(nil)
	out := sm.Eval(`printf '%s|' "$0" "$1" "$2" "$#"`, newContext(), []string{"one", "two words"}, nil)
	assert.Equal(t, "sh|one|two words|2|", out)
}

func TestPipe_StderrGoesToDebugLog(t *testing.T) {
	log := &recordingLogger{}
	sm := NewManager(nil, WithLogger(log))

	out := sm.Eval(`echo out; echo oops >&2; exit 3`, newContext(), nil, nil)
	assert.Equal(t, "out\n", out)
	assert.Contains(t, log.joined(), "shell stderr: <<<\noops\n>>>")
}

func TestPipe_MissingShellOption(t *testing.T) {
	log := &recordingLogger{}
	sm := NewManager(nil, WithLogger(log))
	ctx := client.NewHeadlessContext("test", option.NewGlobalManager())

	assert.Equal(t, "", sm.Eval("echo hi", ctx, nil, nil))
	assert.Contains(t, log.joined(), "option not found: shell")
}

func TestPipe_ShellCannotStart(t *testing.T) {
	log := &recordingLogger{}
	sm := NewManager(nil, WithLogger(log))
	ctx := newContext()
	ctx.Options().Set("shell", "/nonexistent/shell")

	assert.Equal(t, "", sm.Pipe("input", "echo hi", ctx, nil, nil))
	assert.Contains(t, log.joined(), "start")
}

func TestPipe_ChildIgnoringInput(t *testing.T) {
	sm := NewManager(nil)
	input := strings.Repeat("x", 1<<20)
	assert.Equal(t, "done\n", sm.Pipe(input, "echo done", newContext(), nil, nil))
}
