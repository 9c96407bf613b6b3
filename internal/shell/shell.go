package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/keybridge/internal/client"
)

// EnvPrefix is prepended to every variable exported to a child process.
const EnvPrefix = "kak_"

// envVarRef matches ${kak_name...} and $kak_name. In the braced form the
// name stops at the first non-word character, so shell modifiers such as
// ${kak_opt_x:-default} keep working.
var envVarRef = regexp.MustCompile(`\$\{kak_(\w+)[^}]*\}|\$kak_(\w+)`)

// Logger receives diagnostics. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// References returns the distinct variable names referenced by cmdline,
// without the kak_ prefix, in order of first appearance.
func References(cmdline string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range envVarRef.FindAllStringSubmatch(cmdline, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Manager runs shell commands on behalf of editing commands.
//
// Calls are synchronous: Pipe returns once the child has exited and both
// of its output streams are drained. There is no timeout; a command that
// never exits blocks the caller.
type Manager struct {
	registry *Registry
	logger   Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets where stderr output and failures are reported.
func WithLogger(l Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager resolving variables through registry.
func NewManager(registry *Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: registry,
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = NewRegistry(m.logger)
	}
	return m
}

// Registry returns the variable registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Eval runs cmdline with empty input and returns its standard output.
func (m *Manager) Eval(cmdline string, ctx *client.Context, params []string, vars EnvVarMap) string {
	return m.Pipe("", cmdline, ctx, params, vars)
}

// Pipe runs cmdline with the shell named by the shell option, feeds it
// input and returns its standard output.
//
// Variables referenced as $kak_name or ${kak_name} are resolved through
// vars and the registry and exported as kak_name; unresolved ones are left
// unset. Non-empty params are passed as positional parameters $1, $2, ...
// Standard error goes to the debug log. The exit status is ignored, and a
// command that cannot be started yields an empty result.
func (m *Manager) Pipe(input, cmdline string, ctx *client.Context, params []string, vars EnvVarMap) string {
	env := m.environment(cmdline, ctx, vars)

	sh, err := shellBinary(ctx)
	if err != nil {
		m.logger.Debug("shell: %v", err)
		return ""
	}

	args := Args(sh, cmdline, params)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = env

	out, err := m.run(cmd, input)
	if err != nil {
		m.logger.Debug("shell: %v", err)
	}
	return out
}

// Args builds the argument vector: shell -c cmdline, followed by the shell
// again as $0 and the params when there are any.
func Args(sh, cmdline string, params []string) []string {
	args := []string{sh, "-c", cmdline}
	if len(params) > 0 {
		args = append(args, sh)
		args = append(args, params...)
	}
	return args
}

func shellBinary(ctx *client.Context) (string, error) {
	opt, err := ctx.Options().Get("shell")
	if err != nil {
		return "", err
	}
	sh, err := opt.Str()
	if err != nil {
		return "", fmt.Errorf("shell option: %w", err)
	}
	if sh == "" {
		return "", errors.New("shell option is empty")
	}
	return sh, nil
}

// environment returns the child environment: the editor's own, minus
// inherited kak_ variables the command references, plus every referenced
// variable that resolves.
func (m *Manager) environment(cmdline string, ctx *client.Context, vars EnvVarMap) []string {
	names := References(cmdline)
	if len(names) == 0 {
		return os.Environ()
	}

	referenced := make(map[string]struct{}, len(names))
	for _, name := range names {
		referenced[EnvPrefix+name] = struct{}{}
	}

	env := make([]string, 0, len(os.Environ())+len(names))
	for _, kv := range os.Environ() {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := referenced[k]; ok {
			continue
		}
		env = append(env, kv)
	}

	for _, name := range names {
		if v, ok := m.registry.Resolve(name, ctx, vars); ok {
			env = append(env, EnvPrefix+name+"="+v)
		}
	}
	return env
}

// run starts cmd with piped standard streams, writes input and drains both
// outputs concurrently, then reaps the child.
func (m *Manager) run(cmd *exec.Cmd, input string) (string, error) {
	var pipes []io.Closer
	closeAll := func() {
		for _, p := range pipes {
			_ = p.Close()
		}
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("create stdin pipe: %w", err)
	}
	pipes = append(pipes, stdin)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		closeAll()
		return "", fmt.Errorf("create stdout pipe: %w", err)
	}
	pipes = append(pipes, stdout)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		closeAll()
		return "", fmt.Errorf("create stderr pipe: %w", err)
	}
	pipes = append(pipes, stderr)

	if err := cmd.Start(); err != nil {
		closeAll()
		return "", fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	var out, errOut bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		defer stdin.Close()
		if _, err := io.WriteString(stdin, input); err != nil && !errors.Is(err, syscall.EPIPE) {
			return fmt.Errorf("write stdin: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		_, err := out.ReadFrom(stdout)
		return err
	})
	g.Go(func() error {
		_, err := errOut.ReadFrom(stderr)
		return err
	})
	ioErr := g.Wait()

	// exit status is not part of the result
	_ = cmd.Wait()

	if errOut.Len() > 0 {
		m.logger.Debug("shell stderr: <<<\n%s>>>", errOut.String())
	}
	return out.String(), ioErr
}
