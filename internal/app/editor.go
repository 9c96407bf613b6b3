package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dshills/keybridge/internal/buffer"
	"github.com/dshills/keybridge/internal/client"
	"github.com/dshills/keybridge/internal/option"
	"github.com/dshills/keybridge/internal/script"
	"github.com/dshills/keybridge/internal/shell"
	"github.com/dshills/keybridge/internal/watch"
)

// Config configures an Editor.
type Config struct {
	// OptionFiles are TOML or YAML files applied to the global scope in order.
	OptionFiles []string
	// RCFile is a Lua file run after the option files. Empty skips it.
	RCFile string
	// Options are applied last and win over files and the rc script.
	Options map[string]any
	// Session names the editing session. Empty generates one.
	Session string
	// LogLevel is the minimum level written to the debug buffer.
	LogLevel LogLevel
	// LogOutput receives log lines in addition to the debug buffer.
	LogOutput io.Writer
	// DisableWatch turns off file change notifications.
	DisableWatch bool
}

// Editor owns the editing session: the option tree, the buffers, the
// shell manager and the attached clients. All of it is driven from the
// goroutine calling Run.
type Editor struct {
	logger   *Logger
	global   *option.Manager
	buffers  *buffer.Manager
	registry *shell.Registry
	shell    *shell.Manager
	script   *script.State
	watcher  *watch.Watcher
	session  string

	clients []*client.Client
	quit    bool
	running bool
}

// New creates an editor. Configuration errors are collected and returned
// together; the editor is not usable when New fails.
func New(cfg Config) (*Editor, error) {
	session := cfg.Session
	if session == "" {
		session = uuid.NewString()
	}

	global := NewGlobalOptions()
	buffers := buffer.NewManager(global)

	logger := NewLogger(LoggerConfig{
		Level:  cfg.LogLevel,
		Output: buffers.Debug(),
	})
	if cfg.LogOutput != nil {
		logger.AddOutput(cfg.LogOutput)
	}

	registry := shell.NewRegistry(logger.WithComponent("env"))
	RegisterBuiltins(registry, session)

	e := &Editor{
		logger:   logger,
		global:   global,
		buffers:  buffers,
		registry: registry,
		shell:    shell.NewManager(registry, shell.WithLogger(logger.WithComponent("shell"))),
		script:   script.NewState(script.WithLogger(logger.WithComponent("script"))),
		session:  session,
	}
	e.script.BindOptions(global)
	e.script.BindEnv(registry)

	errs := NewErrorList()
	for _, path := range cfg.OptionFiles {
		values, err := option.LoadFile(path)
		if err != nil {
			errs.Add(NewOperationError("load", path, err))
			continue
		}
		global.Apply(values)
	}
	if cfg.RCFile != "" {
		if err := e.script.DoFile(cfg.RCFile); err != nil {
			errs.Add(NewOperationError("source", cfg.RCFile, err))
		}
	}
	global.Apply(cfg.Options)

	if !cfg.DisableWatch {
		w, err := watch.New()
		if err != nil {
			logger.Warn("file watching disabled: %v", err)
		} else {
			e.watcher = w
		}
	}

	if errs.HasErrors() {
		_ = e.Close()
		return nil, fmt.Errorf("%w: %w", ErrInitialization, errs)
	}

	logger.Info("session %s started", session)
	return e, nil
}

// Logger returns the editor logger.
func (e *Editor) Logger() *Logger { return e.logger }

// Options returns the global option scope.
func (e *Editor) Options() *option.Manager { return e.global }

// Buffers returns the buffer manager.
func (e *Editor) Buffers() *buffer.Manager { return e.buffers }

// Registry returns the environment variable registry.
func (e *Editor) Registry() *shell.Registry { return e.registry }

// Shell returns the shell manager.
func (e *Editor) Shell() *shell.Manager { return e.shell }

// Session returns the session identifier.
func (e *Editor) Session() string { return e.session }

// Clients returns the attached clients.
func (e *Editor) Clients() []*client.Client { return e.clients }

// Open returns the buffer for path and starts watching its file.
func (e *Editor) Open(path string) (*buffer.Buffer, error) {
	buf, err := e.buffers.Open(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	if e.watcher != nil {
		if err := e.watcher.Add(buf.Name()); err != nil {
			e.logger.Warn("not watching %s: %v", buf.Name(), err)
		}
	}
	return buf, nil
}

// NewContext returns a headless context on the global scope for commands
// run outside any client.
func (e *Editor) NewContext(name string) *client.Context {
	return client.NewHeadlessContext(name, e.global)
}

// Eval runs cmdline in ctx and returns its output.
func (e *Editor) Eval(ctx *client.Context, cmdline string, params []string) string {
	return e.shell.Eval(cmdline, ctx, params, nil)
}

// Pipe runs cmdline in ctx with input on its standard input.
func (e *Editor) Pipe(ctx *client.Context, input, cmdline string, params []string) string {
	return e.shell.Pipe(input, cmdline, ctx, params, nil)
}

// Attach creates a client named name showing buf on ui.
func (e *Editor) Attach(ui client.UserInterface, buf *buffer.Buffer, name string) *client.Client {
	win := client.NewWindow(buf)
	win.SetDimensions(ui.Dimensions())
	c := client.New(ui, win, e.buffers, name, e.session, e.normalMode())
	e.clients = append(e.clients, c)
	e.logger.Debug("client %s attached to %s", name, buf.Name())
	return c
}

// Quit makes Run return after the current iteration.
func (e *Editor) Quit() {
	e.quit = true
}

// Run drives the clients until Quit is called or ctx is done. ready fires
// when a user interface has input; file changes wake the loop too. Each
// iteration checks the clients' files and redraws what changed. Key
// handlers run inside Run, so a nested call fails with ErrAlreadyRunning.
func (e *Editor) Run(ctx context.Context, ready <-chan struct{}) error {
	if e.running {
		return ErrAlreadyRunning
	}
	e.running = true
	defer func() { e.running = false }()
	e.quit = false

	var changes <-chan string
	var watchErrs <-chan error
	if e.watcher != nil {
		changes = e.watcher.Changes()
		watchErrs = e.watcher.Errors()
	}

	e.refresh()
	for !e.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ready:
			for _, c := range e.clients {
				c.HandleAvailableInput()
			}
		case path, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			e.logger.Debug("file changed: %s", path)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			e.logger.Error("watch: %v", err)
		}
		e.refresh()
	}
	return nil
}

// refresh checks every client's buffer against its file, unless a prompt
// is already waiting for an answer, then redraws.
func (e *Editor) refresh() {
	for _, c := range e.clients {
		if !c.Input().HasPendingKey() {
			c.CheckBufferFSTimestamp()
		}
		c.RedrawIfNeeded()
	}
}

// Close releases the scripting state and the file watcher.
func (e *Editor) Close() error {
	errs := NewErrorList()
	errs.Add(e.script.Close())
	if e.watcher != nil {
		errs.Add(e.watcher.Close())
	}
	return errs.AsError()
}
