package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keybridge/internal/app"
	"github.com/dshills/keybridge/internal/buffer"
	"github.com/dshills/keybridge/internal/ui"
)

// headlessClient names the context shell commands run in from the CLI.
const headlessClient = "cli"

type rootFlags struct {
	configs  []string
	rc       string
	options  []string
	logLevel string
	logFile  string
	session  string
	noWatch  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "keybridge [files...]",
		Short: "Modal terminal editor with shell integration",
		Long: `keybridge edits files in the terminal and runs shell commands with the
editor state exported as kak_* environment variables.

Running 'keybridge' without a subcommand opens the given files, or a
scratch buffer, in the terminal.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), flags, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&flags.configs, "config", "c", nil, "TOML or YAML option files, applied in order")
	pf.StringVar(&flags.rc, "rc", "", "Lua file run at startup")
	pf.StringArrayVarP(&flags.options, "option", "o", nil, "Set an option (name=value), may be repeated")
	pf.StringVar(&flags.logLevel, "log-level", "debug", "Minimum level logged (debug, info, warn, error)")
	pf.StringVar(&flags.logFile, "log-file", "", "Also append log lines to this file")
	pf.StringVar(&flags.session, "session", "", "Session name (default: generated)")
	pf.BoolVar(&flags.noWatch, "no-watch", false, "Do not watch files for external changes")

	root.AddCommand(newEvalCmd(flags))
	root.AddCommand(newPipeCmd(flags))
	root.AddCommand(newOptionsCmd(flags))
	return root
}

// editorConfig turns the flags into an editor configuration. The returned
// func closes the log file, if one was opened.
func (f *rootFlags) editorConfig() (app.Config, func(), error) {
	overrides, err := parseOptionFlags(f.options)
	if err != nil {
		return app.Config{}, nil, err
	}

	cfg := app.Config{
		OptionFiles:  f.configs,
		RCFile:       f.rc,
		Options:      overrides,
		Session:      f.session,
		LogLevel:     app.ParseLogLevel(f.logLevel),
		DisableWatch: f.noWatch,
	}

	closeLog := func() {}
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return app.Config{}, nil, app.NewOperationError("open", f.logFile, err)
		}
		cfg.LogOutput = file
		closeLog = func() { _ = file.Close() }
	}
	return cfg, closeLog, nil
}

// newEditor builds an editor from the flags. The returned cleanup closes
// the editor and the log file.
func (f *rootFlags) newEditor() (*app.Editor, func(), error) {
	cfg, closeLog, err := f.editorConfig()
	if err != nil {
		return nil, nil, err
	}
	e, err := app.New(cfg)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return e, func() {
		_ = e.Close()
		closeLog()
	}, nil
}

func parseOptionFlags(values []string) (map[string]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(values))
	for _, kv := range values {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid option %q: expected name=value", kv)
		}
		out[name] = value
	}
	return out, nil
}

func runInteractive(ctx context.Context, flags *rootFlags, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	e, cleanup, err := flags.newEditor()
	if err != nil {
		return err
	}
	defer cleanup()

	var first *buffer.Buffer
	for _, path := range files {
		buf, err := e.Open(path)
		if err != nil {
			return err
		}
		if first == nil {
			first = buf
		}
	}
	if first == nil {
		if first, err = e.Buffers().Scratch(app.ScratchName, ""); err != nil {
			return err
		}
	}

	term, err := ui.NewTerminal()
	if err != nil {
		return app.NewOperationError("create", "terminal", err)
	}
	if err := term.Init(); err != nil {
		return app.NewOperationError("init", "terminal", err)
	}
	defer term.Fini()

	e.Attach(term, first, "client0")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return e.Run(ctx, term.Ready())
}

func newEvalCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <command> [params...]",
		Short: "Run a shell command with editor variables and print its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cleanup, err := flags.newEditor()
			if err != nil {
				return err
			}
			defer cleanup()

			out := e.Eval(e.NewContext(headlessClient), args[0], args[1:])
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newPipeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pipe <command> [params...]",
		Short: "Filter standard input through a shell command with editor variables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			e, cleanup, err := flags.newEditor()
			if err != nil {
				return err
			}
			defer cleanup()

			out := e.Pipe(e.NewContext(headlessClient), string(input), args[0], args[1:])
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newOptionsCmd(flags *rootFlags) *cobra.Command {
	options := &cobra.Command{
		Use:   "options",
		Short: "Inspect the effective options",
	}

	options.AddCommand(&cobra.Command{
		Use:   "complete [prefix]",
		Short: "List option names starting with prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cleanup, err := flags.newEditor()
			if err != nil {
				return err
			}
			defer cleanup()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			for _, name := range e.Options().Complete(prefix) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	options.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print the value of an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cleanup, err := flags.newEditor()
			if err != nil {
				return err
			}
			defer cleanup()

			opt, err := e.Options().Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), opt.String())
			return nil
		},
	})

	return options
}
