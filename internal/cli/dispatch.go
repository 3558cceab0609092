// Package cli parses the command line and runs commands against a backend.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory

	// Stdin is handed to commands that prompt. Defaults to os.Stdin.
	Stdin io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		Stdin:    os.Stdin,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // errors are reported below

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// A leading "-" after parsing is a flag the parser did not consume
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") && positionalArgs[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	level := cfg.Settings.LogLevel
	if debug {
		level = zerolog.LevelDebugValue
	}
	logger, err := logging.New(level, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	log.Logger = logger
	ctx = logger.WithContext(ctx)
	logger.Debug().Str("cmd", cmd.Name()).Str("config", cfg.Dir).Msg("dispatch")

	env := &commands.Env{Config: cfg, In: d.Stdin}

	if d.factory != nil {
		env.Service, err = d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}
	if env.Service != nil {
		env.Session = session.New(env.Service, cfg)
		if err := env.Session.LoadErr(); err != nil {
			logger.Warn().Err(err).Msg("ignoring unreadable credentials")
		}
		cancel := env.Session.Subscribe(sessionLogger(ctx))
		defer cancel()
	}

	if cmd.NeedsAuth() {
		if code := d.authenticate(ctx, env, errOut); code != exitcode.Success {
			return code
		}
	}

	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// authenticate requires a stored token and confirms it with the server.
// Any failure resets the session.
func (d *Dispatcher) authenticate(ctx context.Context, env *commands.Env, errOut io.Writer) int {
	if env.Session == nil || !env.Session.IsAuthenticated() {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return exitcode.AuthError
	}
	if err := env.Session.Reconcile(ctx); err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			fmt.Fprintf(errOut, "error: %s\n", session.ErrSessionExpired)
		} else {
			fmt.Fprintf(errOut, "error: auth error: %s\n", err)
		}
		return exitcode.AuthError
	}
	return exitcode.Success
}

// sessionLogger logs session transitions at debug level.
func sessionLogger(ctx context.Context) func(session.State) {
	l := logging.From(ctx, "session")
	return func(st session.State) {
		ev := l.Debug().Bool("authenticated", st.IsAuthenticated())
		if st.User != nil {
			ev = ev.Str("user", st.User.Email)
		}
		ev.Msg("session changed")
	}
}

// flagError rewrites flag package errors in the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()

	if name, ok := strings.CutPrefix(errStr, "flag provided but not defined: "); ok {
		return "unknown flag: " + name
	}
	return errStr
}
