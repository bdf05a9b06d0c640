// Package cli is the one-shot command line front end.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/search"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/tasks"
	"github.com/idilsaglam/tada/internal/ui"
)

var version = "dev"

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const closeTimeout = 5 * time.Second

// usageError marks bad input: unknown refs, empty fields, wrong arguments.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// app carries what one invocation needs. Commands get it through their
// closures instead of package globals.
type app struct {
	in          io.Reader
	out, errOut io.Writer

	dataDir string
	color   string
	over    config.Overrides

	cfg    *config.Config
	logger *log.Logger
	st     store.Store
	repo   *tasks.Repository
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes args against fresh command state.
func Run(args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{in: in, out: out, errOut: errOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if cerr := a.close(); cerr != nil {
		ui.Warn(errOut, "changes were not saved: "+cerr.Error())
		if err == nil {
			return ExitError
		}
	}
	if err == nil {
		return ExitOK
	}
	ui.Fail(errOut, err.Error())
	var uerr *usageError
	if errors.As(err, &uerr) || errors.Is(err, tasks.ErrValidation) || errors.Is(err, tasks.ErrNotFound) {
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "todo",
		Short:         "A tiny todo list with fuzzy search",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default $TADA_DATA_DIR or ~/.tada)")
	pf.StringVar(&a.over.Backend, "backend", "", "storage backend: json, bolt or memory")
	pf.StringVar(&a.over.Engine, "engine", "", "search engine: fuzzy or bleve")
	pf.StringVar(&a.over.Theme, "theme", "", "theme: classic, neon or mono")
	pf.StringVar(&a.over.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.color, "color", ui.ColorAuto, "color output: auto, always or never")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newDoneCmd(a, true),
		newDoneCmd(a, false),
		newDupCmd(a),
		newRemoveCmd(a),
		newSearchCmd(a),
		newShowCmd(a),
		newExportCmd(a),
		newTUICmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup resolves configuration and, except for config commands, opens
// the store and loads the task list.
func (a *app) setup(cmd *cobra.Command) error {
	if a.dataDir == "" {
		dir, err := config.DefaultDataDir()
		if err != nil {
			return err
		}
		a.dataDir = dir
	}
	cfg, err := config.Load(a.dataDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Apply(a.over); err != nil {
		return &usageError{err: err}
	}
	a.cfg = cfg

	if err := ui.SetColorMode(a.color); err != nil {
		return &usageError{err: err}
	}
	ui.SetTheme(cfg.Theme)
	a.logger = logging.New(a.errOut, cfg.LogOptions())

	if isConfigCmd(cmd) {
		return nil
	}

	st, err := openStore(cfg.Backend, a.dataDir)
	if err != nil {
		return err
	}
	a.st = st

	idx, err := search.New(cfg.Search.Engine)
	if err != nil {
		return err
	}
	a.repo = tasks.New(tasks.Config{
		Store:  st,
		Index:  idx,
		Logger: a.logger,
	})
	if err := a.repo.Load(cmd.Context()); err != nil {
		// The list is empty but usable; writes may still succeed.
		ui.Warn(a.errOut, err.Error())
	}
	a.logger.Debug("ready", "data-dir", a.dataDir, "backend", cfg.Backend, "engine", cfg.Search.Engine)
	return nil
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// close flushes pending writes and releases the store. It returns the
// newest persistence failure.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	var err error
	if a.repo != nil {
		err = a.repo.Close(ctx)
	}
	if a.st != nil {
		if cerr := a.st.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
