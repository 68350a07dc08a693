/*
locoforge extracts, justifies, and compiles localization keys out of a
directory of HTML-like templates and JSON resources into a canonical
translation database and per-locale compiled outputs.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/locoforge/locoforge/config"
	"codeberg.org/locoforge/locoforge/core/audit"
	"codeberg.org/locoforge/locoforge/internal/diag"
	"codeberg.org/locoforge/locoforge/internal/project"
	"codeberg.org/locoforge/locoforge/internal/watch"
)

func main() {
	audit.SetDefaultLogger()

	dirty, err := run(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("locoforge failed")
	}

	if dirty {
		os.Exit(1)
	}
}

// run resolves the configuration, runs one-shot or watch mode as
// determined by the CLI flags, and reports whether any diagnostic resolved
// to "error" or, in watch mode, an update batch failed to apply — the
// conditions (besides a returned error) that raise the process exit code.
func run(args []string) (bool, error) {
	flags, err := config.ParseCommandLineArgs(args)
	if err != nil {
		return false, fmt.Errorf("failed to parse command-line flags: %w", err)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return false, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Dev = flags.Dev
	cfg.Watch = flags.ResolveWatch()
	cfg.Verbose = flags.Verbose

	cfg.SetupAudit()

	if cfg.Verbose {
		cfg.Print()
	}

	exitFlag := &diag.ExitFlag{}

	bus := diag.NewBus()
	bus.Subscribe(cfg.DiagnosticsPolicy().Subscriber(log.Logger, exitFlag))

	proj := project.New(cfg, bus, cfg.Dev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch {
		if err := runWatch(ctx, proj, cfg, exitFlag); err != nil {
			return exitFlag.Dirty(), err
		}

		return exitFlag.Dirty(), nil
	}

	hooks := proj.NewOSHooks()

	if err := proj.RunOnce(ctx, hooks, len(cfg.ExternalLocales) > 0, time.Now()); err != nil {
		return exitFlag.Dirty(), err
	}

	return exitFlag.Dirty(), nil
}

// runWatch loads the initial state exactly like a one-shot run, then hands
// control to internal/watch, which serializes every subsequent
// project.Apply call through its single-writer debounce loop until an
// interrupt signal arrives.
func runWatch(ctx context.Context, proj *project.Project, cfg *config.Config, exitFlag *diag.ExitFlag) error {
	hooks := proj.NewOSHooks()

	if err := proj.RunOnce(ctx, hooks, len(cfg.ExternalLocales) > 0, time.Now()); err != nil {
		return err
	}

	watchPaths := []string{cfg.Src}

	for _, ext := range cfg.ExternalLocales {
		watchPaths = append(watchPaths, ext.Filename)
	}

	w, err := watch.New(watchPaths, func(updates []project.Update) error {
		return proj.Apply(hooks, updates, time.Now())
	}, exitFlag)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("src", cfg.Src).Msg("watching for changes")

	// Run blocks until sigCtx is cancelled (SIGINT/SIGTERM) or the
	// underlying event channel closes; either way it returns nil.
	return w.Run(sigCtx)
}
