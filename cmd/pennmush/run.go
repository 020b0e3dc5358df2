// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/config"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/game"
	"github.com/holomush/pennmush/internal/logging"
	"github.com/holomush/pennmush/internal/observability"
	"github.com/holomush/pennmush/internal/store"
	"github.com/holomush/pennmush/internal/world"
	"github.com/holomush/pennmush/pkg/errutil"
)

// Default values for run command flags.
const (
	defaultActor           = "#1"
	defaultShutdownTimeout = 5 * time.Second
)

// runConfig holds configuration for the run command.
type runConfig struct {
	actor string
	exec  []string
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the world and dispatch commands",
		Long: `Load the world fixture, replay command customizations and dispatch
each input line as the acting player. Lines come from --exec, or from
standard input when no --exec is given. With a database configured,
attribute changes are written back after every line.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGame(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.actor, "actor", defaultActor, "object that types the input")
	cmd.Flags().StringArrayVarP(&cfg.exec, "exec", "e", nil, "command to run (repeatable)")
	addConfigFlags(cmd.Flags())

	return cmd
}

// loadConfig reads and checks the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger builds the process logger. Without a log file, records go to
// the command's error stream.
func setupLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	var w io.Writer
	if cfg.Log.File == "" {
		w = cmd.ErrOrStderr()
	}
	logger, closer, err := logging.Setup("pennmush", version, cfg.Log, w)
	if err != nil {
		return nil, nil, oops.Code("LOGGING_SETUP_FAILED").Wrap(err)
	}
	return logger, closer, nil
}

// consoleNotifier prints messages for actor as they are, and messages for
// anyone else prefixed with the target.
func consoleNotifier(w io.Writer, actor dbref.Ref) command.Notifier {
	var mu sync.Mutex
	return command.NotifierFunc(func(_ context.Context, target dbref.Ref, msg string) {
		mu.Lock()
		defer mu.Unlock()
		if target == actor {
			_, _ = fmt.Fprintln(w, msg)
			return
		}
		_, _ = fmt.Fprintf(w, "[%s] %s\n", target, msg)
	})
}

// persistence is the database side of a running game.
type persistence struct {
	pool     *pgxpool.Pool
	attrs    *store.PostgresAttributeRepository
	commands *store.PostgresCommandRepository
	journal  *store.Journal
}

func openPersistence(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*persistence, error) {
	opts := store.DefaultConnectOptions()
	if cfg.Database.ConnectAttempts > 0 {
		opts.Attempts = cfg.Database.ConnectAttempts
	}
	pool, err := store.Connect(ctx, cfg.Database.URL, opts)
	if err != nil {
		return nil, err
	}

	m, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		pool.Close()
		return nil, err
	}
	upErr := m.Up()
	if closeErr := m.Close(); closeErr != nil {
		logger.Warn("closing migrator", "error", closeErr)
	}
	if upErr != nil {
		pool.Close()
		return nil, upErr
	}

	return &persistence{
		pool:     pool,
		attrs:    store.NewPostgresAttributeRepository(pool),
		commands: store.NewPostgresCommandRepository(pool),
		journal:  store.NewJournal(pool),
	}, nil
}

func runGame(cmd *cobra.Command, rc *runConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	actor, err := dbref.Parse(rc.actor)
	if err != nil {
		return oops.With("actor", rc.actor).Wrap(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ready atomic.Bool
	var metrics *observability.Metrics
	var registerer prometheus.Registerer
	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr, ready.Load, logger)
		errCh, startErr := srv.Start()
		if startErr != nil {
			return startErr
		}
		go monitorServerErrors(ctx, stop, errCh, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer cancel()
			if stopErr := srv.Stop(shutdownCtx); stopErr != nil {
				logger.Warn("error stopping observability server", "error", stopErr)
			}
		}()
		metrics = srv.Metrics()
		registerer = srv.Registry()
		logger.Info("observability server started", "addr", srv.Addr())
	}

	fix, err := world.LoadFixtureFile(cfg.World)
	if err != nil {
		return err
	}

	opts := game.Options{
		Notifier:   consoleNotifier(cmd.OutOrStdout(), actor),
		Registerer: registerer,
		Logger:     logger,
	}
	var db *persistence
	if cfg.Database.URL != "" {
		db, err = openPersistence(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.pool.Close()
		opts.Saved, err = db.commands.Load(ctx)
		if err != nil {
			return err
		}
		opts.Observer = db.journal
		opts.Recorder = db.commands
	}

	g, err := game.New(cfg, fix, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	if db != nil {
		n, hydrateErr := db.attrs.Hydrate(ctx, g.Attrs)
		if hydrateErr != nil {
			return hydrateErr
		}
		logger.Info("attributes restored", "objects", n)
	}
	if !g.Graph.Good(actor) {
		return oops.Code("CONFIG_INVALID").With("actor", actor.String()).Errorf("actor %s does not exist", actor)
	}
	if metrics != nil {
		metrics.AttributeObjects.Set(float64(len(g.Attrs.Objects())))
	}
	ready.Store(true)
	logger.Info("game ready",
		"world", cfg.World,
		"commands", len(g.Table.Commands()),
		"actor", actor.String(),
	)

	runLine := func(source, line string) {
		outcome := g.Run(ctx, actor, line)
		logger.Debug("dispatched", "source", source, "outcome", outcome.String())
		if metrics != nil {
			metrics.InputLines.WithLabelValues(source).Inc()
		}
		if db == nil {
			return
		}
		n, flushErr := db.journal.Flush(ctx)
		status := "ok"
		if flushErr != nil {
			status = "error"
			errutil.LogError(logger, "journal flush failed", flushErr)
		}
		if metrics != nil && (n > 0 || flushErr != nil) {
			metrics.JournalFlushes.WithLabelValues(status).Inc()
			metrics.AttributeObjects.Set(float64(len(g.Attrs.Objects())))
		}
	}

	if len(rc.exec) > 0 {
		for _, line := range rc.exec {
			if ctx.Err() != nil {
				break
			}
			runLine("exec", line)
		}
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		runLine("stdin", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return oops.Code("INPUT_READ_FAILED").Wrap(err)
	}
	logger.Info("input closed, shutting down")
	return nil
}

// monitorServerErrors cancels the run when a server fails. It exits when
// an error arrives, the channel closes, or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			errutil.LogError(logger, "server error, triggering shutdown", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
