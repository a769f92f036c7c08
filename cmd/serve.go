package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/czha8903/fnplayer/pkg/audit"
	"github.com/czha8903/fnplayer/pkg/config"
	"github.com/czha8903/fnplayer/pkg/execprobe"
	"github.com/czha8903/fnplayer/pkg/httpserver"
	"github.com/czha8903/fnplayer/pkg/metrics"
	"github.com/czha8903/fnplayer/pkg/player"
)

const defaultProbeInterval = time.Minute

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the push bridge (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *options) error {
	logger := opts.logger
	logger.Info("starting fnplayer", "version", version)

	// --- Initial Setup ---
	store := config.Open(opts.fs, opts.configPath, logger)
	if err := store.Persist(); err != nil {
		logger.Warn("failed to write configuration file", "path", store.Path(), "error", err)
	}
	cfg := store.Snapshot()
	if err := config.Validate(cfg); err != nil {
		logger.Warn("configuration has problems", "error", err)
	}

	auditLog, err := audit.Open(opts.fs, opts.auditPath)
	if err != nil {
		return err
	}
	defer auditLog.Close()
	logger.Info("audit log opened", "path", auditLog.Path())

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	server, err := httpserver.NewServer(httpserver.Deps{
		Config:   store,
		Launcher: player.NewLauncher(logger),
		Audit:    auditLog,
		Metrics:  m,
		Logger:   logger,
		Version:  version,
	})
	if err != nil {
		return err
	}

	// --- Services Setup ---
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	watchDone, err := store.Watch(ctx)
	if err != nil {
		logger.Warn("configuration file will not be watched", "error", err)
	}

	interval, err := config.StrToDuration(opts.probeInterval)
	if err != nil {
		logger.Warn("invalid probe interval, using default", "value", opts.probeInterval, "default", defaultProbeInterval, "error", err)
		interval = defaultProbeInterval
	}
	probeStop := execprobe.Start(ctx, interval, &execprobe.Probe{
		Source: store,
		Exists: player.Exists,
		Gauge:  m.ExecutablePresent,
		Logger: logger,
	})

	serveErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		serveErr <- server.Start(ctx)
	}()

	// --- Graceful Shutdown Handling ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	logger.Info("fnplayer started, press Ctrl+C to shut down", "addr", cfg.Addr())

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	cancel()
	probeStop()
	wg.Wait()
	if watchDone != nil {
		<-watchDone
	}

	logger.Info("fnplayer exiting")
	return runErr
}
