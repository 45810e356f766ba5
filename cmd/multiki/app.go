package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/mmcdole/multiki/internal/catalog"
	"github.com/mmcdole/multiki/internal/config"
	"github.com/mmcdole/multiki/internal/log"
	"github.com/mmcdole/multiki/internal/metrics"
	"github.com/mmcdole/multiki/internal/player"
	"github.com/mmcdole/multiki/internal/store"
	"github.com/mmcdole/multiki/internal/transport"
)

// app holds the wired components for one invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	registry  *prometheus.Registry
	store     *store.Catalog
	svc       *catalog.Service
	launcher  *player.Launcher
}

func newApp() (*app, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newAppWithConfig(cfg)
}

func newAppWithConfig(cfg *config.Config) (*app, error) {
	// Setup logger
	logger, logCloser, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting multiki", "version", Version, "source", cfg.Source.URL)

	catalogStore, err := store.Open(cfg.Cache, cfg.Source.URL, logger)
	if err != nil {
		if logCloser != nil {
			logCloser.Close()
		}
		return nil, fmt.Errorf("failed to open catalog cache: %w", err)
	}

	client := transport.New(transport.Config{
		Timeout:     cfg.Source.Timeout,
		UserAgent:   cfg.Source.UserAgent,
		MaxBodySize: cfg.Source.MaxBodySize,
		RateLimit:   cfg.Source.RateLimit,
	}, logger)

	registry := prometheus.NewRegistry()
	svc := catalog.NewService(cfg.Source.URL, client, catalogStore, logger,
		catalog.WithMetrics(metrics.New(registry)))

	return &app{
		cfg:       cfg,
		logger:    logger,
		logCloser: logCloser,
		registry:  registry,
		store:     catalogStore,
		svc:       svc,
		launcher:  player.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger),
	}, nil
}

// Close flushes metrics and releases the cache and log file.
func (a *app) Close() error {
	var errs []error
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(a.registry, path); err != nil {
			a.logger.Error("failed to write metrics textfile", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("shutting down")
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
