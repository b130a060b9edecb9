package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sophialabs/sigtrace/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/sigtrace/internal/infrastructure/outbound/logging"
	"github.com/sophialabs/sigtrace/internal/infrastructure/outbound/reportfile"
	"github.com/sophialabs/sigtrace/internal/infrastructure/wiring"
)

// App is the thin lifecycle manager that delegates dependency construction
// to wiring.Container.
type App struct {
	cfg        Config
	container  *wiring.Container
	httpServer *http.Server
}

// New constructs the application by creating a logger, wiring infrastructure
// components via the container, and setting up the HTTP server.
func New(cfg Config) (*App, error) {
	level := parseLogLevel(cfg.LogLevel)
	logger := logging.New(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	container, err := wiring.New(wiring.Params{
		RulesDir:         cfg.RulesDir,
		Version:          cfg.Version,
		Concurrency:      cfg.Concurrency,
		SignatureTimeout: cfg.SignatureTimeout,
		RunHistorySize:   cfg.RunHistorySize,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
		RateLimiterTTL:   cfg.RateLimiterTTL,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire infrastructure: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      container.Server(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		container:  container,
		httpServer: httpServer,
	}, nil
}

// Run executes the full application lifecycle: load signatures, start the
// rules watcher, serve HTTP, and handle graceful shutdown on SIGINT/SIGTERM
// or context cancellation.
func (a *App) Run(ctx context.Context) error {
	defer a.container.Close()

	logger := a.container.Logger()
	server := a.container.Server()
	loadUC := a.container.LoadSignaturesUseCase()

	reg, err := loadUC.Execute(ctx)
	if err != nil {
		return fmt.Errorf("failed to load signatures: %w", err)
	}
	server.Rebuild(reg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := a.setupWatcher()
	if watcher != nil {
		defer watcher.Stop()
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting sigtrace server", "addr", a.httpServer.Addr, "rules", a.cfg.RulesDir, "version", a.cfg.Version)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// RunReport evaluates a single sandbox report file offline and writes the
// result set as JSON to stdout, without starting the HTTP server.
func (a *App) RunReport(ctx context.Context, path string) error {
	defer a.container.Close()

	loadUC := a.container.LoadSignaturesUseCase()
	reg, err := loadUC.Execute(ctx)
	if err != nil {
		return fmt.Errorf("failed to load signatures: %w", err)
	}

	tr, err := reportfile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	rs, err := a.container.AnalyzeTraceUseCase().Execute(ctx, tr, reg)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

func (a *App) setupWatcher() *filesystem.Watcher {
	logger := a.container.Logger()
	server := a.container.Server()
	loadUC := a.container.LoadSignaturesUseCase()

	watcher, err := filesystem.NewWatcher(a.cfg.RulesDir, a.cfg.WatcherDebounce, logger, func() {
		newReg, err := loadUC.Execute(context.Background())
		if err != nil {
			logger.Error("hot reload failed", "error", err)
			return
		}
		server.Rebuild(newReg)
		logger.Info("hot reload complete")
	})
	if err != nil {
		logger.Warn("file watcher not available", "error", err)
		return nil
	}

	watcher.Start()
	logger.Info("file watcher started", "rules", a.cfg.RulesDir)
	return watcher
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
