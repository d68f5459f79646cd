// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/namefile/internal/api"
	"github.com/starford/namefile/internal/catalog"
	"github.com/starford/namefile/internal/index"
	"github.com/starford/namefile/internal/mcpserver"
	"github.com/starford/namefile/internal/sse"
	"github.com/starford/namefile/internal/storage"
)

// Run starts the HTTP catalog service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(os.Stdout, opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, closeLog := newLogger(cfg, app.logOut)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_root", cfg.Catalog.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", cfg.Catalog.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, err := openCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(cfg.Catalog.EventThrottle)
	defer broker.Close()

	svc := catalog.NewService(store, db)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	if cfg.Catalog.Watch {
		g.Go(func() error {
			err := index.Watch(gCtx, db, store, logger, broker.PublishFileEvent)
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP syncs the index once and serves the MCP tools on stdin/stdout.
// Logs go to stderr so they do not interleave with the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(os.Stderr, opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, closeLog := newLogger(cfg, app.logOut)
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, db, err := openCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := mcpserver.New(catalog.NewService(store, db), app.version)

	g, gCtx := errgroup.WithContext(ctx)
	if cfg.Catalog.Watch {
		g.Go(func() error {
			if err := index.Watch(gCtx, db, store, logger, nil); err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("MCP server starting on stdio", slog.String("catalog_root", cfg.Catalog.Root))
		if err := srv.ServeStdio(gCtx); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// errShutdown cancels the group's context once a long-running member returns
// normally, so that the remaining members stop as well.
var errShutdown = errors.New("shutdown")

func newApplication(defaultOut io.Writer, opts []Option) (*application, error) {
	app := &application{version: "dev", logOut: defaultOut}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the JSON logger. When a log file is configured, records
// are written to out and to a size-rotated file.
func newLogger(cfg *Config, out io.Writer) (*slog.Logger, func()) {
	closeFn := func() {}
	if lf := cfg.App.LogFile; lf.Path != "" {
		rotator := &lumberjack.Logger{
			Filename:   lf.Path,
			MaxSize:    lf.MaxSizeMB,
			MaxBackups: lf.MaxBackups,
			MaxAge:     lf.MaxAgeDays,
			Compress:   lf.Compress,
		}
		out = io.MultiWriter(out, rotator)
		closeFn = func() { _ = rotator.Close() }
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	return logger, closeFn
}

// openCatalog prepares the catalog root, opens the index and runs the
// initial sync. The caller owns the returned DB.
func openCatalog(cfg *Config, logger *slog.Logger) (storage.Provider, *index.DB, error) {
	if err := os.MkdirAll(cfg.Catalog.Root, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create catalog root: %w", err)
	}

	store, err := storage.NewFS(cfg.Catalog.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return store, db, nil
}
