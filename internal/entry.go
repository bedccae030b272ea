// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/doclint/internal/api"
	"github.com/starford/doclint/internal/cache"
	"github.com/starford/doclint/internal/engine"
	"github.com/starford/doclint/internal/mcpserver"
	"github.com/starford/doclint/internal/report"
	"github.com/starford/doclint/internal/sse"
	"github.com/starford/doclint/internal/storage"
	"github.com/starford/doclint/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{
		format: report.FormatTable,
		stdout: os.Stdout,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildEngine wires storage, the optional cache, and the pipeline engine.
// The returned closer releases the cache connection (a no-op when caching
// is disabled).
func buildEngine(cfg *Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	store, err := storage.NewFS(cfg.Corpus.Root, cfg.Corpus.Extensions...)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	var db *cache.DB
	closer := func() {}
	if cfg.Cache.Enabled {
		db, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init cache: %w", err)
		}
		closer = func() { _ = db.Close() }
	}

	eng := engine.New(engine.Params{
		Store:                store,
		Schema:               cfg.Schema.Schema(),
		EntryPoints:          cfg.Checks.EntryPoints,
		StalenessDays:        cfg.Checks.StalenessDays,
		DefaultStalenessDays: cfg.Checks.DefaultStalenessDays(),
		Cache:                db,
		Logger:               logger,
	})
	return eng, closer, nil
}

// RunCheck executes one integrity run, writes the formatted report, and
// returns the process exit code.
func RunCheck(ctx context.Context, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return report.ExitUsage, err
	}
	cfg := app.config
	logger := newLogger(cfg)

	eng, closeCache, err := buildEngine(cfg, logger)
	if err != nil {
		return report.ExitUsage, err
	}
	defer closeCache()

	rep, err := eng.Run(ctx, app.now())
	if err != nil {
		return report.ExitUsage, err
	}

	switch app.format {
	case report.FormatJSON:
		out, err := report.JSON(rep)
		if err != nil {
			return report.ExitUsage, err
		}
		if _, err := app.stdout.Write(out); err != nil {
			return report.ExitUsage, err
		}
	case report.FormatTable:
		if _, err := fmt.Fprint(app.stdout, report.Table(rep)); err != nil {
			return report.ExitUsage, err
		}
	default:
		return report.ExitUsage, fmt.Errorf("unknown format: %q", app.format)
	}

	return report.ExitCode(rep, cfg.Checks.Strict), nil
}

// RunServe starts the report server: an initial integrity run, a corpus
// watcher that re-runs the pipeline on change, and an HTTP API serving the
// latest report with SSE update events.
func RunServe(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.Server.Address()),
		slog.String("corpus_root", cfg.Corpus.Root),
		slog.String("log_level", cfg.App.LogLevel.String()))

	eng, closeCache, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := api.NewService()
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rerun := func(runCtx context.Context) {
		rep, runErr := eng.Run(runCtx, app.now())
		if runErr != nil {
			logger.Error("integrity run failed", slog.String("error", runErr.Error()))
			return
		}
		svc.SetReport(rep)
		broker.PublishReport(rep.Summary)
	}

	// Initial run so the API has a report before the first change.
	rerun(ctx)

	apiRouter := api.NewRouter(svc, cfg.Server.Auth.AuthEnabled(), cfg.Server.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the corpus and re-run the pipeline on change.
	g.Go(func() error {
		return watch.Watch(gCtx, cfg.Corpus.Root, 200*time.Millisecond, logger,
			func(kind, path string) { broker.PublishChange(kind, path) },
			func() { rerun(gCtx) })
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	eng, closeCache, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	return mcpserver.New(eng).ServeStdio()
}
