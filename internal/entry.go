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

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/nbstore"
	"github.com/starford/raido/internal/ops"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// On stdio transport stdout belongs to the MCP protocol, so the
	// structured JSON logger must write to stderr.
	logOut := os.Stdout
	if cfg.App.Transport == TransportStdio {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("transport", cfg.App.Transport),
		slog.String("project_path", cfg.Project.Path),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Resolve the project scope; the zero scope accepts any path.
	var scope nbstore.Scope
	if cfg.Project.Scoped() {
		var err error
		scope, err = nbstore.NewScope(cfg.Project.Path)
		if err != nil {
			return fmt.Errorf("init project scope: %w", err)
		}
	}

	store := nbstore.New(scope)
	svc := ops.NewService(store)

	// The catalog only tracks a scoped project workspace.
	var db *catalog.DB
	if cfg.Project.Scoped() {
		var err error
		db, err = catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("init catalog: %w", err)
		}
		defer db.Close()

		if err := catalog.Sync(db, scope.Root(), logger); err != nil {
			logger.Warn("initial catalog sync failed", slog.String("error", err.Error()))
		}
	}

	srv := mcpserver.New(svc, db)

	g, gCtx := errgroup.WithContext(ctx)

	if db != nil {
		g.Go(func() error {
			return catalog.Watch(gCtx, db, scope.Root(), logger)
		})
	}

	switch cfg.App.Transport {
	case TransportStdio:
		g.Go(func() error {
			logger.Info("Serving MCP over stdio")
			if err := srv.ServeStdio(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("stdio server error: %w", err)
			}
			return nil
		})

	case TransportHTTP:
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

		endpoint := cfg.App.HTTP.EndpointPath()
		r.Group(func(r chi.Router) {
			r.Use(mcpserver.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token))
			r.Handle(endpoint, srv.StreamableHTTP(endpoint))
		})

		httpServer := &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: r,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server",
				slog.String("address", cfg.App.HTTP.Address()),
				slog.String("endpoint", endpoint))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})

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

	default:
		return fmt.Errorf("unknown transport: %q", cfg.App.Transport)
	}

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
