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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/grimoire/internal/api"
	"github.com/starford/grimoire/internal/console"
	"github.com/starford/grimoire/internal/credential"
	"github.com/starford/grimoire/internal/diary"
	"github.com/starford/grimoire/internal/index"
	"github.com/starford/grimoire/internal/journal"
	"github.com/starford/grimoire/internal/mcpserver"
	"github.com/starford/grimoire/internal/session"
	"github.com/starford/grimoire/internal/sse"
	"github.com/starford/grimoire/internal/storage"
)

// runtime is a booted diary: the service plus what must be closed with it.
type runtime struct {
	cfg         *Config
	logger      *slog.Logger
	svc         *diary.Service
	db          *index.DB
	entriesPath string
}

func (rt *runtime) Close() {
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Warn("close index failed", slog.String("error", err.Error()))
		}
	}
}

// boot wires logger, storage, stores, gate, index, and service from the
// configuration. The gate state is resolved here, once.
func boot(app *application, opts ...diary.Option) (*runtime, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Structured JSON logger. stdout belongs to the console and MCP transport.
	logger := slog.New(slog.NewJSONHandler(app.stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("diary_dir", cfg.Diary.Dir),
		slog.Bool("index_enabled", cfg.Index.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Diary.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create diary dir: %w", err)
	}

	fs, err := storage.NewFS(cfg.Diary.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	creds := credential.NewStore(fs,
		credential.WithFile(cfg.Diary.CredentialFile),
		credential.WithCost(cfg.Security.BcryptCost),
		credential.WithLogger(logger))
	entries := journal.NewStore(fs,
		journal.WithFile(cfg.Diary.EntriesFile),
		journal.WithLogger(logger))
	gate := session.New(creds, entries, session.WithLogger(logger))

	rt := &runtime{
		cfg:         cfg,
		logger:      logger,
		entriesPath: filepath.Join(fs.Root(), entries.File()),
	}

	if cfg.Index.Enabled {
		db, err := index.Open(cfg.Index.Path(fs.Root()))
		if err != nil {
			// Search falls back to scanning the collection.
			logger.Warn("init index failed, search will scan", slog.String("error", err.Error()))
		} else {
			rt.db = db
			opts = append(opts, diary.WithIndex(db))
		}
	}

	rt.svc = diary.NewService(gate, append(opts, diary.WithLogger(logger))...)
	return rt, nil
}

// Run starts the interactive console and returns when the user leaves it.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	rt, err := boot(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = console.New(rt.svc, app.stdin, app.stdout).Run(ctx)
	if errors.Is(err, context.Canceled) {
		// Ctrl-C closes the diary like quit does.
		fmt.Fprintln(app.stdout)
		return nil
	}
	return err
}

// ServeMCP exposes the diary as MCP tools over stdio.
func ServeMCP(_ context.Context, opts ...Option) error {
	app := newApplication(opts)
	rt, err := boot(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, app.version).ServeStdio()
}

// Serve starts the loopback HTTP API with SSE events and the entry watcher.
func Serve(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)

	broker := sse.NewBroker(app.throttle())
	defer broker.Close()

	rt, err := boot(app, diary.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, logger := rt.cfg, rt.logger
	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRouter(rt.svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Re-sync the index when the entry file changes under us.
	if rt.db != nil {
		g.Go(func() error {
			err := index.Watch(gCtx, rt.db, rt.svc.Source(), rt.entriesPath, logger, rt.svc.EntriesSynced)
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		// Streams never end on their own; close them before Shutdown waits.
		broker.Close()

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

// errShutdown cancels the group once a shutdown was requested.
var errShutdown = errors.New("shutdown requested")

func (a *application) throttle() time.Duration {
	if a.config == nil {
		return 0
	}
	return a.config.Events.Throttle
}

func newRouter(svc *diary.Service, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health)
	r.Get("/health/ready", health)
	r.Mount("/api", api.NewRouter(svc, broker))
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
