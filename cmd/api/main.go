package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"vocabnotes/internal/app"
	"vocabnotes/internal/config"
	"vocabnotes/internal/http"
	"vocabnotes/internal/service"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open note store: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()
	slog.Info("Notes loaded", "driver", cfg.StoreDriver, "count", a.Notes.Stats(ctx).Total)

	// Pick up edits made to the store by other processes
	unwatch, err := a.Notes.Watch(ctx)
	switch {
	case errors.Is(err, service.ErrWatchUnsupported):
		slog.Debug("Store does not push external changes", "driver", cfg.StoreDriver)
	case err != nil:
		log.Fatalf("Failed to watch note store: %v", err)
	default:
		defer unwatch()
	}

	router := http.NewRouter(&http.Deps{
		NoteService: a.Notes,
		Store:       a.Store,
	})

	srv := &nethttp.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down API server", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("API server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("API server stopped")
}
