// Package app wires configuration, persistence and the note service together
// for the API server and the command-line client.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"vocabnotes/internal/config"
	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
	"vocabnotes/internal/storage"
	"vocabnotes/internal/storage/jsonfile"
)

// Store is a persistence adapter that can report its health.
type Store interface {
	service.Persistence
	Ping(ctx context.Context) error
}

// App holds the opened store and the note service loaded from it.
type App struct {
	Notes service.NoteService
	Store Store

	db *sql.DB
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Open opens the configured store and loads every note into memory.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)
	a := &App{}

	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.db = db
		a.Store = storage.NewNoteRepo(db)
		logger.InfoContext(ctx, "Database initialized", "path", cfg.DBPath)

	case config.DriverJSONFile:
		s, err := jsonfile.New(cfg.JSONStorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open JSON store: %w", err)
		}
		a.Store = s
		logger.InfoContext(ctx, "JSON store initialized", "path", cfg.JSONStorePath)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	store := notes.NewStore(notes.WithLocale(cfg.SortLocale))
	a.Notes = service.NewNoteService(store, a.Store, cfg.DefaultCategory)
	if err := a.Notes.Load(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the underlying store.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
