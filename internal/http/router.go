package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vocabnotes/internal/handlers"
	"vocabnotes/internal/service"
)

const healthPath = "/api/health"

// Deps holds dependencies for the HTTP router.
type Deps struct {
	NoteService service.NoteService
	// Store is pinged by the health check.
	Store handlers.Pinger
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// Add CORS middleware
	r.Use(CORS)

	notesHandler := handlers.NewNotesHandler(deps.NoteService)
	noteItemHandler := handlers.NewNoteItemHandler(deps.NoteService)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/notes", func(r chi.Router) {
			r.Method(http.MethodGet, "/", notesHandler)
			r.Method(http.MethodPost, "/", notesHandler)
			r.Method(http.MethodDelete, "/", notesHandler)

			r.Method(http.MethodPost, "/sort", handlers.NewSortHandler(deps.NoteService))
			r.Method(http.MethodPost, "/import", handlers.NewImportHandler(deps.NoteService))
			r.Method(http.MethodGet, "/export", handlers.NewExportHandler(deps.NoteService))

			r.Method(http.MethodGet, "/{id}", noteItemHandler)
			r.Method(http.MethodPut, "/{id}", noteItemHandler)
			r.Method(http.MethodDelete, "/{id}", noteItemHandler)
		})
		r.Method(http.MethodGet, "/stats", handlers.NewStatsHandler(deps.NoteService))
	})
	r.Method(http.MethodGet, healthPath, handlers.NewHealthHandler(deps.Store))

	// HTML pages
	r.Method(http.MethodGet, "/notes/{id}", handlers.NewNoteHandler(deps.NoteService))
	r.Method(http.MethodGet, "/", handlers.NewIndexHandler(deps.NoteService))

	return r
}
