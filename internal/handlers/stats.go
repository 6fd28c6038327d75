package handlers

import (
	"net/http"

	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/service"
)

// StatsHandler reports note counts.
type StatsHandler struct {
	noteService service.NoteService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(noteService service.NoteService) *StatsHandler {
	return &StatsHandler{noteService: noteService}
}

// ServeHTTP handles HTTP requests for statistics.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.noteService.Stats(ctx))
}
