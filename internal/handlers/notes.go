package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/impex"
	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
)

// maxImportBytes bounds the body accepted by the import endpoint.
const maxImportBytes = 10 << 20

// NoteRequest represents the HTTP request payload for creating or editing a note.
type NoteRequest struct {
	Category      string   `json:"category"`
	PrimaryText   string   `json:"primaryText"`
	SecondaryText string   `json:"secondaryText"`
	Note          string   `json:"note"`
	Examples      []string `json:"examples,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

func (r NoteRequest) candidate() notes.Candidate {
	return notes.Candidate{
		Category:      notes.Category(r.Category),
		PrimaryText:   r.PrimaryText,
		SecondaryText: r.SecondaryText,
		Note:          r.Note,
		Examples:      r.Examples,
		Tags:          r.Tags,
	}
}

// NoteResponse is a note as returned by the API.
type NoteResponse struct {
	notes.Record
	// Highlight is present on list results when a search term was given.
	Highlight *HighlightResponse `json:"highlight,omitempty"`
}

// HighlightResponse holds the emphasized segments of the searchable fields.
type HighlightResponse struct {
	PrimaryText   []notes.Segment `json:"primaryText"`
	SecondaryText []notes.Segment `json:"secondaryText"`
}

// ListResponse represents the response from the list endpoint.
type ListResponse struct {
	Category notes.Category `json:"category,omitempty"`
	Query    string         `json:"query,omitempty"`
	Count    int            `json:"count"`
	Notes    []NoteResponse `json:"notes"`
}

// MutationResponse represents the response from a mutating endpoint.
type MutationResponse struct {
	Note     *NoteResponse `json:"note,omitempty"`
	Affected int           `json:"affected"`
	Message  string        `json:"message"`
}

// ImportResponse represents the response from the import endpoint.
type ImportResponse struct {
	Total    int                 `json:"total"`
	Imported int                 `json:"imported"`
	Skipped  []impex.SkippedLine `json:"skipped,omitempty"`
	Message  string              `json:"message"`
}

func newNoteResponse(n notes.Note, query string) NoteResponse {
	resp := NoteResponse{Record: notes.ToRecord(n)}
	if query != "" {
		resp.Highlight = &HighlightResponse{
			PrimaryText:   notes.Highlight(n.PrimaryText(), query),
			SecondaryText: notes.Highlight(n.SecondaryText(), query),
		}
	}
	return resp
}

func newMutationResponse(res service.Result) MutationResponse {
	out := MutationResponse{Affected: res.Affected, Message: res.Message}
	if res.Note.Body != nil {
		nr := newNoteResponse(res.Note, "")
		out.Note = &nr
	}
	return out
}

// NotesHandler handles the note collection: list, create and delete-all.
type NotesHandler struct {
	noteService service.NoteService
}

// NewNotesHandler creates a new NotesHandler.
func NewNotesHandler(noteService service.NoteService) *NotesHandler {
	return &NotesHandler{noteService: noteService}
}

// ServeHTTP handles HTTP requests for the note collection.
func (h *NotesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.deleteAll(w, r)
	default:
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *NotesHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	query := service.ListQuery{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Tag:      q.Get("tag"),
	}
	found, err := h.noteService.List(ctx, query)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list notes")
		return
	}

	resp := ListResponse{
		Query: query.Search,
		Count: len(found),
		Notes: make([]NoteResponse, len(found)),
	}
	if query.Category != "" {
		resp.Category, _ = notes.ParseCategory(query.Category)
	}
	for i, n := range found {
		resp.Notes[i] = newNoteResponse(n, query.Search)
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *NotesHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.noteService.Add(ctx, req.candidate())
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to add note")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, newMutationResponse(res))
}

func (h *NotesHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !confirmed {
		writeError(w, http.StatusBadRequest, "Deleting every note requires confirm=true")
		return
	}

	res, err := h.noteService.DeleteAll(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to delete notes")
		return
	}
	writeJSON(ctx, w, http.StatusOK, newMutationResponse(res))
}

// NoteItemHandler handles a single note: get, edit and delete.
type NoteItemHandler struct {
	noteService service.NoteService
}

// NewNoteItemHandler creates a new NoteItemHandler.
func NewNoteItemHandler(noteService service.NoteService) *NoteItemHandler {
	return &NoteItemHandler{noteService: noteService}
}

// ServeHTTP handles HTTP requests for a single note.
func (h *NoteItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "id")

	switch r.Method {
	case http.MethodGet:
		n, err := h.noteService.Get(ctx, id)
		if err != nil {
			handleServiceError(ctx, w, err, "Failed to get note")
			return
		}
		writeJSON(ctx, w, http.StatusOK, newNoteResponse(n, ""))

	case http.MethodPut:
		var req NoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WarnContext(ctx, "invalid request body", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		res, err := h.noteService.Update(ctx, id, req.candidate())
		if err != nil {
			handleServiceError(ctx, w, err, "Failed to update note")
			return
		}
		writeJSON(ctx, w, http.StatusOK, newMutationResponse(res))

	case http.MethodDelete:
		res, err := h.noteService.Delete(ctx, id)
		if err != nil {
			handleServiceError(ctx, w, err, "Failed to delete note")
			return
		}
		writeJSON(ctx, w, http.StatusOK, newMutationResponse(res))

	default:
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// SortHandler sorts one category A–Z.
type SortHandler struct {
	noteService service.NoteService
}

// NewSortHandler creates a new SortHandler.
func NewSortHandler(noteService service.NoteService) *SortHandler {
	return &SortHandler{noteService: noteService}
}

// ServeHTTP handles HTTP requests for sorting.
func (h *SortHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	res, err := h.noteService.Sort(ctx, r.URL.Query().Get("category"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to sort notes")
		return
	}
	writeJSON(ctx, w, http.StatusOK, newMutationResponse(res))
}

// ImportHandler imports notes from the raw request body.
type ImportHandler struct {
	noteService service.NoteService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(noteService service.NoteService) *ImportHandler {
	return &ImportHandler{noteService: noteService}
}

// ServeHTTP handles HTTP requests for importing. The format comes from the
// format query parameter, falling back to the Content-Type header.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rawFormat := r.URL.Query().Get("format")
	if rawFormat == "" {
		rawFormat = mediaType(r.Header.Get("Content-Type"))
	}
	format, err := impex.ParseFormat(rawFormat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	res, err := h.noteService.Import(ctx, format, body, r.URL.Query().Get("category"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to import notes")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ImportResponse{
		Total:    res.Total,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Message:  res.Message,
	})
}

// ExportHandler downloads the whole sequence.
type ExportHandler struct {
	noteService service.NoteService
	now         func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(noteService service.NoteService) *ExportHandler {
	return &ExportHandler{noteService: noteService, now: time.Now}
}

// ServeHTTP handles HTTP requests for exporting.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rawFormat := r.URL.Query().Get("format")
	if rawFormat == "" {
		rawFormat = string(impex.FormatJSON)
	}
	format, err := impex.ParseFormat(rawFormat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Buffer so a failed export can still become an error response.
	var buf bytes.Buffer
	if err := h.noteService.Export(ctx, format, &buf); err != nil {
		handleServiceError(ctx, w, err, "Failed to export notes")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", impex.FileName(format, h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// mediaType strips parameters from a Content-Type value.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
