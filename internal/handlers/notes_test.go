package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"vocabnotes/internal/impex"
	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
	"vocabnotes/internal/service/mocks"
)

var appleNote = notes.Note{
	ID:        "n1",
	CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	Body:      notes.Vocabulary{Word: "apple", Meaning: "quả táo", Note: "An *apple* a day"},
}

// withURLParam attaches a chi route parameter to r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: &service.ValidationError{Field: "primaryText", Message: "cannot be empty"}, wantStatus: http.StatusBadRequest},
		{name: "not found", err: &service.NotFoundError{ID: "x"}, wantStatus: http.StatusNotFound},
		{name: "import parse", err: &service.ImportParseError{Err: errors.New("bad json")}, wantStatus: http.StatusBadRequest},
		{name: "persistence", err: &service.PersistenceError{Op: "add", Err: errors.New("disk full")}, wantStatus: http.StatusServiceUnavailable},
		{name: "body too large", err: fmt.Errorf("read text import: %w", &http.MaxBytesError{Limit: 10}), wantStatus: http.StatusRequestEntityTooLarge},
		{name: "JSON body too large", err: &service.ImportParseError{Err: &http.MaxBytesError{Limit: 10}}, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "line too long", err: fmt.Errorf("read text import: %w", bufio.ErrTooLong), wantStatus: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleServiceError(context.Background(), w, tt.err, "default")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestNotesHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		target        string
		body          string
		mockSetup     func(*mocks.MockNoteService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "list with highlight",
			method: http.MethodGet,
			target: "/api/notes?category=vocab&q=qua",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().
					List(gomock.Any(), service.ListQuery{Category: "vocab", Search: "qua"}).
					Return([]notes.Note{appleNote}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ListResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Count != 1 || resp.Category != notes.CategoryVocabulary {
					t.Errorf("resp = %+v", resp)
				}
				hl := resp.Notes[0].Highlight
				if hl == nil {
					t.Fatal("highlight missing")
				}
				want := []notes.Segment{{Text: "quả", Emphasized: true}, {Text: " táo"}}
				if len(hl.SecondaryText) != 2 || hl.SecondaryText[0] != want[0] || hl.SecondaryText[1] != want[1] {
					t.Errorf("secondary highlight = %+v, want %+v", hl.SecondaryText, want)
				}
			},
		},
		{
			name:   "list without query has no highlight",
			method: http.MethodGet,
			target: "/api/notes",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().List(gomock.Any(), service.ListQuery{}).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				if !strings.Contains(w.Body.String(), `"notes":[]`) {
					t.Errorf("body = %s, want empty notes array", w.Body.String())
				}
			},
		},
		{
			name:   "list unknown category",
			method: http.MethodGet,
			target: "/api/notes?category=phrasal",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().List(gomock.Any(), gomock.Any()).
					Return(nil, &service.ValidationError{Field: "category", Message: "unknown category"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "create",
			method: http.MethodPost,
			target: "/api/notes",
			body:   `{"category":"vocabulary","primaryText":"apple","secondaryText":"quả táo"}`,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().
					Add(gomock.Any(), notes.Candidate{Category: notes.CategoryVocabulary, PrimaryText: "apple", SecondaryText: "quả táo"}).
					Return(service.Result{Note: appleNote, Affected: 1, Message: `Added "apple"`}, nil)
			},
			wantStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp MutationResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Note == nil || resp.Note.ID != "n1" || resp.Message != `Added "apple"` {
					t.Errorf("resp = %+v", resp)
				}
			},
		},
		{
			name:       "create invalid JSON",
			method:     http.MethodPost,
			target:     "/api/notes",
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockNoteService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "create persistence failure",
			method: http.MethodPost,
			target: "/api/notes",
			body:   `{"primaryText":"apple","secondaryText":"quả táo"}`,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Add(gomock.Any(), gomock.Any()).
					Return(service.Result{}, &service.PersistenceError{Op: "add", Err: errors.New("disk full")})
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "delete all without confirm",
			method:     http.MethodDelete,
			target:     "/api/notes",
			mockSetup:  func(m *mocks.MockNoteService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "delete all confirmed",
			method: http.MethodDelete,
			target: "/api/notes?confirm=true",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().DeleteAll(gomock.Any()).
					Return(service.Result{Affected: 3, Message: "Deleted all 3 notes"}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp MutationResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Affected != 3 || resp.Note != nil {
					t.Errorf("resp = %+v", resp)
				}
			},
		},
		{
			name:       "method not allowed",
			method:     http.MethodPatch,
			target:     "/api/notes",
			mockSetup:  func(m *mocks.MockNoteService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockNoteService(ctrl)
			tt.mockSetup(mockService)

			handler := NewNotesHandler(mockService)
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestNoteItemHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		mockSetup  func(*mocks.MockNoteService)
		wantStatus int
	}{
		{
			name:   "get",
			method: http.MethodGet,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Get(gomock.Any(), "n1").Return(appleNote, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "get missing",
			method: http.MethodGet,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Get(gomock.Any(), "n1").Return(notes.Note{}, &service.NotFoundError{ID: "n1"})
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "update",
			method: http.MethodPut,
			body:   `{"primaryText":"apple","secondaryText":"trái táo"}`,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().
					Update(gomock.Any(), "n1", notes.Candidate{PrimaryText: "apple", SecondaryText: "trái táo"}).
					Return(service.Result{Note: appleNote, Affected: 1, Message: `Updated "apple"`}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "update validation error",
			method: http.MethodPut,
			body:   `{"primaryText":"","secondaryText":"trái táo"}`,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Update(gomock.Any(), "n1", gomock.Any()).
					Return(service.Result{}, &service.ValidationError{Field: "primaryText", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Delete(gomock.Any(), "n1").
					Return(service.Result{Note: appleNote, Affected: 1, Message: `Deleted "apple"`}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "method not allowed",
			method:     http.MethodPost,
			mockSetup:  func(m *mocks.MockNoteService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockNoteService(ctrl)
			tt.mockSetup(mockService)

			handler := NewNoteItemHandler(mockService)
			req := withURLParam(httptest.NewRequest(tt.method, "/api/notes/n1", strings.NewReader(tt.body)), "id", "n1")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSortHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockNoteService(ctrl)
	mockService.EXPECT().Sort(gomock.Any(), "grammar").
		Return(service.Result{Affected: 4, Message: `Sorted "grammar" A-Z`}, nil)

	handler := NewSortHandler(mockService)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/notes/sort?category=grammar", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/sort", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestImportHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		mockSetup   func(*mocks.MockNoteService)
		wantStatus  int
	}{
		{
			name:   "text import",
			target: "/api/notes/import?format=text&category=idiom",
			body:   "break a leg | chúc may mắn\n",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().
					Import(gomock.Any(), impex.FormatText, gomock.Any(), "idiom").
					DoAndReturn(func(_ context.Context, _ impex.Format, r io.Reader, _ string) (service.ImportResult, error) {
						b, _ := io.ReadAll(r)
						if string(b) != "break a leg | chúc may mắn\n" {
							return service.ImportResult{}, errors.New("unexpected body")
						}
						return service.ImportResult{Total: 1, Imported: 1, Message: "Imported 1 of 1 lines"}, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "format from content type",
			target:      "/api/notes/import",
			contentType: "application/json; charset=utf-8",
			body:        `[]`,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Import(gomock.Any(), impex.FormatJSON, gomock.Any(), "").
					Return(service.ImportResult{Message: "Imported 0 notes from JSON"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "body over the limit",
			target: "/api/notes/import?format=text",
			body:   strings.Repeat("a | b\n", maxImportBytes/6+1),
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().
					Import(gomock.Any(), impex.FormatText, gomock.Any(), "").
					DoAndReturn(func(_ context.Context, _ impex.Format, r io.Reader, category string) (service.ImportResult, error) {
						_, report, err := impex.ParseText(r, notes.CategoryVocabulary)
						return service.ImportResult{Total: report.Total}, err
					})
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:   "line over the limit",
			target: "/api/notes/import?format=text",
			body:   strings.Repeat("x", 2<<20) + " | y\n",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().
					Import(gomock.Any(), impex.FormatText, gomock.Any(), "").
					DoAndReturn(func(_ context.Context, _ impex.Format, r io.Reader, category string) (service.ImportResult, error) {
						_, report, err := impex.ParseText(r, notes.CategoryVocabulary)
						return service.ImportResult{Total: report.Total}, err
					})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported format",
			target:     "/api/notes/import?format=csv",
			mockSetup:  func(m *mocks.MockNoteService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "malformed JSON",
			target: "/api/notes/import?format=json",
			body:   `[{`,
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Import(gomock.Any(), impex.FormatJSON, gomock.Any(), "").
					Return(service.ImportResult{}, &service.ImportParseError{Err: errors.New("unexpected EOF")})
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockNoteService(ctrl)
			tt.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			NewImportHandler(mockService).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestExportHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockNoteService(ctrl)
	mockService.EXPECT().
		Export(gomock.Any(), impex.FormatText, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ impex.Format, w io.Writer) error {
			_, err := io.WriteString(w, "apple | quả táo | vocabulary\n")
			return err
		})

	handler := NewExportHandler(mockService)
	handler.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/export?format=txt", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="english-notes-20240501-093000.txt"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), []byte("apple | quả táo | vocabulary\n")) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestStatsHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockNoteService(ctrl)
	mockService.EXPECT().Stats(gomock.Any()).Return(service.Stats{
		Total:      2,
		ByCategory: map[notes.Category]int{notes.CategoryVocabulary: 2},
	})

	w := httptest.NewRecorder()
	NewStatsHandler(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp service.Stats
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || resp.ByCategory[notes.CategoryVocabulary] != 2 {
		t.Errorf("resp = %+v", resp)
	}
}
