package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
	"vocabnotes/internal/service/mocks"
)

func TestIndexHandler_ServeHTTP(t *testing.T) {
	stats := service.Stats{
		Total: 1,
		ByCategory: map[notes.Category]int{
			notes.CategoryVocabulary: 1,
			notes.CategoryGrammar:    0,
			notes.CategoryIdiom:      0,
		},
	}

	tests := []struct {
		name         string
		target       string
		mockSetup    func(*mocks.MockNoteService)
		wantStatus   int
		wantContains []string
	}{
		{
			name:   "defaults to vocabulary",
			target: "/",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Stats(gomock.Any()).Return(stats)
				m.EXPECT().List(gomock.Any(), service.ListQuery{Category: "vocabulary"}).Return([]notes.Note{appleNote}, nil)
			},
			wantStatus: http.StatusOK,
			wantContains: []string{
				`class="active">vocabulary (1)</a>`,
				`grammar (0)`,
				`<a href="/notes/n1">apple</a>`,
			},
		},
		{
			name:   "search highlights and keeps query in links",
			target: "/?category=vocab&q=tao",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Stats(gomock.Any()).Return(stats)
				m.EXPECT().List(gomock.Any(), service.ListQuery{Category: "vocabulary", Search: "tao"}).Return([]notes.Note{appleNote}, nil)
			},
			wantStatus: http.StatusOK,
			wantContains: []string{
				`/notes/n1?q=tao`,
				`quả <mark>táo</mark>`,
			},
		},
		{
			name:   "empty category",
			target: "/?category=idiom",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Stats(gomock.Any()).Return(stats)
				m.EXPECT().List(gomock.Any(), service.ListQuery{Category: "idiom"}).Return(nil, nil)
			},
			wantStatus:   http.StatusOK,
			wantContains: []string{"No notes yet."},
		},
		{
			name:   "unknown category falls back",
			target: "/?category=phrasal",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Stats(gomock.Any()).Return(stats)
				m.EXPECT().List(gomock.Any(), service.ListQuery{Category: "vocabulary"}).Return(nil, nil)
			},
			wantStatus:   http.StatusOK,
			wantContains: []string{"unknown category phrasal"},
		},
		{
			name:   "list failure is shown",
			target: "/",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Stats(gomock.Any()).Return(stats)
				m.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantStatus:   http.StatusOK,
			wantContains: []string{"Failed to list notes"},
		},
		{
			name:       "method not allowed",
			target:     "/",
			mockSetup:  func(m *mocks.MockNoteService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockNoteService(ctrl)
			tt.mockSetup(mockService)

			method := http.MethodGet
			if tt.wantStatus == http.StatusMethodNotAllowed {
				method = http.MethodPost
			}
			w := httptest.NewRecorder()
			NewIndexHandler(mockService).ServeHTTP(w, httptest.NewRequest(method, tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := w.Body.String()
			for _, s := range tt.wantContains {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q\n%s", s, body)
				}
			}
		})
	}
}
