package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
)

// NoteHandler serves a single note as a rendered HTML card. The note text is
// treated as Markdown.
type NoteHandler struct {
	noteService service.NoteService
	parser      goldmark.Markdown
	template    *template.Template
}

// notePageData holds template data for rendered note cards.
type notePageData struct {
	ID        string
	Title     string
	Category  notes.Category
	Primary   template.HTML
	Secondary template.HTML
	Content   template.HTML
	Examples  []string
	Tags      []string
	CreatedAt string
}

// NewNoteHandler creates a new handler for serving note cards.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	tmpl := template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · {{.Category}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 720px;
      line-height: 1.6;
    }
    article {
      border: 1px solid #ddd;
      border-radius: 12px;
      padding: 1.5rem 2rem;
    }
    h1 {
      margin: 0;
    }
    mark {
      background: #fde68a;
      padding: 0 2px;
      border-radius: 3px;
    }
    .category {
      text-transform: uppercase;
      letter-spacing: 0.08em;
      font-size: 0.8rem;
      color: #64748b;
    }
    .secondary {
      font-size: 1.2rem;
      color: #334155;
    }
    .tag {
      display: inline-block;
      background: #e0e7ff;
      border-radius: 999px;
      padding: 0 0.6rem;
      margin-right: 0.3rem;
      font-size: 0.85rem;
    }
    .meta {
      color: #94a3b8;
      font-size: 0.85rem;
    }
  </style>
</head>
<body>
  <article id="{{.ID}}">
    <p class="category">{{.Category}}</p>
    <h1>{{.Primary}}</h1>
    <p class="secondary">{{.Secondary}}</p>
    {{if .Content}}<section>{{.Content}}</section>{{end}}
    {{if .Examples}}<ul>{{range .Examples}}<li>{{.}}</li>{{end}}</ul>{{end}}
    {{if .Tags}}<p>{{range .Tags}}<span class="tag">#{{.}}</span>{{end}}</p>{{end}}
    <p class="meta">Added {{.CreatedAt}}</p>
  </article>
</body>
</html>`))

	return &NoteHandler{
		noteService: noteService,
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: tmpl,
	}
}

// ServeHTTP renders the requested note as HTML. The q query parameter marks
// matches in the primary and secondary text.
func (h *NoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		http.Error(w, "note id is required", http.StatusBadRequest)
		return
	}

	n, err := h.noteService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "failed to load note", "id", id, "error", err)
		http.Error(w, "failed to load note", http.StatusInternalServerError)
		return
	}

	htmlContent, err := h.renderMarkdown([]byte(n.Body.NoteText()))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "id", id, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query().Get("q")
	pageData := notePageData{
		ID:        n.ID,
		Title:     n.PrimaryText(),
		Category:  n.Category(),
		Primary:   markSegments(notes.Highlight(n.PrimaryText(), query)),
		Secondary: markSegments(notes.Highlight(n.SecondaryText(), query)),
		Content:   template.HTML(htmlContent),
		Examples:  notes.Examples(n.Body),
		Tags:      notes.Tags(n.Body),
		CreatedAt: n.CreatedAt.Format("2 Jan 2006"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute note template", "id", id, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}
}

func (h *NoteHandler) renderMarkdown(content []byte) (string, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := h.parser.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// markSegments escapes every segment and wraps emphasized ones in <mark>.
func markSegments(segments []notes.Segment) template.HTML {
	var b strings.Builder
	for _, s := range segments {
		if s.Emphasized {
			b.WriteString("<mark>")
			b.WriteString(template.HTMLEscapeString(s.Text))
			b.WriteString("</mark>")
			continue
		}
		b.WriteString(template.HTMLEscapeString(s.Text))
	}
	return template.HTML(b.String())
}
