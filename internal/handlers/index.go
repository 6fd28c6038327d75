package handlers

import (
	"html/template"
	"net/http"
	"net/url"

	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
)

// IndexHandler serves the note list page: one category tab at a time, with
// search results highlighted.
type IndexHandler struct {
	noteService service.NoteService
	template    *template.Template
}

type indexTab struct {
	Category notes.Category
	Active   bool
	Count    int
}

type indexRow struct {
	Link      string
	Primary   template.HTML
	Secondary template.HTML
}

type indexPageData struct {
	Tabs     []indexTab
	Category notes.Category
	Query    string
	Rows     []indexRow
	Error    string
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(noteService service.NoteService) *IndexHandler {
	tmpl := template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>English notes</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0 auto; padding: 2rem; max-width: 820px; }
    nav a { margin-right: 1rem; text-decoration: none; }
    nav a.active { font-weight: bold; text-decoration: underline; }
    table { width: 100%; border-collapse: collapse; margin-top: 1rem; }
    td { padding: 0.4rem 0.6rem; border-bottom: 1px solid #eee; }
    mark { background: #fde68a; padding: 0 2px; border-radius: 3px; }
    .empty { color: #94a3b8; }
    .error { color: #b91c1c; }
  </style>
</head>
<body>
  <nav>{{range .Tabs}}<a href="/?category={{.Category}}"{{if .Active}} class="active"{{end}}>{{.Category}} ({{.Count}})</a>{{end}}</nav>
  <form method="get" action="/">
    <input type="hidden" name="category" value="{{.Category}}">
    <input type="search" name="q" value="{{.Query}}" placeholder="Search">
  </form>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  {{if .Rows}}
  <table>
    {{range .Rows}}<tr><td><a href="{{.Link}}">{{.Primary}}</a></td><td>{{.Secondary}}</td></tr>
    {{end}}
  </table>
  {{else}}<p class="empty">No notes yet.</p>{{end}}
</body>
</html>`))

	return &IndexHandler{
		noteService: noteService,
		template:    tmpl,
	}
}

// ServeHTTP renders the list page.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	data := indexPageData{Query: q.Get("q")}

	category := q.Get("category")
	if category == "" {
		category = string(notes.CategoryVocabulary)
	}
	parsed, err := notes.ParseCategory(category)
	if err != nil {
		data.Error = err.Error()
		parsed = notes.CategoryVocabulary
	}
	data.Category = parsed

	stats := h.noteService.Stats(ctx)
	for _, c := range notes.Categories {
		data.Tabs = append(data.Tabs, indexTab{Category: c, Active: c == parsed, Count: stats.ByCategory[c]})
	}

	found, err := h.noteService.List(ctx, service.ListQuery{Category: string(parsed), Search: data.Query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to list notes", "error", err)
		data.Error = "Failed to list notes"
	}
	for _, n := range found {
		link := "/notes/" + url.PathEscape(n.ID)
		if data.Query != "" {
			link += "?q=" + url.QueryEscape(data.Query)
		}
		data.Rows = append(data.Rows, indexRow{
			Link:      link,
			Primary:   markSegments(notes.Highlight(n.PrimaryText(), data.Query)),
			Secondary: markSegments(notes.Highlight(n.SecondaryText(), data.Query)),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		logger.ErrorContext(ctx, "failed to execute index template", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
