package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_service.go -package=mocks -mock_names=NoteService=MockNoteService vocabnotes/internal/service NoteService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/impex"
	"vocabnotes/internal/notes"
)

// ListQuery selects the notes shown for one category tab.
type ListQuery struct {
	Category string
	Search   string
	Tag      string
}

// Result describes a completed mutation.
type Result struct {
	// Note is the added or updated note, when there is one.
	Note notes.Note
	// Affected is the number of notes the operation touched.
	Affected int
	// Message is a short confirmation suitable for a transient notification.
	Message string
}

// ImportResult describes a completed import.
type ImportResult struct {
	Total    int
	Imported int
	Skipped  []impex.SkippedLine
	Message  string
}

// NoteService is the session object the presentation layer talks to.
type NoteService interface {
	// Load replaces the in-memory sequence with the persisted one.
	Load(ctx context.Context) error
	// List returns the notes of one category matching the search term and tag.
	List(ctx context.Context, q ListQuery) ([]notes.Note, error)
	// Get returns one note.
	Get(ctx context.Context, id string) (notes.Note, error)
	// Add creates a note.
	Add(ctx context.Context, c notes.Candidate) (Result, error)
	// Update replaces the mutable fields of a note.
	Update(ctx context.Context, id string, c notes.Candidate) (Result, error)
	// Delete removes one note.
	Delete(ctx context.Context, id string) (Result, error)
	// DeleteAll removes every note in every category.
	DeleteAll(ctx context.Context) (Result, error)
	// Sort orders one category A–Z.
	Sort(ctx context.Context, category string) (Result, error)
	// Import adds the notes read from r. category is the default for text lines without one.
	Import(ctx context.Context, format impex.Format, r io.Reader, category string) (ImportResult, error)
	// Export writes the whole sequence to w.
	Export(ctx context.Context, format impex.Format, w io.Writer) error
	// Stats summarizes the sequence.
	Stats(ctx context.Context) Stats
	// Watch keeps the sequence in sync with external changes to the store.
	Watch(ctx context.Context) (stop func(), err error)
}

// noteService implements NoteService.
// mu serializes mutations so an engine change and its persistence mirror
// never interleave with another mutation.
type noteService struct {
	mu              sync.Mutex
	store           *notes.Store
	repo            Persistence
	defaultCategory notes.Category
}

// NewNoteService creates a NoteService over store, mirrored to repo.
func NewNoteService(store *notes.Store, repo Persistence, defaultCategory notes.Category) NoteService {
	if !defaultCategory.Valid() {
		defaultCategory = notes.CategoryVocabulary
	}
	return &noteService{
		store:           store,
		repo:            repo,
		defaultCategory: defaultCategory,
	}
}

func (s *noteService) Load(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.repo.LoadAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load notes", "error", err)
		return &PersistenceError{Op: "load", Err: err}
	}
	if err := s.store.Replace(loaded); err != nil {
		logger.ErrorContext(ctx, "persisted notes are inconsistent", "error", err)
		return &PersistenceError{Op: "load", Err: err}
	}

	logger.InfoContext(ctx, "notes loaded", "count", len(loaded))
	return nil
}

func (s *noteService) List(ctx context.Context, q ListQuery) ([]notes.Note, error) {
	category, err := s.category(q.Category)
	if err != nil {
		return nil, err
	}
	return notes.FilterByTag(s.store.Filter(category, q.Search), q.Tag), nil
}

func (s *noteService) Get(ctx context.Context, id string) (notes.Note, error) {
	return s.store.Get(id)
}

func (s *noteService) Add(ctx context.Context, c notes.Candidate) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	if c.Category == "" {
		c.Category = s.defaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.store.Snapshot()
	n, err := s.store.Add(c)
	if err != nil {
		logger.WarnContext(ctx, "note rejected", "error", err)
		return Result{}, err
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.store.Restore(snap)
		logger.ErrorContext(ctx, "failed to persist new note", "id", n.ID, "error", err)
		return Result{}, &PersistenceError{Op: "add", Err: err}
	}

	logger.InfoContext(ctx, "note added", "id", n.ID, "category", n.Category())
	return Result{
		Note:     n,
		Affected: 1,
		Message:  fmt.Sprintf("Added %q", n.PrimaryText()),
	}, nil
}

func (s *noteService) Update(ctx context.Context, id string, c notes.Candidate) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Category == "" {
		current, err := s.store.Get(id)
		if err != nil {
			return Result{}, err
		}
		c.Category = current.Category()
	}

	snap := s.store.Snapshot()
	n, err := s.store.Update(id, c)
	if err != nil {
		logger.WarnContext(ctx, "update rejected", "id", id, "error", err)
		return Result{}, err
	}

	if err := s.repo.Update(ctx, n); err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			// Removed by another client: drop the stale copy.
			s.store.Restore(snap)
			_, _ = s.store.Delete(id)
			logger.WarnContext(ctx, "note vanished from store, dropped locally", "id", id)
			return Result{}, &NotFoundError{ID: id}
		}
		s.store.Restore(snap)
		logger.ErrorContext(ctx, "failed to persist note update", "id", id, "error", err)
		return Result{}, &PersistenceError{Op: "update", Err: err}
	}

	logger.InfoContext(ctx, "note updated", "id", id)
	return Result{
		Note:     n,
		Affected: 1,
		Message:  fmt.Sprintf("Updated %q", n.PrimaryText()),
	}, nil
}

func (s *noteService) Delete(ctx context.Context, id string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.store.Snapshot()
	removed, err := s.store.Delete(id)
	if err != nil {
		logger.WarnContext(ctx, "delete target missing", "id", id)
		return Result{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, notes.ErrNotFound) {
		s.store.Restore(snap)
		logger.ErrorContext(ctx, "failed to persist delete", "id", id, "error", err)
		return Result{}, &PersistenceError{Op: "delete", Err: err}
	}

	logger.InfoContext(ctx, "note deleted", "id", id)
	return Result{
		Note:     removed,
		Affected: 1,
		Message:  fmt.Sprintf("Deleted %q", removed.PrimaryText()),
	}, nil
}

// DeleteAll removes every note regardless of category, as the original tool did.
func (s *noteService) DeleteAll(ctx context.Context) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.store.Snapshot()
	removed := s.store.DeleteAll()
	if len(removed) == 0 {
		return Result{Message: "There are no notes to delete"}, nil
	}

	ids := make([]string, len(removed))
	for i, n := range removed {
		ids[i] = n.ID
	}
	if err := s.repo.DeleteMany(ctx, ids); err != nil {
		s.store.Restore(snap)
		logger.ErrorContext(ctx, "failed to persist delete-all", "count", len(ids), "error", err)
		return Result{}, &PersistenceError{Op: "delete all", Err: err}
	}

	logger.InfoContext(ctx, "all notes deleted", "count", len(ids))
	return Result{
		Affected: len(ids),
		Message:  fmt.Sprintf("Deleted all %d notes", len(ids)),
	}, nil
}

func (s *noteService) Sort(ctx context.Context, category string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	cat, err := s.category(category)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.store.Snapshot()
	sorted := s.store.SortCategory(cat)

	ids := make([]string, len(sorted))
	affected := 0
	for i, n := range sorted {
		ids[i] = n.ID
		if n.Category() == cat {
			affected++
		}
	}
	if err := s.repo.Reorder(ctx, ids); err != nil {
		s.store.Restore(snap)
		logger.ErrorContext(ctx, "failed to persist sort order", "category", cat, "error", err)
		return Result{}, &PersistenceError{Op: "sort", Err: err}
	}

	logger.InfoContext(ctx, "category sorted", "category", cat, "count", affected)
	return Result{
		Affected: affected,
		Message:  fmt.Sprintf("Sorted %q A-Z", cat),
	}, nil
}

func (s *noteService) Import(ctx context.Context, format impex.Format, r io.Reader, category string) (ImportResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	cat, err := s.category(category)
	if err != nil {
		return ImportResult{}, err
	}

	var (
		candidates []notes.Candidate
		result     ImportResult
	)
	switch format {
	case impex.FormatText:
		var report impex.TextReport
		candidates, report, err = impex.ParseText(r, cat)
		if err != nil {
			return ImportResult{}, err
		}
		result = ImportResult{Total: report.Total, Imported: report.Imported, Skipped: report.Skipped}
		result.Message = fmt.Sprintf("Imported %d of %d lines", report.Imported, report.Total)
	case impex.FormatJSON:
		candidates, err = impex.ParseJSON(r, cat)
		if err != nil {
			logger.WarnContext(ctx, "structured import rejected", "error", err)
			return ImportResult{}, &ImportParseError{Err: err}
		}
		result = ImportResult{Total: len(candidates), Imported: len(candidates)}
		result.Message = fmt.Sprintf("Imported %d notes from JSON", len(candidates))
	default:
		return ImportResult{}, &ValidationError{Field: "format", Message: impex.ErrUnsupportedFormat.Error()}
	}

	if len(candidates) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.store.Snapshot()
	added, err := s.store.AddAll(candidates)
	if err != nil {
		return ImportResult{}, err
	}
	if err := s.repo.CreateMany(ctx, added); err != nil {
		s.store.Restore(snap)
		logger.ErrorContext(ctx, "failed to persist import", "count", len(added), "error", err)
		return ImportResult{}, &PersistenceError{Op: "import", Err: err}
	}

	logger.InfoContext(ctx, "notes imported", "format", format, "imported", result.Imported, "total", result.Total)
	return result, nil
}

func (s *noteService) Export(ctx context.Context, format impex.Format, w io.Writer) error {
	all := s.store.All()
	switch format {
	case impex.FormatText:
		return impex.WriteText(w, all)
	case impex.FormatJSON:
		return impex.WriteJSON(w, all)
	}
	return &ValidationError{Field: "format", Message: impex.ErrUnsupportedFormat.Error()}
}

func (s *noteService) Watch(ctx context.Context) (func(), error) {
	w, ok := s.repo.(Watcher)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	logger := contextutil.LoggerFromContext(ctx)

	return w.Subscribe(ctx, func(ns []notes.Note) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.store.Replace(ns); err != nil {
			logger.WarnContext(ctx, "ignoring inconsistent external change", "error", err)
			return
		}
		logger.InfoContext(ctx, "notes reloaded after external change", "count", len(ns))
	})
}

// category resolves a category name, defaulting to the service's default.
func (s *noteService) category(name string) (notes.Category, error) {
	if name == "" {
		return s.defaultCategory, nil
	}
	return notes.ParseCategory(name)
}
