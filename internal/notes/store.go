// Package notes is the note store engine: the canonical ordered sequence of
// notes, its mutations, and the search, highlight and sort derivations.
//
// The engine performs no I/O. Persistence mirrors live in the service layer.
package notes

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// maxIDAttempts bounds regeneration when a generated ID is already taken.
const maxIDAttempts = 3

// Store owns the canonical sequence of notes.
// Mutations take the write lock; every read returns a copy, so callers never
// observe a partially applied mutation.
type Store struct {
	mu     sync.RWMutex
	notes  []Note
	sorter *sorter
	now    func() time.Time
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLocale sets the collation locale used by SortCategory.
func WithLocale(tag language.Tag) Option {
	return func(s *Store) {
		s.sorter = newSorter(tag)
	}
}

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sorter == nil {
		s.sorter = newSorter(DefaultLocale)
	}
	return s
}

// Add validates c and appends a new note to the end of the sequence.
func (s *Store) Add(c Candidate) (Note, error) {
	body, err := c.Body()
	if err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freshID()
	if err != nil {
		return Note{}, err
	}
	n := Note{ID: id, CreatedAt: s.now(), Body: body}
	s.notes = append(s.notes, n)
	return cloneNote(n), nil
}

// AddAll validates every candidate first and appends them only if all are
// valid. The error names the index of the first invalid candidate.
func (s *Store) AddAll(cs []Candidate) ([]Note, error) {
	bodies := make([]Body, len(cs))
	for i, c := range cs {
		body, err := c.Body()
		if err != nil {
			return nil, &BatchError{Index: i, Err: err}
		}
		bodies[i] = body
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]Note, 0, len(bodies))
	now := s.now()
	for _, body := range bodies {
		id, err := s.freshID()
		if err != nil {
			s.notes = s.notes[:len(s.notes)-len(added)]
			return nil, err
		}
		n := Note{ID: id, CreatedAt: now, Body: body}
		s.notes = append(s.notes, n)
		added = append(added, n)
	}
	return cloneNotes(added), nil
}

// Update replaces the body of the note with id. ID, CreatedAt and position
// are unchanged.
func (s *Store) Update(id string, c Candidate) (Note, error) {
	body, err := c.Body()
	if err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, &NotFoundError{ID: id}
	}
	s.notes[i].Body = body
	return cloneNote(s.notes[i]), nil
}

// Delete removes the note with id. The others keep their relative order.
func (s *Store) Delete(id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, &NotFoundError{ID: id}
	}
	removed := s.notes[i]
	s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
	return removed, nil
}

// DeleteAll removes every note regardless of category and returns them.
func (s *Store) DeleteAll() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.notes
	s.notes = nil
	return removed
}

// SortCategory orders the notes of category A–Z by primary text within the
// positions they already occupy, and returns the whole resulting sequence.
// Calling it twice in a row is the same as calling it once.
func (s *Store) SortCategory(category Category) []Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sorter.sortInPlace(s.notes, category)
	return cloneNotes(s.notes)
}

// Get returns the note with id.
func (s *Store) Get(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, &NotFoundError{ID: id}
	}
	return cloneNote(s.notes[i]), nil
}

// All returns a copy of the whole sequence in order.
func (s *Store) All() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Filter is Filter applied to the current sequence.
func (s *Store) Filter(category Category, term string) []Note {
	return Filter(s.All(), category, term)
}

// Replace swaps in a new sequence, e.g. after loading from persistence or a
// change notification. Duplicate IDs are rejected.
func (s *Store) Replace(ns []Note) error {
	seen := make(map[string]struct{}, len(ns))
	for _, n := range ns {
		if _, dup := seen[n.ID]; dup {
			return &ValidationError{Field: "id", Message: "duplicate id " + n.ID}
		}
		seen[n.ID] = struct{}{}
		if n.Body == nil {
			return &ValidationError{Field: "body", Message: "missing for id " + n.ID}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = cloneNotes(ns)
	return nil
}

// Snapshot captures the current sequence for a later Restore.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{notes: s.All()}
}

// Restore puts back a sequence captured by Snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = cloneNotes(snap.notes)
}

// Snapshot is an opaque copy of a store's sequence.
type Snapshot struct {
	notes []Note
}

// BatchError reports which element of a batch failed validation.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

var errIDExhausted = errors.New("could not generate an unused id")

func (s *Store) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", errIDExhausted
}

func (s *Store) indexOf(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
