package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_persistence.go -package=mocks vocabnotes/internal/service Persistence

import (
	"context"

	"vocabnotes/internal/notes"
)

// Persistence is the durable mirror of the note sequence.
// This interface is defined from the service layer's perspective (consumer-first).
//
// Implementations report a missing record with an error matching
// notes.ErrNotFound. Batch methods are all or nothing.
type Persistence interface {
	// LoadAll returns every stored note in sequence order.
	LoadAll(ctx context.Context) ([]notes.Note, error)
	// Create stores a new note at the end of the sequence.
	Create(ctx context.Context, n notes.Note) error
	// CreateMany stores new notes, in order, at the end of the sequence.
	CreateMany(ctx context.Context, ns []notes.Note) error
	// Update replaces the mutable fields of an existing note.
	Update(ctx context.Context, n notes.Note) error
	// Delete removes one note. Deleting an absent note is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteMany removes the given notes.
	DeleteMany(ctx context.Context, ids []string) error
	// Reorder stores ids, which lists every note, as the new sequence order.
	Reorder(ctx context.Context, ids []string) error
}

// Watcher is implemented by adapters that can push changes made by other
// clients of the same store.
type Watcher interface {
	// Subscribe calls onChange with the full sequence after every external
	// change until ctx is done or the returned function is called.
	Subscribe(ctx context.Context, onChange func([]notes.Note)) (unsubscribe func(), err error)
}
