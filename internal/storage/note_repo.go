package storage

import (
	"context"
	"database/sql"
	"fmt"

	"vocabnotes/internal/notes"
)

const selectNotes = `SELECT id, category, primary_text, secondary_text, note, examples, tags, position, created_at
	FROM notes ORDER BY position, rowid`

// NoteRepo persists the note sequence in SQLite. Sequence order is kept in
// the position column.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// Ping reports whether the database is reachable.
func (r *NoteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// LoadAll returns every stored note in sequence order.
func (r *NoteRepo) LoadAll(ctx context.Context) ([]notes.Note, error) {
	rows, err := r.db.QueryContext(ctx, selectNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []notes.Note
	for rows.Next() {
		var row noteRow
		if err := rows.Scan(&row.ID, &row.Category, &row.PrimaryText, &row.SecondaryText,
			&row.Note, &row.Examples, &row.Tags, &row.Position, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n, err := row.note()
		if err != nil {
			return nil, fmt.Errorf("invalid stored note %s: %w", row.ID, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return out, nil
}

// Create appends n after the last stored note.
func (r *NoteRepo) Create(ctx context.Context, n notes.Note) error {
	return r.CreateMany(ctx, []notes.Note{n})
}

// CreateMany appends ns, in order, in a single transaction.
func (r *NoteRepo) CreateMany(ctx context.Context, ns []notes.Note) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position) + 1, 0) FROM notes").Scan(&next); err != nil {
			return fmt.Errorf("failed to read next position: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO notes (id, category, primary_text, secondary_text, note, examples, tags, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer func() {
			_ = stmt.Close()
		}()

		for i, n := range ns {
			row, err := newNoteRow(n)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, row.ID, row.Category, row.PrimaryText, row.SecondaryText,
				row.Note, row.Examples, row.Tags, next+i, row.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert note %s: %w", row.ID, err)
			}
		}
		return nil
	})
}

// Update overwrites the body of n. It returns a *notes.NotFoundError when no
// row has n's ID.
func (r *NoteRepo) Update(ctx context.Context, n notes.Note) error {
	row, err := newNoteRow(n)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET category = ?, primary_text = ?, secondary_text = ?, note = ?, examples = ?, tags = ?
		 WHERE id = ?`,
		row.Category, row.PrimaryText, row.SecondaryText, row.Note, row.Examples, row.Tags, row.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return &notes.NotFoundError{ID: n.ID}
	}
	return nil
}

// Delete removes the note with id. Deleting a missing note is not an error.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// DeleteMany removes every note in ids in a single transaction.
func (r *NoteRepo) DeleteMany(ctx context.Context, ids []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "DELETE FROM notes WHERE id = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare delete: %w", err)
		}
		defer func() {
			_ = stmt.Close()
		}()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("failed to delete note %s: %w", id, err)
			}
		}
		return nil
	})
}

// Reorder rewrites positions so the stored order matches ids. Notes not in
// ids keep their position and sort after the reordered ones on ties.
func (r *NoteRepo) Reorder(ctx context.Context, ids []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "UPDATE notes SET position = ? WHERE id = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare reorder: %w", err)
		}
		defer func() {
			_ = stmt.Close()
		}()

		for i, id := range ids {
			if _, err := stmt.ExecContext(ctx, i, id); err != nil {
				return fmt.Errorf("failed to move note %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *NoteRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
