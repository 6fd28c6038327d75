package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"vocabnotes/internal/notes"
)

// timeLayout is how created_at is stored. Fixed width keeps lexical and
// chronological order the same.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// noteRow is one row of the notes table.
type noteRow struct {
	ID            string
	Category      string
	PrimaryText   string
	SecondaryText string
	Note          string
	Examples      string // JSON array
	Tags          string // JSON array
	Position      int
	CreatedAt     string
}

func newNoteRow(n notes.Note) (noteRow, error) {
	rec := notes.ToRecord(n)

	examples, err := encodeList(rec.Examples)
	if err != nil {
		return noteRow{}, err
	}
	tags, err := encodeList(rec.Tags)
	if err != nil {
		return noteRow{}, err
	}

	return noteRow{
		ID:            rec.ID,
		Category:      string(rec.Category),
		PrimaryText:   rec.PrimaryText,
		SecondaryText: rec.SecondaryText,
		Note:          rec.Note,
		Examples:      examples,
		Tags:          tags,
		CreatedAt:     rec.CreatedAt.UTC().Format(timeLayout),
	}, nil
}

func (r noteRow) note() (notes.Note, error) {
	rec := notes.Record{
		ID:            r.ID,
		Category:      notes.Category(r.Category),
		PrimaryText:   r.PrimaryText,
		SecondaryText: r.SecondaryText,
		Note:          r.Note,
	}

	if err := json.Unmarshal([]byte(r.Examples), &rec.Examples); err != nil {
		return notes.Note{}, fmt.Errorf("failed to decode examples of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Tags), &rec.Tags); err != nil {
		return notes.Note{}, fmt.Errorf("failed to decode tags of %s: %w", r.ID, err)
	}

	createdAt, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		// Rows written by hand may use plain RFC 3339.
		createdAt, err = time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			return notes.Note{}, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
	}
	rec.CreatedAt = createdAt

	return notes.FromRecord(rec)
}

func encodeList(items []string) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}
