package notes

import (
	"slices"
	"time"
)

// Record is the flat, storage-format-agnostic view of a note used by the
// import/export codecs, the HTTP API and the persistence adapters.
type Record struct {
	ID            string    `json:"id,omitempty"`
	Category      Category  `json:"category"`
	PrimaryText   string    `json:"primaryText"`
	SecondaryText string    `json:"secondaryText"`
	Note          string    `json:"note,omitempty"`
	Examples      []string  `json:"examples,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
}

// ToRecord flattens n.
func ToRecord(n Note) Record {
	return Record{
		ID:            n.ID,
		Category:      n.Category(),
		PrimaryText:   n.PrimaryText(),
		SecondaryText: n.SecondaryText(),
		Note:          noteText(n.Body),
		Examples:      slices.Clone(Examples(n.Body)),
		Tags:          slices.Clone(Tags(n.Body)),
		CreatedAt:     n.CreatedAt,
	}
}

// ToRecords flattens every note in ns, preserving order.
func ToRecords(ns []Note) []Record {
	out := make([]Record, len(ns))
	for i, n := range ns {
		out[i] = ToRecord(n)
	}
	return out
}

// Candidate returns the mutable fields of r, dropping ID and CreatedAt.
func (r Record) Candidate() Candidate {
	return Candidate{
		Category:      r.Category,
		PrimaryText:   r.PrimaryText,
		SecondaryText: r.SecondaryText,
		Note:          r.Note,
		Examples:      r.Examples,
		Tags:          r.Tags,
	}
}

// FromRecord rebuilds a stored note. It is used by persistence adapters when
// loading, so ID and CreatedAt are taken from r as-is.
func FromRecord(r Record) (Note, error) {
	if r.ID == "" {
		return Note{}, &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	body, err := r.Candidate().Body()
	if err != nil {
		return Note{}, err
	}
	return Note{ID: r.ID, CreatedAt: r.CreatedAt, Body: body}, nil
}
