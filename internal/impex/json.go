package impex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"vocabnotes/internal/notes"
)

// ErrParse is the sentinel every ParseError unwraps to.
var ErrParse = errors.New("import parse error")

// ParseError reports a structured import that could not be used at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("import parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// importRecord is notes.Record plus the field names written by the older
// web app, which exported raw documents.
type importRecord struct {
	notes.Record

	Word                 string `json:"word"`
	Meaning              string `json:"meaning"`
	Type                 string `json:"type"`
	ExampleOrExplanation string `json:"exampleOrExplanation"`
	Structure            string `json:"structure"`
	Explanation          string `json:"explanation"`
}

func (r importRecord) candidate(defaultCategory notes.Category) notes.Candidate {
	c := r.Record.Candidate()
	c.Category = notes.Category(firstNonEmpty(string(c.Category), r.Type, string(defaultCategory)))
	c.PrimaryText = firstNonEmpty(c.PrimaryText, r.Word, r.Structure)
	c.SecondaryText = firstNonEmpty(c.SecondaryText, r.Meaning, r.Explanation)
	c.Note = firstNonEmpty(c.Note, r.ExampleOrExplanation)
	return c
}

// ParseJSON reads a JSON array of records. It is all or nothing: malformed
// JSON, trailing data, or any record that fails validation returns a
// *ParseError and no candidates. IDs and timestamps in the input are ignored.
func ParseJSON(r io.Reader, defaultCategory notes.Category) ([]notes.Candidate, error) {
	dec := json.NewDecoder(r)

	var records []importRecord
	if err := dec.Decode(&records); err != nil {
		return nil, &ParseError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("unexpected data after the top-level array")}
	}

	candidates := make([]notes.Candidate, 0, len(records))
	for i, rec := range records {
		c := rec.candidate(defaultCategory)
		body, err := c.Body()
		if err != nil {
			return nil, &ParseError{Err: &notes.BatchError{Index: i, Err: err}}
		}
		c.Category = body.Category()
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// WriteJSON writes the full sequence, IDs and timestamps included, as an
// indented JSON array.
func WriteJSON(w io.Writer, ns []notes.Note) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(notes.ToRecords(ns)); err != nil {
		return fmt.Errorf("write json export: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
