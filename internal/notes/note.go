package notes

import (
	"slices"
	"strings"
	"time"
)

// Note is one stored vocabulary, grammar or idiom entry.
// ID and CreatedAt never change after creation; Body is replaced wholesale on edit.
type Note struct {
	ID        string
	CreatedAt time.Time
	Body      Body
}

// Category returns the category of the note's body.
func (n Note) Category() Category {
	if n.Body == nil {
		return ""
	}
	return n.Body.Category()
}

// PrimaryText returns the headword or grammar structure.
func (n Note) PrimaryText() string {
	if n.Body == nil {
		return ""
	}
	return n.Body.PrimaryText()
}

// SecondaryText returns the meaning or explanation.
func (n Note) SecondaryText() string {
	if n.Body == nil {
		return ""
	}
	return n.Body.SecondaryText()
}

// Body is the category-specific payload of a note.
// The set of implementations is closed: Vocabulary, Grammar and Idiom.
type Body interface {
	Category() Category
	PrimaryText() string
	SecondaryText() string
	NoteText() string
	isBody()
}

// Vocabulary is a word with its meaning.
type Vocabulary struct {
	Word    string
	Meaning string
	Note    string
}

func (Vocabulary) Category() Category      { return CategoryVocabulary }
func (v Vocabulary) PrimaryText() string   { return v.Word }
func (v Vocabulary) SecondaryText() string { return v.Meaning }
func (v Vocabulary) NoteText() string      { return v.Note }
func (Vocabulary) isBody()                 {}

// Grammar is a grammar structure with its explanation, usage examples and hashtags.
type Grammar struct {
	Structure   string
	Explanation string
	Note        string
	Examples    []string
	Tags        []string
}

func (Grammar) Category() Category      { return CategoryGrammar }
func (g Grammar) PrimaryText() string   { return g.Structure }
func (g Grammar) SecondaryText() string { return g.Explanation }
func (g Grammar) NoteText() string      { return g.Note }
func (Grammar) isBody()                 {}

// Idiom is an idiomatic phrase with its meaning.
type Idiom struct {
	Phrase  string
	Meaning string
	Note    string
}

func (Idiom) Category() Category      { return CategoryIdiom }
func (i Idiom) PrimaryText() string   { return i.Phrase }
func (i Idiom) SecondaryText() string { return i.Meaning }
func (i Idiom) NoteText() string      { return i.Note }
func (Idiom) isBody()                 {}

// Examples returns the body's examples; only grammar notes carry any.
func Examples(b Body) []string {
	if g, ok := b.(Grammar); ok {
		return g.Examples
	}
	return nil
}

// Tags returns the body's tags; only grammar notes carry any.
func Tags(b Body) []string {
	if g, ok := b.(Grammar); ok {
		return g.Tags
	}
	return nil
}

// Candidate holds raw field values as entered by a user or read from an import.
// Category may be any alias accepted by ParseCategory.
type Candidate struct {
	Category      Category
	PrimaryText   string
	SecondaryText string
	Note          string
	Examples      []string
	Tags          []string
}

// Body validates the candidate and builds the normalized body for its category.
func (c Candidate) Body() (Body, error) {
	category, err := ParseCategory(string(c.Category))
	if err != nil {
		return nil, err
	}

	primary := strings.TrimSpace(c.PrimaryText)
	secondary := strings.TrimSpace(c.SecondaryText)
	note := strings.TrimSpace(c.Note)

	if primary == "" {
		return nil, &ValidationError{Field: "primaryText", Message: "cannot be empty"}
	}
	if secondary == "" {
		return nil, &ValidationError{Field: "secondaryText", Message: "cannot be empty"}
	}

	switch category {
	case CategoryVocabulary:
		return Vocabulary{Word: primary, Meaning: secondary, Note: note}, nil
	case CategoryGrammar:
		return Grammar{
			Structure:   primary,
			Explanation: secondary,
			Note:        note,
			Examples:    normalizeList(c.Examples),
			Tags:        normalizeTags(c.Tags),
		}, nil
	case CategoryIdiom:
		return Idiom{Phrase: primary, Meaning: secondary, Note: note}, nil
	default:
		return nil, &ValidationError{Field: "category", Message: "unknown category " + string(category)}
	}
}

func noteText(b Body) string {
	if b == nil {
		return ""
	}
	return b.NoteText()
}

func normalizeList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizeTags trims, strips a leading '#', and drops empty and duplicate tags.
func normalizeTags(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "#"))
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cloneNote(n Note) Note {
	if g, ok := n.Body.(Grammar); ok {
		g.Examples = slices.Clone(g.Examples)
		g.Tags = slices.Clone(g.Tags)
		n.Body = g
	}
	return n
}

func cloneNotes(in []Note) []Note {
	out := make([]Note, len(in))
	for i, n := range in {
		out[i] = cloneNote(n)
	}
	return out
}
