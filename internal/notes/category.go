package notes

import (
	"strings"
)

// Category partitions notes into independent sort/filter groups.
type Category string

const (
	CategoryVocabulary Category = "vocabulary"
	CategoryGrammar    Category = "grammar"
	CategoryIdiom      Category = "idiom"
)

// Categories lists the known categories in display order.
var Categories = []Category{CategoryVocabulary, CategoryGrammar, CategoryIdiom}

// categoryAliases maps folded aliases (see foldKey) to their category.
// The Vietnamese labels come from exports of the older web app.
var categoryAliases = map[string]Category{
	"vocabulary": CategoryVocabulary,
	"vocab":      CategoryVocabulary,
	"word":       CategoryVocabulary,
	"tu vung":    CategoryVocabulary,
	"grammar":    CategoryGrammar,
	"ngu phap":   CategoryGrammar,
	"idiom":      CategoryIdiom,
	"thanh ngu":  CategoryIdiom,
}

// ParseCategory resolves a category name or alias. Matching ignores case,
// surrounding whitespace and diacritics.
func ParseCategory(s string) (Category, error) {
	key := strings.Join(strings.Fields(foldKey(s)), " ")
	if key == "" {
		return "", &ValidationError{Field: "category", Message: "cannot be empty"}
	}
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", &ValidationError{Field: "category", Message: "unknown category " + strings.TrimSpace(s)}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVocabulary, CategoryGrammar, CategoryIdiom:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
