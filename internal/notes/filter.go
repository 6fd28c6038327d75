package notes

import (
	"strings"
)

// Filter returns the notes of category whose primary and secondary text
// contain term, ignoring case and diacritics. An empty term matches every
// note in the category. Input order is preserved.
func Filter(ns []Note, category Category, term string) []Note {
	needle := foldKey(term)
	var out []Note
	for _, n := range ns {
		if n.Category() != category {
			continue
		}
		if needle != "" && !matches(n, needle) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// matches reports whether the folded needle occurs in n's searchable text.
func matches(n Note, needle string) bool {
	return strings.Contains(foldKey(n.PrimaryText()+" "+n.SecondaryText()), needle)
}

// FilterByTag keeps the notes carrying tag. A leading '#' on tag is ignored,
// as is case. An empty tag keeps everything.
func FilterByTag(ns []Note, tag string) []Note {
	tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return ns
	}
	var out []Note
	for _, n := range ns {
		for _, t := range Tags(n.Body) {
			if strings.EqualFold(t, tag) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
