package notes

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is the collation locale used when none is configured.
var DefaultLocale = language.Vietnamese

// sorter orders primary texts with locale-aware, case-insensitive collation.
// A collate.Collator is not safe for concurrent use; Store only calls it
// while holding its write lock.
type sorter struct {
	col *collate.Collator
}

func newSorter(tag language.Tag) *sorter {
	return &sorter{col: collate.New(tag, collate.IgnoreCase)}
}

func (s *sorter) less(a, b string) bool {
	return s.col.CompareString(strings.ToLower(a), strings.ToLower(b)) < 0
}

// sortInPlace reorders the notes of category among the slots they already
// occupy. Notes of other categories keep their absolute index.
func (s *sorter) sortInPlace(ns []Note, category Category) {
	var slots []int
	var group []Note
	for i, n := range ns {
		if n.Category() == category {
			slots = append(slots, i)
			group = append(group, n)
		}
	}
	if len(group) < 2 {
		return
	}
	sort.SliceStable(group, func(i, j int) bool {
		return s.less(group[i].PrimaryText(), group[j].PrimaryText())
	})
	for k, idx := range slots {
		ns[idx] = group[k]
	}
}
