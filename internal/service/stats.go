package service

import (
	"context"
	"sort"
	"strings"

	"vocabnotes/internal/notes"
)

// Stats summarizes the note sequence.
type Stats struct {
	// Total is the number of notes across all categories.
	Total int `json:"total"`
	// ByCategory counts notes per category; every known category is present.
	ByCategory map[notes.Category]int `json:"by_category"`
	// WithNote is the number of notes that carry an example or explanation.
	WithNote int `json:"with_note"`
	// TopTags lists the most used grammar tags, most frequent first.
	TopTags []TagCount `json:"top_tags,omitempty"`
}

// TagCount is the number of notes carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

const maxTopTags = 10

func (s *noteService) Stats(ctx context.Context) Stats {
	return computeStats(s.store.All())
}

func computeStats(all []notes.Note) Stats {
	st := Stats{
		Total:      len(all),
		ByCategory: make(map[notes.Category]int, len(notes.Categories)),
	}
	for _, c := range notes.Categories {
		st.ByCategory[c] = 0
	}

	tagCounts := make(map[string]*TagCount)
	for _, n := range all {
		st.ByCategory[n.Category()]++
		if n.Body.NoteText() != "" {
			st.WithNote++
		}
		for _, tag := range notes.Tags(n.Body) {
			key := strings.ToLower(tag)
			tc, ok := tagCounts[key]
			if !ok {
				tc = &TagCount{Tag: tag}
				tagCounts[key] = tc
			}
			tc.Count++
		}
	}

	for _, tc := range tagCounts {
		st.TopTags = append(st.TopTags, *tc)
	}
	sort.Slice(st.TopTags, func(i, j int) bool {
		if st.TopTags[i].Count != st.TopTags[j].Count {
			return st.TopTags[i].Count > st.TopTags[j].Count
		}
		return st.TopTags[i].Tag < st.TopTags[j].Tag
	})
	if len(st.TopTags) > maxTopTags {
		st.TopTags = st.TopTags[:maxTopTags]
	}
	return st
}
