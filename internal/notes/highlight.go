package notes

import (
	"strings"
)

// Segment is one span of highlighted text. Concatenating the Text of every
// segment returned by Highlight reproduces the input exactly.
type Segment struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized"`
}

// Highlight splits text into alternating plain and emphasized segments,
// emphasizing every occurrence of term under diacritic- and case-insensitive
// matching. Occurrences are found left to right and never overlap. Empty
// text has no segments.
//
// Matching runs on a folded copy of text built rune by rune, so every folded
// byte knows which original rune produced it. Removing combining marks
// shortens the folded copy; offsets are mapped back through that table rather
// than reused directly.
func Highlight(text, term string) []Segment {
	if text == "" {
		return nil
	}
	needle := foldKey(term)
	if needle == "" {
		return []Segment{{Text: text}}
	}

	f := newFoldMap(text)
	spans := f.find(needle)
	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}

	segments := make([]Segment, 0, 2*len(spans)+1)
	prev := 0
	for _, sp := range spans {
		if sp.start > prev {
			segments = append(segments, Segment{Text: text[prev:sp.start]})
		}
		segments = append(segments, Segment{Text: text[sp.start:sp.end], Emphasized: true})
		prev = sp.end
	}
	if prev < len(text) {
		segments = append(segments, Segment{Text: text[prev:]})
	}
	return segments
}

type span struct {
	start, end int
}

// foldMap is text folded rune by rune with a back-reference from each folded
// byte to the index of the original rune.
type foldMap struct {
	folded string
	owner  []int // folded byte -> rune index
	starts []int // rune index -> byte offset in the original; len(runes)+1 entries
	empty  []bool
}

func newFoldMap(text string) *foldMap {
	f := &foldMap{}
	var b strings.Builder
	b.Grow(len(text))
	for off, r := range text {
		idx := len(f.starts)
		f.starts = append(f.starts, off)
		piece := foldKey(string(r))
		f.empty = append(f.empty, piece == "")
		b.WriteString(piece)
		for i := 0; i < len(piece); i++ {
			f.owner = append(f.owner, idx)
		}
	}
	f.starts = append(f.starts, len(text))
	f.folded = b.String()
	return f
}

// find locates needle in the folded text and returns the original byte spans,
// each widened to whole runes plus any combining marks that follow.
func (f *foldMap) find(needle string) []span {
	var spans []span
	lastRune := 0
	pos := 0
	for pos < len(f.folded) {
		i := strings.Index(f.folded[pos:], needle)
		if i < 0 {
			break
		}
		from := pos + i
		to := from + len(needle)
		pos = to

		first := max(f.owner[from], lastRune)
		last := f.owner[to-1]
		if first > last {
			continue
		}
		for last+1 < len(f.empty) && f.empty[last+1] {
			last++
		}
		spans = append(spans, span{start: f.starts[first], end: f.starts[last+1]})
		lastRune = last + 1
	}
	return spans
}
