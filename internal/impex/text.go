package impex

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"vocabnotes/internal/notes"
)

// Delimiter separates fields in the text format:
//
//	primary | secondary | category | note
//
// category and note are optional; note runs to the end of the line, so a bare
// delimiter inside it is literal text. A literal delimiter in any field is
// written as \| and a literal backslash as \\; any other backslash is kept
// as is.
const Delimiter = "|"

const escape = `\`

const maxLineSize = 1 << 20

// SkippedLine records a text line that was not imported.
type SkippedLine struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// TextReport summarizes a text import. Total counts non-blank lines only.
type TextReport struct {
	Total    int           `json:"total"`
	Imported int           `json:"imported"`
	Skipped  []SkippedLine `json:"skipped,omitempty"`
}

// ParseText reads candidates from the text format. Lines without a delimiter,
// with blank required fields or with an unknown category are skipped and
// reported; they never fail the whole read. defaultCategory fills in lines
// that omit the category field. The returned error is only for read failures.
func ParseText(r io.Reader, defaultCategory notes.Category) ([]notes.Candidate, TextReport, error) {
	var (
		candidates []notes.Candidate
		report     TextReport
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		report.Total++

		c, err := parseLine(line, defaultCategory)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedLine{Line: lineNo, Reason: err.Error()})
			continue
		}
		candidates = append(candidates, c)
	}
	if err := sc.Err(); err != nil {
		return nil, TextReport{}, fmt.Errorf("read text import: %w", err)
	}

	report.Imported = len(candidates)
	return candidates, report, nil
}

func parseLine(line string, defaultCategory notes.Category) (notes.Candidate, error) {
	fields := splitFields(line, 4)
	if len(fields) < 2 {
		return notes.Candidate{}, fmt.Errorf("missing %q delimiter", Delimiter)
	}

	c := notes.Candidate{
		Category:      defaultCategory,
		PrimaryText:   fields[0],
		SecondaryText: fields[1],
	}
	if len(fields) > 2 && fields[2] != "" {
		c.Category = notes.Category(fields[2])
	}
	if len(fields) > 3 {
		c.Note = fields[3]
	}

	body, err := c.Body()
	if err != nil {
		return notes.Candidate{}, err
	}
	c.Category = body.Category()
	return c, nil
}

// splitFields splits line on unescaped delimiters into at most n trimmed
// fields, resolving escapes. The last field takes the rest of the line, where
// a bare delimiter is literal text.
func splitFields(line string, n int) []string {
	var (
		fields []string
		b      strings.Builder
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == escape[0] && i+1 < len(line) && (line[i+1] == Delimiter[0] || line[i+1] == escape[0]):
			b.WriteByte(line[i+1])
			i++
		case ch == Delimiter[0] && len(fields) < n-1:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	return append(fields, strings.TrimSpace(b.String()))
}

// escapeField protects backslashes and delimiters so splitFields reads the
// field back unchanged.
func escapeField(s string) string {
	s = strings.ReplaceAll(s, escape, escape+escape)
	return strings.ReplaceAll(s, Delimiter, escape+Delimiter)
}

// WriteText writes one line per note in sequence order.
func WriteText(w io.Writer, ns []notes.Note) error {
	bw := bufio.NewWriter(w)
	for _, n := range ns {
		fields := []string{
			escapeField(oneLine(n.PrimaryText())),
			escapeField(oneLine(n.SecondaryText())),
			string(n.Category()),
		}
		if note := oneLine(n.Body.NoteText()); note != "" {
			fields = append(fields, escapeField(note))
		}
		if _, err := bw.WriteString(strings.Join(fields, " "+Delimiter+" ") + "\n"); err != nil {
			return fmt.Errorf("write text export: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write text export: %w", err)
	}
	return nil
}

// oneLine collapses whitespace runs, line breaks included, so a field cannot
// split a record.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
