package notes

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeForSearch prepares text for diacritic-insensitive comparison:
//   - decomposes to NFD
//   - drops combining diacritical marks (U+0300–U+036F)
//   - maps the stroked letters đ/Đ to d/D
//
// Case is preserved. The result is for comparison only, never for display.
func NormalizeForSearch(text string) string {
	if text == "" {
		return ""
	}
	decomposed := norm.NFD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if isCombiningDiacritic(r) {
			continue
		}
		b.WriteRune(baseLetter(r))
	}
	return b.String()
}

// foldKey is the lower-cased search form used on both sides of every match.
func foldKey(text string) string {
	return strings.ToLower(NormalizeForSearch(text))
}

func isCombiningDiacritic(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

func baseLetter(r rune) rune {
	switch r {
	case 'đ':
		return 'd'
	case 'Đ':
		return 'D'
	}
	return r
}
