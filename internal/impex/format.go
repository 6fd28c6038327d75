// Package impex reads and writes notes in the two exchange formats: a
// line-oriented text format and a structured JSON format.
package impex

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format is an exchange format.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for formats other than text and JSON.
var ErrUnsupportedFormat = errors.New("unsupported format: only .txt or .json")

// ParseFormat accepts "txt", "text" and "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text", "text/plain":
		return FormatText, nil
	case "json", "application/json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// FileName returns the download name used for exports taken at t.
func FileName(f Format, t time.Time) string {
	return fmt.Sprintf("english-notes-%s.%s", t.UTC().Format("20060102-150405"), f)
}
