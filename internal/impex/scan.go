package impex

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ScannedFile is an importable file found under a directory.
type ScannedFile struct {
	RelPath string // Relative path from the scanned root, with forward slashes
	AbsPath string
	Format  Format
}

// ScanDir walks root and returns every .txt and .json file in lexical order.
// Hidden directories are skipped, as are files left behind by interrupted
// atomic writes.
func ScanDir(ctx context.Context, root string, skipPrefix string) ([]ScannedFile, error) {
	var scanned []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if skipPrefix != "" && strings.HasPrefix(name, skipPrefix) {
			return nil
		}

		format, err := FormatFromPath(path)
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		scanned = append(scanned, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
			Format:  format,
		})
		return nil
	})
	if err != nil {
		return scanned, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(scanned, func(i, j int) bool { return scanned[i].RelPath < scanned[j].RelPath })
	return scanned, nil
}
