// Package jsonfile persists the note sequence as a single JSON document and
// pushes changes made to that file by other processes.
package jsonfile

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"vocabnotes/internal/notes"
)

// TempFilePrefix is the prefix used for temporary atomic write files.
const TempFilePrefix = "vocabnotes-tmp-"

// Store keeps the whole sequence in one file, in the same array-of-records
// shape the JSON export uses. Every mutation rewrites the file atomically.
type Store struct {
	path string

	mu sync.Mutex
	// lastWritten is the digest of the last content this Store wrote, so the
	// watcher can skip its own writes.
	lastWritten [sha256.Size]byte
}

// New returns a Store backed by path. The parent directory is created if
// needed; the file itself is created on first write.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Ping reports whether the store directory is reachable.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("failed to stat store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

// LoadAll returns every stored note in sequence order. A missing file is an
// empty sequence.
func (s *Store) LoadAll(ctx context.Context) ([]notes.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Create appends n.
func (s *Store) Create(ctx context.Context, n notes.Note) error {
	return s.CreateMany(ctx, []notes.Note{n})
}

// CreateMany appends ns in order. Nothing is written if any ID is taken.
func (s *Store) CreateMany(ctx context.Context, ns []notes.Note) error {
	return s.modify(func(all []notes.Note) ([]notes.Note, error) {
		for _, n := range ns {
			if indexOf(all, n.ID) >= 0 {
				return nil, fmt.Errorf("note %s already exists", n.ID)
			}
			all = append(all, n)
		}
		return all, nil
	})
}

// Update overwrites the body of n. It returns a *notes.NotFoundError when no
// stored note has n's ID.
func (s *Store) Update(ctx context.Context, n notes.Note) error {
	return s.modify(func(all []notes.Note) ([]notes.Note, error) {
		i := indexOf(all, n.ID)
		if i < 0 {
			return nil, &notes.NotFoundError{ID: n.ID}
		}
		all[i].Body = n.Body
		return all, nil
	})
}

// Delete removes the note with id. Deleting a missing note is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes every note in ids.
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	return s.modify(func(all []notes.Note) ([]notes.Note, error) {
		return slices.DeleteFunc(all, func(n notes.Note) bool {
			return slices.Contains(ids, n.ID)
		}), nil
	})
}

// Reorder stores the notes in the order of ids. Stored notes missing from
// ids keep their relative order after the listed ones.
func (s *Store) Reorder(ctx context.Context, ids []string) error {
	return s.modify(func(all []notes.Note) ([]notes.Note, error) {
		rank := make(map[string]int, len(ids))
		for i, id := range ids {
			rank[id] = i
		}
		slices.SortStableFunc(all, func(a, b notes.Note) int {
			ra, okA := rank[a.ID]
			rb, okB := rank[b.ID]
			switch {
			case okA && okB:
				return ra - rb
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		})
		return all, nil
	})
}

// modify runs a read-modify-write cycle under the store lock.
func (s *Store) modify(fn func([]notes.Note) ([]notes.Note, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all, err = fn(all)
	if err != nil {
		return err
	}
	return s.write(all)
}

func (s *Store) read() ([]notes.Note, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return decode(data)
}

func (s *Store) write(all []notes.Note) error {
	data, err := encode(all)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return err
	}
	s.lastWritten = sha256.Sum256(data)
	return nil
}

// ownWrite reports whether data is what this Store last wrote.
func (s *Store) ownWrite(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sha256.Sum256(data) == s.lastWritten
}

func decode(data []byte) ([]notes.Note, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []notes.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode notes file: %w", err)
	}

	out := make([]notes.Note, 0, len(records))
	for i, rec := range records {
		n, err := notes.FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("invalid stored note at index %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func encode(all []notes.Note) ([]byte, error) {
	data, err := json.MarshalIndent(notes.ToRecords(all), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode notes file: %w", err)
	}
	return append(data, '\n'), nil
}

func indexOf(all []notes.Note, id string) int {
	return slices.IndexFunc(all, func(n notes.Note) bool { return n.ID == id })
}

// writeFileAtomic writes data to a file atomically by writing to a temp file
// and then renaming it to the target filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
