package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabnotes/internal/impex"
	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
)

var (
	_ service.Persistence = (*Store)(nil)
	_ service.Watcher     = (*Store)(nil)
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "notes.json"))
	require.NoError(t, err)
	return s
}

func note(id, word, meaning string) notes.Note {
	return notes.Note{
		ID:        id,
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Body:      notes.Vocabulary{Word: word, Meaning: meaning},
	}
}

func ids(ns []notes.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	all, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, note("a", "apple", "quả táo")))
	require.NoError(t, s.CreateMany(ctx, []notes.Note{note("b", "banana", "quả chuối"), note("c", "cherry", "quả anh đào")}))

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))
	assert.Equal(t, note("a", "apple", "quả táo"), all[0])

	require.NoError(t, s.Update(ctx, note("b", "banana", "trái chuối")))
	require.NoError(t, s.Reorder(ctx, []string{"c", "b", "a"}))
	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"), "deleting a missing note is a no-op")

	all, err = s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(all))
	assert.Equal(t, "trái chuối", all[1].SecondaryText())

	require.NoError(t, s.DeleteMany(ctx, []string{"b", "c"}))
	all, err = s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_UpdateMissing(t *testing.T) {
	s := newTestStore(t)
	err := s.Update(context.Background(), note("x", "apple", "quả táo"))
	assert.ErrorIs(t, err, notes.ErrNotFound)
}

func TestStore_CreateManyIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, note("a", "apple", "quả táo")))

	err := s.CreateMany(ctx, []notes.Note{note("b", "banana", "quả chuối"), note("a", "again", "lại")})
	require.Error(t, err)

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(all))
}

func TestStore_ReorderKeepsUnlistedAtEnd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateMany(ctx, []notes.Note{
		note("a", "apple", "quả táo"),
		note("b", "banana", "quả chuối"),
		note("c", "cherry", "quả anh đào"),
	}))

	require.NoError(t, s.Reorder(ctx, []string{"c", "a"}))
	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(all))
}

func TestStore_FileIsJSONExportFormat(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, note("a", "apple", "quả táo")))

	f, err := os.Open(s.Path())
	require.NoError(t, err)
	defer f.Close()

	candidates, err := impex.ParseJSON(f, notes.CategoryVocabulary)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "apple", candidates[0].PrimaryText)
}

func TestStore_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"id":"a","category":"vocabulary"`), 0o644))

	_, err := s.LoadAll(context.Background())
	assert.Error(t, err)

	err = s.Create(context.Background(), note("b", "banana", "quả chuối"))
	assert.Error(t, err, "a corrupt file is never overwritten")
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Create(ctx, note(string(rune('a'+i)), "word", "nghĩa")))
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover temp file %s", e.Name())
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, note("a", "apple", "quả táo")))

	var (
		mu      sync.Mutex
		batches [][]notes.Note
	)
	stop, err := s.Subscribe(ctx, func(ns []notes.Note) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, ns)
	})
	require.NoError(t, err)
	defer stop()

	// Own writes are not reported
	require.NoError(t, s.Create(ctx, note("b", "banana", "quả chuối")))
	time.Sleep(4 * DebounceInterval)
	mu.Lock()
	assert.Empty(t, batches)
	mu.Unlock()

	// Another writer replaces the file
	other, err := New(s.Path())
	require.NoError(t, err)
	require.NoError(t, other.Create(ctx, note("c", "cherry", "quả anh đào")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	last := batches[len(batches)-1]
	mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, ids(last))
}

func TestStore_SubscribeStop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	called := make(chan struct{}, 1)
	stop, err := s.Subscribe(ctx, func([]notes.Note) {
		select {
		case called <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	stop()
	stop()

	other, err := New(s.Path())
	require.NoError(t, err)
	require.NoError(t, other.Create(ctx, note("a", "apple", "quả táo")))

	select {
	case <-called:
		t.Fatal("onChange called after stop")
	case <-time.After(4 * DebounceInterval):
	}
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(filepath.Dir(s.Path())))
	assert.Error(t, s.Ping(context.Background()))
}
