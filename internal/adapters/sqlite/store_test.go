package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stash.db")
	s, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesSchemaAtLatestVersion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, LatestVersion, v)

	ok, err := hasColumn(ctx, s.db, "hidden_files", "category")
	require.NoError(t, err)
	assert.True(t, ok, "category column should exist")

	ok, err = hasIndex(ctx, s.db, "idx_hidden_files_category")
	require.NoError(t, err)
	assert.True(t, ok, "category index should exist")
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "stash.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := s.Add(ctx, domain.NewFile{Name: "a.txt", MimeType: "text/plain", Payload: []byte("a")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a.txt", got.Name)
}

func TestOpen_UnavailableWhenDirectoryCannotBeCreated(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := Open(context.Background(), filepath.Join(blocker, "stash.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestAdd_GetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	in := domain.NewFile{
		Name:                "song.mp3",
		MimeType:            "audio/mpeg",
		LastModifiedEpochMs: 1700000000123,
		Payload:             []byte{0x49, 0x44, 0x33, 0x04, 0x00},
	}

	id, err := s.Add(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.MimeType, got.MimeType)
	assert.Equal(t, int64(len(in.Payload)), got.SizeBytes)
	assert.Equal(t, in.LastModifiedEpochMs, got.LastModifiedEpochMs)
	assert.Equal(t, in.Payload, got.Payload)
	assert.Equal(t, domain.Classify(in.MimeType), got.Category)
}

func TestAdd_IDsAreMonotonicAndNeverReused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Add(ctx, domain.NewFile{Name: "1", Payload: []byte("1")})
	require.NoError(t, err)
	second, err := s.Add(ctx, domain.NewFile{Name: "2", Payload: []byte("2")})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	require.NoError(t, s.Delete(ctx, second))

	third, err := s.Add(ctx, domain.NewFile{Name: "3", Payload: []byte("3")})
	require.NoError(t, err)
	assert.Greater(t, third, second)
}

func TestList_IncludesNewEntryMetadata(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	before, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, before)

	id, err := s.Add(ctx, domain.NewFile{
		Name:     "photo.jpg",
		MimeType: "image/jpeg",
		Payload:  make([]byte, 2048),
	})
	require.NoError(t, err)

	after, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)

	m := after[0]
	assert.Equal(t, id, m.ID)
	assert.Equal(t, "photo.jpg", m.Name)
	assert.Equal(t, int64(2048), m.SizeBytes)
	assert.Equal(t, domain.CategoryImage, m.Category)
}

func TestAdd_CategoryScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fileName string
		mimeType string
		want     domain.Category
		preview  domain.PreviewKind
	}{
		{"jpeg photo", "photo.jpg", "image/jpeg", domain.CategoryImage, domain.PreviewImage},
		{"zip archive", "backup.zip", "application/zip", domain.CategoryOther, domain.PreviewNone},
		{"pdf document", "paper.pdf", "application/pdf", domain.CategoryDocument, domain.PreviewPDF},
		{"empty type", "blob", "", domain.CategoryOther, domain.PreviewNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := openTestStore(t)

			id, err := s.Add(ctx, domain.NewFile{Name: tt.fileName, MimeType: tt.mimeType, Payload: []byte("x")})
			require.NoError(t, err)

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.preview, domain.PreviewKindFor(got.MimeType))
		})
	}
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	got, err := s.Get(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete_RemovesAndIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Add(ctx, domain.NewFile{Name: "gone.bin", Payload: []byte("bye")})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// second delete and unknown ids are no-ops
	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Delete(ctx, 999))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdd_QuotaExceeded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t, WithMaxBytes(10))

	_, err := s.Add(ctx, domain.NewFile{Name: "fits", Payload: make([]byte, 8)})
	require.NoError(t, err)

	_, err = s.Add(ctx, domain.NewFile{Name: "too-big", Payload: make([]byte, 5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "rejected add must not leave a row behind")

	used, err := s.UsageBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), used)
}

func TestWrites_FailAfterClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "stash.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Add(ctx, domain.NewFile{Name: "late"})
	assert.ErrorIs(t, err, domain.ErrWriteFailed)

	err = s.Delete(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrWriteFailed)
}

func TestAdd_ConcurrentCallsYieldDistinctIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	const n = 8
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Add(ctx, domain.NewFile{Name: "c", MimeType: "video/mp4", Payload: []byte("v")})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestOpen_MigratesLegacyDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stash.db")

	legacy, err := Open(ctx, path, withTargetVersion(1))
	require.NoError(t, err)

	v, err := legacy.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	_, err = legacy.db.ExecContext(ctx, `
		INSERT INTO hidden_files (name, mime_type, size_bytes, last_modified_ms, payload)
		VALUES ('old.png', 'image/png', 3, 0, x'010203'),
		       ('old.pdf', 'application/pdf', 1, 0, x'25')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, err = s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, LatestVersion, v)

	ok, err := hasIndex(ctx, s.db, "idx_hidden_files_category")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, m := range list {
		assert.Empty(t, m.Category, "migration must not touch existing rows")
		assert.Equal(t, domain.CategoryOther, m.DisplayCategory())
	}

	n, err := s.Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	byName := map[string]domain.Category{}
	list, err = s.List(ctx)
	require.NoError(t, err)
	for _, m := range list {
		byName[m.Name] = m.Category
	}
	assert.Equal(t, domain.CategoryImage, byName["old.png"])
	assert.Equal(t, domain.CategoryDocument, byName["old.pdf"])

	n, err = s.Backfill(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second backfill has nothing to do")
}

func TestAddCategoryIndex_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	tx, err := s.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, addCategoryIndex(ctx, tx))
	require.NoError(t, addCategoryIndex(ctx, tx))
	require.NoError(t, tx.Commit())
}
