package localstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestvault/nestvault/internal/logging"
	"github.com/nestvault/nestvault/internal/storage"
)

func newTestStore(t *testing.T) (*Storage, string) {
	t.Helper()
	base := t.TempDir()
	return New("local", base, logging.New(io.Discard, "ERROR")), base
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	src := writeSource(t, "snapshot-bytes")
	require.NoError(t, store.Upload(ctx, src, "mydb_20260830_120000.sql.gz"))

	dst := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, store.Download(ctx, "mydb_20260830_120000.sql.gz", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-bytes", string(got))
}

func TestUploadOverwritesExistingKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, writeSource(t, "v1"), "key"))
	require.NoError(t, store.Upload(ctx, writeSource(t, "v2"), "key"))

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, store.Download(ctx, "key", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestListFiltersByPrefixAndSkipsTmp(t *testing.T) {
	store, base := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, writeSource(t, "a"), "mydb_20260830_120000.sql.gz"))
	require.NoError(t, store.Upload(ctx, writeSource(t, "b"), "otherdb_20260830_120000.sql.gz"))
	require.NoError(t, os.WriteFile(filepath.Join(base, "mydb_stale.tmp"), []byte("x"), 0o644))

	objects, err := store.List(ctx, "mydb")
	require.NoError(t, err)

	require.Len(t, objects, 1)
	assert.Equal(t, "mydb_20260830_120000.sql.gz", objects[0].Key)
}

func TestListMissingBaseDirIsEmpty(t *testing.T) {
	store := New("local", filepath.Join(t.TempDir(), "never-created"), logging.New(io.Discard, "ERROR"))

	objects, err := store.List(context.Background(), "mydb")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestDownloadMissingKeyIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Download(context.Background(), "absent", filepath.Join(t.TempDir(), "out"))
	assert.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, writeSource(t, "a"), "key"))
	require.NoError(t, store.Delete(ctx, "key"))
	require.NoError(t, store.Delete(ctx, "key"))
}
