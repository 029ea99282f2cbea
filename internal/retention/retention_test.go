package retention

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestvault/nestvault/internal/backup"
	"github.com/nestvault/nestvault/internal/logging"
	"github.com/nestvault/nestvault/internal/storage"
)

func record(db string, age time.Duration, now time.Time) backup.RemoteArtifact {
	at := now.Add(-age).Truncate(time.Second)
	return backup.RemoteArtifact{
		Key:       backup.FormatKey(db, at, backup.ExtPostgres),
		Database:  db,
		CreatedAt: at,
	}
}

func TestExpiredSelectsStrictlyOlderThanCutoff(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := []backup.RemoteArtifact{
		record("db", 10*24*time.Hour, now),
		record("db", 5*24*time.Hour, now),
		record("db", 24*time.Hour, now),
	}

	expired := Expired(records, 7, now)

	require.Len(t, expired, 1)
	assert.Equal(t, records[0].Key, expired[0].Key)
}

func TestExpiredExactCutoffIsRetained(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	records := []backup.RemoteArtifact{record("db", 7*24*time.Hour, now)}

	assert.Empty(t, Expired(records, 7, now))
}

func TestExpiredEmptyInput(t *testing.T) {
	now := time.Now().UTC()
	assert.Empty(t, Expired(nil, 7, now))
}

// sweepStore is an in-memory storage adapter for sweep tests. Keys in fail
// refuse deletion.
type sweepStore struct {
	objects map[string]time.Time
	deleted []string
	fail    map[string]bool
}

func (s *sweepStore) Name() string { return "mem" }

func (s *sweepStore) Upload(context.Context, string, string) error { return nil }

func (s *sweepStore) List(_ context.Context, prefix string) ([]storage.Object, error) {
	var out []storage.Object
	for key, mod := range s.objects {
		out = append(out, storage.Object{Key: key, LastModified: mod})
	}
	return out, nil
}

func (s *sweepStore) Download(context.Context, string, string) error { return nil }

func (s *sweepStore) Delete(_ context.Context, key string) error {
	if s.fail[key] {
		return errors.New("access denied")
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func TestSweepDeletesOnlyExpired(t *testing.T) {
	now := time.Now().UTC()
	old := record("mydb", 10*24*time.Hour, now)
	mid := record("mydb", 5*24*time.Hour, now)
	fresh := record("mydb", 24*time.Hour, now)

	store := &sweepStore{objects: map[string]time.Time{
		old.Key:   old.CreatedAt,
		mid.Key:   mid.CreatedAt,
		fresh.Key: fresh.CreatedAt,
	}}

	deleted, err := Sweep(context.Background(), store, "mydb", 7, logging.New(io.Discard, "ERROR"))
	require.NoError(t, err)

	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{old.Key}, store.deleted)
	assert.Contains(t, store.objects, mid.Key)
	assert.Contains(t, store.objects, fresh.Key)
}

func TestSweepContinuesPastDeleteFailures(t *testing.T) {
	now := time.Now().UTC()
	first := record("mydb", 12*24*time.Hour, now)
	second := record("mydb", 10*24*time.Hour, now)
	fresh := record("mydb", 24*time.Hour, now)

	store := &sweepStore{
		objects: map[string]time.Time{
			first.Key:  first.CreatedAt,
			second.Key: second.CreatedAt,
			fresh.Key:  fresh.CreatedAt,
		},
		fail: map[string]bool{first.Key: true},
	}

	deleted, err := Sweep(context.Background(), store, "mydb", 7, logging.New(io.Discard, "ERROR"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), first.Key)

	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{second.Key}, store.deleted)
	assert.Contains(t, store.objects, first.Key, "failed key stays for the next sweep")
	assert.Contains(t, store.objects, fresh.Key)
}

func TestSweepIgnoresForeignKeys(t *testing.T) {
	store := &sweepStore{objects: map[string]time.Time{
		"mydb_notes.txt": time.Now().Add(-30 * 24 * time.Hour),
	}}

	deleted, err := Sweep(context.Background(), store, "mydb", 7, logging.New(io.Discard, "ERROR"))
	require.NoError(t, err)

	assert.Zero(t, deleted)
	assert.Empty(t, store.deleted)
}
