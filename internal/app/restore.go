package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nestvault/nestvault/internal/backup"
	"github.com/nestvault/nestvault/internal/storage"
)

// ListBackups returns the remote artifacts for the protected database,
// newest first. An empty bucket yields an empty slice.
func (a *App) ListBackups(ctx context.Context) ([]backup.RemoteArtifact, error) {
	return storage.ListBackups(ctx, a.store, a.db.DatabaseName())
}

// RestoreLatest restores the most recent available backup.
func (a *App) RestoreLatest(ctx context.Context) error {
	records, err := a.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no backups found for database %s", a.db.DatabaseName())
	}

	a.log.Info("restoring latest backup", "key", records[0].Key, "available", len(records))
	return a.restore(ctx, records[0].Key)
}

// RestoreBackup restores a caller-named backup. The key must appear in the
// current listing; otherwise the error wraps storage.ErrNotFound.
func (a *App) RestoreBackup(ctx context.Context, key string) error {
	records, err := a.ListBackups(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, r := range records {
		if r.Key == key {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("backup %s: %w", key, storage.ErrNotFound)
	}

	return a.restore(ctx, key)
}

// restore downloads the artifact into a scoped temp dir and hands it to the
// backup adapter. The temp dir is removed on every exit path, and the run
// lock guarantees no backup cycle is in flight against the same database.
func (a *App) restore(ctx context.Context, key string) error {
	if !a.runMu.TryLock() {
		return fmt.Errorf("another backup or restore operation is in progress")
	}
	defer a.runMu.Unlock()

	dir, err := os.MkdirTemp("", "nestvault-restore-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	localPath := filepath.Join(dir, filepath.Base(key))
	if err := a.store.Download(ctx, key, localPath); err != nil {
		return err
	}

	if err := a.db.Restore(ctx, localPath); err != nil {
		return err
	}

	a.log.Info("restore completed", "key", key)
	return nil
}
