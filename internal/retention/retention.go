package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/backup"
	"github.com/nestvault/nestvault/internal/storage"
)

// Expired returns the records strictly older than now - retentionDays.
// Split out from Sweep so the cutoff arithmetic is testable with a fixed
// clock.
func Expired(records []backup.RemoteArtifact, retentionDays int, now time.Time) []backup.RemoteArtifact {
	cutoff := now.UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	var expired []backup.RemoteArtifact
	for _, r := range records {
		if r.CreatedAt.Before(cutoff) {
			expired = append(expired, r)
		}
	}
	return expired
}

// Sweep deletes every artifact of the database older than the retention
// window. It runs after a successful upload, so the listing it works from
// already contains the cycle's new artifact and the cutoff can never select
// it. The deleted count is reported even on partial failure.
func Sweep(ctx context.Context, store storage.Adapter, database string, retentionDays int, logger *log.Logger) (int, error) {
	logger = logger.WithPrefix("retention")
	logger.Info("starting retention sweep", "database", database, "retention_days", retentionDays)

	records, err := storage.ListBackups(ctx, store, database)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}

	expired := Expired(records, retentionDays, time.Now().UTC())
	if len(expired) == 0 {
		logger.Info("no expired backups")
		return 0, nil
	}

	// A failed delete leaves the key for the next sweep; the remaining
	// expired keys are still attempted.
	deleted := 0
	var errs []error
	for _, r := range expired {
		if err := store.Delete(ctx, r.Key); err != nil {
			logger.Warn("failed to delete expired backup", "key", r.Key, "err", err)
			errs = append(errs, fmt.Errorf("delete %s: %w", r.Key, err))
			continue
		}
		logger.Debug("deleted expired backup", "key", r.Key)
		deleted++
	}

	logger.Info("retention sweep completed", "deleted", deleted, "kept", len(records)-deleted)
	if len(errs) > 0 {
		return deleted, fmt.Errorf("retention sweep: %w", errors.Join(errs...))
	}
	return deleted, nil
}
