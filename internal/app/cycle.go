package app

import (
	"context"
	"os"
	"time"

	"github.com/nestvault/nestvault/internal/notify"
	"github.com/nestvault/nestvault/internal/retention"
)

const notificationTimeout = 5 * time.Second

// RunCycle executes one backup cycle if no other operation holds the run
// lock. It reports whether the cycle actually started; a skipped tick is not
// an error.
func (a *App) RunCycle(ctx context.Context) (bool, error) {
	if !a.runMu.TryLock() {
		return false, nil
	}
	defer a.runMu.Unlock()

	return true, a.runCycle(ctx)
}

// runCycle is dump → upload → local cleanup → retention sweep, in that
// order. The sweep only ever sees a listing taken after the new upload
// succeeded, so the cycle's own artifact is never a deletion candidate.
// Caller holds the run lock.
func (a *App) runCycle(ctx context.Context) error {
	logger := a.log.WithPrefix("cycle")
	started := time.Now()

	dir, err := os.MkdirTemp("", "nestvault-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	art, err := a.db.Dump(ctx, dir)
	if err != nil {
		a.notifyResult(ctx, notify.Event{
			Database: a.db.DatabaseName(),
			Status:   notify.StatusFailure,
			Duration: time.Since(started).Round(time.Millisecond).String(),
			Error:    err.Error(),
		})
		return err
	}

	size := int64(0)
	if info, statErr := os.Stat(art.LocalPath); statErr == nil {
		size = info.Size()
	}

	uploadErr := a.store.Upload(ctx, art.LocalPath, art.Key)

	// The dump is deleted whether or not the upload succeeded; local disk
	// must never accumulate snapshots.
	_ = os.Remove(art.LocalPath)

	if uploadErr != nil {
		a.notifyResult(ctx, notify.Event{
			Database: art.Database,
			Status:   notify.StatusFailure,
			Key:      art.Key,
			Duration: time.Since(started).Round(time.Millisecond).String(),
			Error:    uploadErr.Error(),
		})
		return uploadErr
	}

	// An aborted cycle skips the sweep entirely.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Sweep failures never abort the cycle or the ones after it; the next
	// scheduled run retries naturally.
	if _, err := retention.Sweep(ctx, a.store, art.Database, a.cfg.RetentionDays, a.log); err != nil {
		logger.Error("retention sweep failed", "err", err)
	}

	logger.Info("backup cycle completed",
		"database", art.Database,
		"key", art.Key,
		"bytes", size,
		"duration", time.Since(started).Round(time.Millisecond),
	)

	a.notifyResult(ctx, notify.Event{
		Database: art.Database,
		Status:   notify.StatusSuccess,
		Key:      art.Key,
		Bytes:    size,
		Duration: time.Since(started).Round(time.Millisecond).String(),
	})
	return nil
}

func (a *App) notifyResult(ctx context.Context, event notify.Event) {
	notifyCtx, cancel := notificationContext(ctx)
	defer cancel()

	if err := a.notify.Notify(notifyCtx, event); err != nil {
		a.log.Warn("notification failed", "database", event.Database, "status", event.Status, "err", err)
	}
}

// notificationContext detaches from the parent's cancellation so a failure
// notice still goes out when the cycle was canceled, but bounds it with its
// own timeout.
func notificationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), notificationTimeout)
	}
	return context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
}
