package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/backup"
	"github.com/nestvault/nestvault/internal/config"
	"github.com/nestvault/nestvault/internal/notify"
	"github.com/nestvault/nestvault/internal/storage"
	b2store "github.com/nestvault/nestvault/internal/storage/b2"
	localstore "github.com/nestvault/nestvault/internal/storage/local"
	s3store "github.com/nestvault/nestvault/internal/storage/s3"
)

// App holds everything one NestVault process needs: the validated config,
// the adapter pair chosen at startup, and the run lock that keeps the
// scheduler loop and out-of-band restores from overlapping. There is no
// global state; everything flows through here.
type App struct {
	cfg    *config.Config
	db     backup.Adapter
	store  storage.Adapter
	notify *notify.Dispatcher
	log    *log.Logger

	// runMu is the single-active-operation invariant: one backup cycle or
	// one restore at a time, never both.
	runMu sync.Mutex
}

func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	db, err := backup.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := newStorageAdapter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	dispatcher, err := notify.NewDispatcher(cfg.Notify)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		db:     db,
		store:  store,
		notify: dispatcher,
		log:    logger,
	}, nil
}

func newStorageAdapter(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Adapter, error) {
	retry := storage.DefaultRetryPolicy

	switch cfg.StorageType {
	case config.StorageS3, config.StorageR2:
		return s3store.New(ctx, s3store.Options{
			Name:      cfg.StorageType,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
			Retry:     retry,
			Logger:    logger,
		})
	case config.StorageBackblaze:
		return b2store.New(ctx, b2store.Options{
			Name:           cfg.StorageType,
			KeyID:          cfg.Backblaze.KeyID,
			ApplicationKey: cfg.Backblaze.ApplicationKey,
			Bucket:         cfg.Backblaze.Bucket,
			Retry:          retry,
			Logger:         logger,
		})
	case config.StorageLocal:
		return localstore.New(cfg.StorageType, cfg.Local.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}
