package b2store

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Backblaze/blazer/b2"
	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/storage"
)

// Storage talks to Backblaze B2 through its native API.
type Storage struct {
	name   string
	bucket *b2.Bucket
	retry  storage.RetryPolicy
	log    *log.Logger
}

type Options struct {
	Name           string
	KeyID          string
	ApplicationKey string
	Bucket         string
	Retry          storage.RetryPolicy
	Logger         *log.Logger
}

func New(ctx context.Context, opt Options) (*Storage, error) {
	client, err := b2.NewClient(ctx, opt.KeyID, opt.ApplicationKey)
	if err != nil {
		return nil, fmt.Errorf("b2 authorize: %w", err)
	}
	bucket, err := client.Bucket(ctx, opt.Bucket)
	if err != nil {
		return nil, fmt.Errorf("b2 bucket %s: %w", opt.Bucket, err)
	}

	return &Storage{
		name:   opt.Name,
		bucket: bucket,
		retry:  opt.Retry,
		log:    opt.Logger.WithPrefix("storage." + opt.Name),
	}, nil
}

func (s *Storage) Name() string { return s.name }

func (s *Storage) Upload(ctx context.Context, localPath, key string) error {
	s.log.Info("uploading", "key", key, "dest", fmt.Sprintf("b2://%s/%s", s.bucket.Name(), key))

	attempts, err := s.retry.Do(ctx, func() error {
		return s.uploadOnce(ctx, localPath, key)
	})
	if err != nil {
		return &storage.UploadError{Key: key, Attempts: attempts, Err: err}
	}

	s.log.Info("upload completed", "key", key, "attempts", attempts)
	return nil
}

func (s *Storage) uploadOnce(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("b2 upload: %w", err)
	}
	// The object becomes visible on Close; a failed Close means no object.
	if err := w.Close(); err != nil {
		return fmt.Errorf("b2 finalize upload: %w", err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	var out []storage.Object

	iter := s.bucket.List(ctx, b2.ListPrefix(prefix))
	for iter.Next() {
		obj := iter.Object()
		attrs, err := obj.Attrs(ctx)
		if err != nil {
			return nil, fmt.Errorf("b2 object attrs %s: %w", obj.Name(), err)
		}
		out = append(out, storage.Object{
			Key:          obj.Name(),
			Size:         attrs.Size,
			LastModified: attrs.UploadTimestamp,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("b2 list: %w", err)
	}

	s.log.Debug("listed objects", "prefix", prefix, "count", len(out))
	return out, nil
}

func (s *Storage) Download(ctx context.Context, key, localPath string) error {
	s.log.Info("downloading", "key", key)

	r := s.bucket.Object(key).NewReader(ctx)
	defer r.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}

	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(localPath)
		if b2.IsNotExist(copyErr) {
			return fmt.Errorf("b2 download %s: %w", key, storage.ErrNotFound)
		}
		return fmt.Errorf("b2 download %s: %w", key, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("b2 download %s: %w", key, closeErr)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("b2 delete %s: %w", key, err)
	}
	s.log.Debug("deleted", "key", key)
	return nil
}
