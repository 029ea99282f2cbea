package localstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/storage"
)

// Storage keeps objects as flat files under a base directory. Mainly for
// development and tests; it implements the same capability set as the
// remote backends.
type Storage struct {
	name string
	base string
	log  *log.Logger
}

func New(name, basePath string, logger *log.Logger) *Storage {
	return &Storage{name: name, base: basePath, log: logger.WithPrefix("storage." + name)}
}

func (s *Storage) Name() string { return s.name }

func (s *Storage) Upload(_ context.Context, localPath, key string) error {
	if err := os.MkdirAll(s.base, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.base, err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	// Write to a temp name and rename so a crash never leaves a partial
	// object visible under the key.
	finalPath := filepath.Join(s.base, key)
	tmpPath := finalPath + ".tmp"

	dst, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		if copyErr != nil {
			return fmt.Errorf("write %s: %w", key, copyErr)
		}
		return fmt.Errorf("write %s: %w", key, closeErr)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize %s: %w", key, err)
	}

	s.log.Info("upload completed", "key", key, "dest", finalPath)
	return nil
}

func (s *Storage) List(_ context.Context, prefix string) ([]storage.Object, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", s.base, err)
	}

	out := make([]storage.Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		// tmp files shouldn't survive an upload, but don't list them either.
		if strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		out = append(out, storage.Object{
			Key:          e.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}
	return out, nil
}

func (s *Storage) Download(_ context.Context, key, localPath string) error {
	src, err := os.Open(filepath.Join(s.base, key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("download %s: %w", key, storage.ErrNotFound)
		}
		return fmt.Errorf("download %s: %w", key, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("download %s: %w", key, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("download %s: %w", key, closeErr)
	}
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.base, key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
