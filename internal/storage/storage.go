package storage

import (
	"context"
	"time"
)

// Object is one remote object as reported by a backend listing.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Adapter is the capability set every storage backend provides. Remote
// objects are append/delete-only by key; an upload to an existing key
// overwrites it whole.
type Adapter interface {
	Name() string

	// Upload stores the file at localPath under key. Transient failures are
	// retried per the adapter's retry policy; after exhausting retries the
	// caller sees an *UploadError and no partial object under the key.
	Upload(ctx context.Context, localPath, key string) error

	// List returns every object whose key starts with prefix. A prefix with
	// no objects yields an empty slice, not an error.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Download fetches one object into localPath. A missing key reports
	// ErrNotFound.
	Download(ctx context.Context, key, localPath string) error

	// Delete removes one object. Deleting an absent key is a no-op success.
	Delete(ctx context.Context, key string) error
}
