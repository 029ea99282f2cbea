package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a download or restore target that does not exist in the
// bucket. Checked with errors.Is.
var ErrNotFound = errors.New("object not found")

// UploadError is returned after the retry policy is exhausted.
type UploadError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed after %d attempt(s): %v", e.Key, e.Attempts, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
