package backup

import (
	"context"
	"fmt"
	"time"
)

// Adapter produces and consumes compressed snapshots for one database
// technology. Implementations shell out to the native dump/restore tools and
// never touch remote storage.
type Adapter interface {
	// DatabaseName is the name of the protected database; it prefixes every
	// artifact key.
	DatabaseName() string

	// FileExtension is the artifact extension without a leading dot,
	// e.g. "sql.gz" or "archive.gz".
	FileExtension() string

	// Dump writes a fresh compressed snapshot into dir and returns it.
	Dump(ctx context.Context, dir string) (*Artifact, error)

	// Restore loads the snapshot at localPath back into the database. For
	// relational databases this replays SQL against the target; for document
	// databases it drops and recreates matching collections.
	Restore(ctx context.Context, localPath string) error
}

// Artifact is one compressed snapshot. The local path is transient: the file
// exists only between Dump and the end of the cycle or restore invocation.
type Artifact struct {
	Database  string
	CreatedAt time.Time
	Ext       string
	Key       string
	LocalPath string
}

// RemoteArtifact is the slice of an Artifact visible through a storage
// listing: the key plus the creation time recovered from it.
type RemoteArtifact struct {
	Key       string
	Database  string
	CreatedAt time.Time
}

// DumpError reports a failed dump tool invocation.
type DumpError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *DumpError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
}

func (e *DumpError) Unwrap() error { return e.Err }

// RestoreError reports a failed restore tool invocation, under the same
// contract as DumpError.
type RestoreError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RestoreError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }
