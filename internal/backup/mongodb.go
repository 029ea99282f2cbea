package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// MongoDBAdapter dumps with mongodump in gzipped archive mode, so the tool
// itself produces the compressed stream; no extra compression stage is
// needed.
type MongoDBAdapter struct {
	uri      string
	database string
	log      *log.Logger
}

func NewMongoDB(uri, database string, logger *log.Logger) *MongoDBAdapter {
	return &MongoDBAdapter{uri: uri, database: database, log: logger.WithPrefix("backup.mongodb")}
}

func (a *MongoDBAdapter) DatabaseName() string  { return a.database }
func (a *MongoDBAdapter) FileExtension() string { return ExtMongoDB }

func (a *MongoDBAdapter) Dump(ctx context.Context, dir string) (*Artifact, error) {
	now := time.Now().UTC().Truncate(time.Second)
	art := &Artifact{
		Database:  a.database,
		CreatedAt: now,
		Ext:       ExtMongoDB,
		Key:       FormatKey(a.database, now, ExtMongoDB),
	}
	art.LocalPath = filepath.Join(dir, art.Key)

	a.log.Info("starting backup", "database", art.Database)

	cmd := exec.CommandContext(ctx, "mongodump",
		"--uri", a.uri,
		"--db", a.database,
		"--archive",
		"--gzip",
	)

	var stderr tailBuffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &DumpError{Tool: "mongodump", ExitCode: -1, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	f, err := os.Create(art.LocalPath)
	if err != nil {
		return nil, &DumpError{Tool: "mongodump", ExitCode: -1, Err: fmt.Errorf("create backup file: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		_ = f.Close()
		_ = os.Remove(art.LocalPath)
		return nil, &DumpError{Tool: "mongodump", ExitCode: -1, Err: fmt.Errorf("start mongodump: %w", err)}
	}

	n, copyErr := io.Copy(f, stdout)
	waitErr := cmd.Wait()
	closeErr := f.Close()

	if waitErr != nil || copyErr != nil || closeErr != nil {
		_ = os.Remove(art.LocalPath)
		if waitErr != nil {
			return nil, &DumpError{Tool: "mongodump", ExitCode: exitCode(waitErr), Stderr: stderr.String(), Err: waitErr}
		}
		if copyErr != nil {
			return nil, &DumpError{Tool: "mongodump", ExitCode: 0, Err: fmt.Errorf("write backup file: %w", copyErr)}
		}
		return nil, &DumpError{Tool: "mongodump", ExitCode: 0, Err: fmt.Errorf("close backup file: %w", closeErr)}
	}
	if n == 0 {
		_ = os.Remove(art.LocalPath)
		return nil, &DumpError{Tool: "mongodump", ExitCode: 0, Stderr: stderr.String(), Err: fmt.Errorf("produced an empty dump")}
	}

	a.log.Info("backup completed", "file", art.Key, "bytes", n)
	return art, nil
}

// Restore feeds the archive to mongorestore. --drop replaces collections
// that exist in the archive.
func (a *MongoDBAdapter) Restore(ctx context.Context, localPath string) error {
	a.log.Info("starting restore", "database", a.database, "from", filepath.Base(localPath))

	f, err := os.Open(localPath)
	if err != nil {
		return &RestoreError{Tool: "mongorestore", ExitCode: -1, Err: fmt.Errorf("open backup file: %w", err)}
	}
	defer f.Close()

	cmd := exec.CommandContext(ctx, "mongorestore",
		"--uri", a.uri,
		"--archive",
		"--gzip",
		"--drop",
	)
	cmd.Stdin = f

	var stderr tailBuffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &RestoreError{Tool: "mongorestore", ExitCode: exitCode(err), Stderr: stderr.String(), Err: err}
	}

	a.log.Info("restore completed", "database", a.database)
	return nil
}
