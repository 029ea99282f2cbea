package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/compression"
	"github.com/nestvault/nestvault/internal/config"
)

// PostgresAdapter dumps with pg_dump (plain SQL, gzip-compressed on the way
// to disk) and restores by replaying the SQL through psql.
type PostgresAdapter struct {
	cfg config.PostgresConfig
	log *log.Logger
}

func NewPostgres(cfg config.PostgresConfig, logger *log.Logger) *PostgresAdapter {
	return &PostgresAdapter{cfg: cfg, log: logger.WithPrefix("backup.postgres")}
}

func (a *PostgresAdapter) DatabaseName() string  { return a.cfg.Database }
func (a *PostgresAdapter) FileExtension() string { return ExtPostgres }

func (a *PostgresAdapter) Dump(ctx context.Context, dir string) (*Artifact, error) {
	now := time.Now().UTC().Truncate(time.Second)
	art := &Artifact{
		Database:  a.cfg.Database,
		CreatedAt: now,
		Ext:       ExtPostgres,
		Key:       FormatKey(a.cfg.Database, now, ExtPostgres),
	}
	art.LocalPath = filepath.Join(dir, art.Key)

	a.log.Info("starting backup", "database", art.Database)

	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", a.cfg.Host,
		"-p", strconv.Itoa(a.cfg.Port),
		"-U", a.cfg.User,
		"-d", a.cfg.Database,
		"--no-password",
	)
	// pg_dump reads the password from the environment.
	cmd.Env = append(os.Environ(), "PGPASSWORD="+a.cfg.Password)

	var stderr tailBuffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &DumpError{Tool: "pg_dump", ExitCode: -1, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	f, err := os.Create(art.LocalPath)
	if err != nil {
		return nil, &DumpError{Tool: "pg_dump", ExitCode: -1, Err: fmt.Errorf("create backup file: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		_ = f.Close()
		_ = os.Remove(art.LocalPath)
		return nil, &DumpError{Tool: "pg_dump", ExitCode: -1, Err: fmt.Errorf("start pg_dump: %w", err)}
	}

	n, gzErr := compression.Gzip(f, stdout)
	waitErr := cmd.Wait()
	closeErr := f.Close()

	if waitErr != nil || gzErr != nil || closeErr != nil {
		_ = os.Remove(art.LocalPath)
		if waitErr != nil {
			return nil, &DumpError{Tool: "pg_dump", ExitCode: exitCode(waitErr), Stderr: stderr.String(), Err: waitErr}
		}
		if gzErr != nil {
			return nil, &DumpError{Tool: "pg_dump", ExitCode: 0, Err: gzErr}
		}
		return nil, &DumpError{Tool: "pg_dump", ExitCode: 0, Err: fmt.Errorf("close backup file: %w", closeErr)}
	}
	if n == 0 {
		_ = os.Remove(art.LocalPath)
		return nil, &DumpError{Tool: "pg_dump", ExitCode: 0, Stderr: stderr.String(), Err: fmt.Errorf("produced an empty dump")}
	}

	a.log.Info("backup completed", "file", art.Key, "bytes", n)
	return art, nil
}

// Restore replays the decompressed dump through psql. This is destructive
// against the target database objects.
func (a *PostgresAdapter) Restore(ctx context.Context, localPath string) error {
	a.log.Info("starting restore", "database", a.cfg.Database, "from", filepath.Base(localPath))

	f, err := os.Open(localPath)
	if err != nil {
		return &RestoreError{Tool: "psql", ExitCode: -1, Err: fmt.Errorf("open backup file: %w", err)}
	}
	defer f.Close()

	gr, err := compression.Gunzip(f)
	if err != nil {
		return &RestoreError{Tool: "psql", ExitCode: -1, Err: fmt.Errorf("decompress backup: %w", err)}
	}
	defer gr.Close()

	cmd := exec.CommandContext(ctx, "psql",
		"-h", a.cfg.Host,
		"-p", strconv.Itoa(a.cfg.Port),
		"-U", a.cfg.User,
		"-d", a.cfg.Database,
		"--no-password",
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+a.cfg.Password)
	cmd.Stdin = gr

	var stderr tailBuffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &RestoreError{Tool: "psql", ExitCode: exitCode(err), Stderr: stderr.String(), Err: err}
	}

	a.log.Info("restore completed", "database", a.cfg.Database)
	return nil
}
