package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/nestvault/nestvault/internal/app"
	"github.com/nestvault/nestvault/internal/config"
	"github.com/nestvault/nestvault/internal/logging"
	"github.com/nestvault/nestvault/internal/storage"
)

func main() {
	// Optional .env for local runs; in-container config comes from real
	// environment variables.
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:  "nestvault",
		Usage: "container-native backup sidecar for PostgreSQL and MongoDB",
		Action: func(c *cli.Context) error {
			a, err := bootstrap(c.Context)
			if err != nil {
				return err
			}
			return a.RunScheduler(c.Context)
		},
		Commands: []*cli.Command{
			{
				Name:  "restore",
				Usage: "restore from a remote backup",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "list",
						Usage: "list available backups without restoring",
					},
					&cli.StringFlag{
						Name:  "backup",
						Usage: "specific backup to restore (e.g. mydb_20260115_120000.sql.gz); defaults to the latest",
					},
				},
				Action: runRestore,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads and validates configuration and wires the adapters. Any
// error here is fatal before the scheduler loop or restore starts.
func bootstrap(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	logger.Info("nestvault starting",
		"database_type", cfg.DatabaseType,
		"storage_type", cfg.StorageType,
		"schedule", cfg.Schedule,
		"retention_days", cfg.RetentionDays,
	)

	return app.New(ctx, cfg, logger)
}

func runRestore(c *cli.Context) error {
	a, err := bootstrap(c.Context)
	if err != nil {
		return err
	}

	if c.Bool("list") {
		records, err := a.ListBackups(c.Context)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no backups found")
			return nil
		}
		for _, r := range records {
			fmt.Printf("  - %s\n", r.Key)
		}
		return nil
	}

	if key := c.String("backup"); key != "" {
		if err := a.RestoreBackup(c.Context, key); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return cli.Exit(fmt.Sprintf("backup %q not found in storage", key), 1)
			}
			return err
		}
		return nil
	}

	return a.RestoreLatest(c.Context)
}
