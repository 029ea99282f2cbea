package config

import (
	"fmt"

	"github.com/nestvault/nestvault/internal/schedule"
)

// Validate checks the loaded configuration. Any error here is fatal at
// startup; the scheduler loop is never entered with a bad config.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case DatabasePostgres:
		pg := c.Postgres
		if pg == nil {
			return fmt.Errorf("postgres configuration missing")
		}
		if pg.Host == "" || pg.Port == 0 || pg.Database == "" || pg.User == "" || pg.Password == "" {
			return fmt.Errorf("postgres connection is incomplete (PG_HOST/PG_PORT/PG_DATABASE/PG_USER/PG_PASSWORD or DATABASE_URL required)")
		}
	case DatabaseMongoDB:
		mg := c.MongoDB
		if mg == nil {
			return fmt.Errorf("mongodb configuration missing")
		}
		if mg.URI == "" || mg.Database == "" {
			return fmt.Errorf("mongodb connection is incomplete (MONGO_URI and MONGO_DATABASE or DATABASE_URL required)")
		}
	case "":
		return fmt.Errorf("missing required environment variable: DATABASE_TYPE")
	default:
		return fmt.Errorf("invalid DATABASE_TYPE %q: must be %q or %q", c.DatabaseType, DatabasePostgres, DatabaseMongoDB)
	}

	switch c.StorageType {
	case StorageS3, StorageR2:
		s3 := c.S3
		if s3 == nil {
			return fmt.Errorf("s3 configuration missing")
		}
		if s3.AccessKey == "" || s3.SecretKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required")
		}
		if s3.Bucket == "" || s3.Region == "" {
			return fmt.Errorf("S3_BUCKET and S3_REGION are required")
		}
		if c.StorageType == StorageR2 && s3.Endpoint == "" {
			return fmt.Errorf("storage type r2 requires S3_ENDPOINT")
		}
	case StorageBackblaze:
		b2 := c.Backblaze
		if b2 == nil {
			return fmt.Errorf("backblaze configuration missing")
		}
		if b2.KeyID == "" || b2.ApplicationKey == "" || b2.Bucket == "" {
			return fmt.Errorf("B2_KEY_ID, B2_APPLICATION_KEY and B2_BUCKET are required")
		}
	case StorageLocal:
		if c.Local == nil || c.Local.Path == "" {
			return fmt.Errorf("storage type local requires LOCAL_PATH")
		}
	case "":
		return fmt.Errorf("missing required environment variable: STORAGE_TYPE")
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be s3, r2, backblaze or local", c.StorageType)
	}

	if c.Schedule == "" {
		return fmt.Errorf("missing required environment variable: BACKUP_SCHEDULE")
	}
	if _, err := schedule.ParseCronSpec(c.Schedule); err != nil {
		return fmt.Errorf("invalid BACKUP_SCHEDULE %q: %w", c.Schedule, err)
	}

	if c.RetentionDays < 1 {
		return fmt.Errorf("RETENTION_DAYS must be at least 1, got: %d", c.RetentionDays)
	}

	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}

	return nil
}
