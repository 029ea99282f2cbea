package backup

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/config"
)

// FromConfig selects the backup adapter for the configured database kind.
// The choice is made once at startup; no runtime type inspection afterwards.
func FromConfig(cfg *config.Config, logger *log.Logger) (Adapter, error) {
	switch cfg.DatabaseType {
	case config.DatabasePostgres:
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("postgres configuration missing")
		}
		return NewPostgres(*cfg.Postgres, logger), nil
	case config.DatabaseMongoDB:
		if cfg.MongoDB == nil {
			return nil, fmt.Errorf("mongodb configuration missing")
		}
		return NewMongoDB(cfg.MongoDB.URI, cfg.MongoDB.Database, logger), nil
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}
}
