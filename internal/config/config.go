package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Database and storage kinds accepted by NestVault. The adapter for each is
// chosen once at startup and held for the process lifetime.
const (
	DatabasePostgres = "postgres"
	DatabaseMongoDB  = "mongodb"

	StorageS3        = "s3"
	StorageR2        = "r2"
	StorageBackblaze = "backblaze"
	StorageLocal     = "local"
)

type Config struct {
	DatabaseType  string
	StorageType   string
	Schedule      string
	RetentionDays int
	LogLevel      string

	Postgres  *PostgresConfig
	MongoDB   *MongoDBConfig
	S3        *S3Config
	Backblaze *BackblazeConfig
	Local     *LocalConfig

	Notify NotifyConfig
}

type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// S3Config covers AWS S3 and Cloudflare R2; R2 is the same protocol with a
// mandatory custom endpoint.
type S3Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

type BackblazeConfig struct {
	KeyID          string
	ApplicationKey string
	Bucket         string
}

type LocalConfig struct {
	Path string
}

// NotifyConfig is entirely optional; notifications are disabled when no
// webhook URL or SMTP host is set.
type NotifyConfig struct {
	On         []string
	WebhookURL string
	Headers    map[string]string

	SMTPHost string
	SMTPPort int
	From     string
	To       string
	Username string
	Password string
}

// Load reads configuration from environment variables. All values are
// snapshotted here; the rest of the process treats the result as immutable.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseType:  strings.ToLower(strings.TrimSpace(v.GetString("database_type"))),
		StorageType:   strings.ToLower(strings.TrimSpace(v.GetString("storage_type"))),
		Schedule:      strings.TrimSpace(v.GetString("backup_schedule")),
		LogLevel:      strings.ToUpper(strings.TrimSpace(v.GetString("log_level"))),
		RetentionDays: 0,
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}

	retention, err := intEnv(v, "retention_days")
	if err != nil {
		return nil, err
	}
	cfg.RetentionDays = retention

	switch cfg.DatabaseType {
	case DatabasePostgres:
		pg, err := loadPostgres(v)
		if err != nil {
			return nil, err
		}
		cfg.Postgres = pg
	case DatabaseMongoDB:
		mg, err := loadMongoDB(v)
		if err != nil {
			return nil, err
		}
		cfg.MongoDB = mg
	}

	switch cfg.StorageType {
	case StorageS3, StorageR2:
		cfg.S3 = &S3Config{
			AccessKey: v.GetString("s3_access_key"),
			SecretKey: v.GetString("s3_secret_key"),
			Bucket:    v.GetString("s3_bucket"),
			Region:    v.GetString("s3_region"),
			Endpoint:  v.GetString("s3_endpoint"),
		}
	case StorageBackblaze:
		cfg.Backblaze = &BackblazeConfig{
			KeyID:          v.GetString("b2_key_id"),
			ApplicationKey: v.GetString("b2_application_key"),
			Bucket:         v.GetString("b2_bucket"),
		}
	case StorageLocal:
		cfg.Local = &LocalConfig{Path: v.GetString("local_path")}
	}

	cfg.Notify = loadNotify(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPostgres supports two modes: a single DATABASE_URL connection string
// (preferred) or discrete PG_* variables.
func loadPostgres(v *viper.Viper) (*PostgresConfig, error) {
	if raw := v.GetString("database_url"); raw != "" {
		return parsePostgresURL(raw)
	}

	port := 5432
	if v.GetString("pg_port") != "" {
		p, err := intEnv(v, "pg_port")
		if err != nil {
			return nil, err
		}
		port = p
	}

	return &PostgresConfig{
		Host:     v.GetString("pg_host"),
		Port:     port,
		Database: v.GetString("pg_database"),
		User:     v.GetString("pg_user"),
		Password: v.GetString("pg_password"),
	}, nil
}

func loadMongoDB(v *viper.Viper) (*MongoDBConfig, error) {
	if raw := v.GetString("database_url"); raw != "" {
		return parseMongoURL(raw)
	}
	return &MongoDBConfig{
		URI:      v.GetString("mongo_uri"),
		Database: v.GetString("mongo_database"),
	}, nil
}

func parsePostgresURL(raw string) (*PostgresConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("invalid DATABASE_URL scheme %q: must be postgres or postgresql", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("DATABASE_URL missing hostname")
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("DATABASE_URL missing username")
	}
	password, ok := u.User.Password()
	if !ok || password == "" {
		return nil, fmt.Errorf("DATABASE_URL missing password")
	}
	database := strings.TrimPrefix(u.Path, "/")
	if database == "" {
		return nil, fmt.Errorf("DATABASE_URL missing database name")
	}

	port := 5432
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("DATABASE_URL has invalid port %q", u.Port())
		}
	}

	return &PostgresConfig{
		Host:     u.Hostname(),
		Port:     port,
		Database: database,
		User:     u.User.Username(),
		Password: password,
	}, nil
}

func parseMongoURL(raw string) (*MongoDBConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return nil, fmt.Errorf("invalid DATABASE_URL scheme %q: must be mongodb or mongodb+srv", u.Scheme)
	}
	database := strings.TrimPrefix(u.Path, "/")
	if database == "" {
		return nil, fmt.Errorf("DATABASE_URL missing database name")
	}
	return &MongoDBConfig{URI: raw, Database: database}, nil
}

func loadNotify(v *viper.Viper) NotifyConfig {
	n := NotifyConfig{
		WebhookURL: v.GetString("notify_webhook_url"),
		SMTPHost:   v.GetString("notify_smtp_host"),
		From:       v.GetString("notify_smtp_from"),
		To:         v.GetString("notify_smtp_to"),
		Username:   v.GetString("notify_smtp_username"),
		Password:   v.GetString("notify_smtp_password"),
	}
	n.SMTPPort = v.GetInt("notify_smtp_port")

	on := strings.TrimSpace(v.GetString("notify_on"))
	if on == "" {
		on = "failure"
	}
	for _, part := range strings.Split(on, ",") {
		if p := strings.TrimSpace(part); p != "" {
			n.On = append(n.On, p)
		}
	}
	return n
}

func intEnv(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("missing required environment variable: %s", strings.ToUpper(key))
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer, got: %q", strings.ToUpper(key), raw)
	}
	return n, nil
}

// DatabaseName returns the name of the protected database, used as the key
// prefix for every remote artifact.
func (c *Config) DatabaseName() string {
	switch c.DatabaseType {
	case DatabasePostgres:
		if c.Postgres != nil {
			return c.Postgres.Database
		}
	case DatabaseMongoDB:
		if c.MongoDB != nil {
			return c.MongoDB.Database
		}
	}
	return ""
}
