package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Metadata backends understood by Load.
const (
	BackendDynamo   = "dynamodb"
	BackendPostgres = "postgres"
)

// Config aggregates runtime configuration for photocat.
type Config struct {
	Server   ServerConfig
	MinIO    MinIOConfig
	Dynamo   DynamoConfig
	Postgres PostgresConfig
	Metadata MetadataConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig parameterizes the operator HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MinIOConfig carries blob store connection information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	PresignTTL      time.Duration
}

// DynamoConfig locates the metadata table.
type DynamoConfig struct {
	Endpoint        string
	Region          string
	Table           string
	AccessKeyID     string
	SecretAccessKey string
	CreateTable     bool
}

// PostgresConfig contains PostgreSQL connection details for the alternative metadata backend.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MetadataConfig selects the metadata backend and the ingestion source.
type MetadataConfig struct {
	Backend         string
	DescriptionFile string
}

// AuthConfig guards the HTTP surface. An empty secret disables authentication.
type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("PHOTOCAT_API_HOST", "127.0.0.1"),
			Port:         getInt("PHOTOCAT_API_PORT", 8080),
			ReadTimeout:  getDuration("PHOTOCAT_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("PHOTOCAT_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("PHOTOCAT_API_IDLE_TIMEOUT", 60*time.Second),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("PHOTOCAT_S3_ENDPOINT", "s3.amazonaws.com"),
			AccessKeyID:     getString("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getString("AWS_SECRET_ACCESS_KEY", ""),
			UseSSL:          getBool("PHOTOCAT_S3_USE_SSL", true),
			Region:          getString("PHOTOCAT_S3_REGION", getString("AWS_REGION", "us-east-1")),
			PresignTTL:      getDuration("PHOTOCAT_S3_PRESIGN_TTL", 15*time.Minute),
		},
		Dynamo: DynamoConfig{
			Endpoint:        getString("PHOTOCAT_DYNAMODB_ENDPOINT", ""),
			Region:          getString("PHOTOCAT_DYNAMODB_REGION", getString("AWS_REGION", "us-east-1")),
			Table:           getString("PHOTOCAT_DYNAMODB_TABLE", "PhotoMetadata"),
			AccessKeyID:     getString("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getString("AWS_SECRET_ACCESS_KEY", ""),
			CreateTable:     getBool("PHOTOCAT_DYNAMODB_CREATE_TABLE", false),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "photocat"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "photocat"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			MaxConns: int32(getInt("POSTGRES_MAX_CONNS", 4)),
		},
		Metadata: MetadataConfig{
			Backend:         strings.ToLower(getString("PHOTOCAT_METADATA_BACKEND", BackendDynamo)),
			DescriptionFile: getString("PHOTOCAT_DESCRIPTION_FILE", "photoData.json"),
		},
		Auth: AuthConfig{
			TokenSecret: getString("PHOTOCAT_API_SECRET", ""),
			TokenTTL:    getDuration("PHOTOCAT_API_TOKEN_TTL", 12*time.Hour),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("PHOTOCAT_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getString("LOG_LEVEL", "info")),
		},
	}

	switch cfg.Metadata.Backend {
	case BackendDynamo, BackendPostgres:
	default:
		return Config{}, fmt.Errorf("unknown metadata backend %q", cfg.Metadata.Backend)
	}

	if cfg.Metadata.Backend == BackendDynamo && cfg.Dynamo.Table == "" {
		return Config{}, fmt.Errorf("PHOTOCAT_DYNAMODB_TABLE must not be empty")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
