package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	ServerPort         string        `env:"SERVER_PORT" envDefault:"8080"`
	AdminPort          string        `env:"ADMIN_PORT" envDefault:"9090"`
	PostgresURL        string        `env:"POSTGRES_URL,required"`
	RedisURL           string        `env:"REDIS_URL,required"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	WALPath            string        `env:"WAL_PATH" envDefault:"./data/wal"`
	WALSegmentSize     int64         `env:"WAL_SEGMENT_SIZE" envDefault:"104857600"`   // 100MB
	WALMaxDiskSize     int64         `env:"WAL_MAX_DISK_SIZE" envDefault:"1073741824"` // 1GB
	MaxUploadBytes     int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`    // 10MB
	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"40"`
	APIKeyCacheTTL     time.Duration `env:"API_KEY_CACHE_TTL" envDefault:"5m"`
	ReplayInterval     time.Duration `env:"REPLAY_INTERVAL" envDefault:"30s"`
	RedactFields       []string      `env:"REDACT_FIELDS" envSeparator:"," envDefault:"email,password,credit_card,ssn"`
	FieldPattern       string        `env:"FIELD_PATTERN"`
	ExecutionDelimiter string        `env:"EXECUTION_DELIMITER"`
	ValidateClocks     bool          `env:"VALIDATE_CLOCKS" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ServerAddr is the listen address of the public API.
func (c *Config) ServerAddr() string { return ":" + c.ServerPort }

// AdminAddr is the listen address of the metrics and health server.
func (c *Config) AdminAddr() string { return ":" + c.AdminPort }
