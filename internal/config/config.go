package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Upload    UploadConfig    `yaml:"upload"`
	Selection SelectionConfig `yaml:"selection"`
	Brochure  BrochureConfig  `yaml:"brochure"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"` // sqlite, mysql, postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig contains SQLite settings
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
	// WorkerPollSeconds is how often the index worker drains queued jobs
	WorkerPollSeconds int `yaml:"worker_poll_seconds"`
}

// MeilisearchConfig contains Meilisearch connection settings.
// An empty host disables search.
type MeilisearchConfig struct {
	Host        string `yaml:"host"`
	APIKey      string `yaml:"api_key"`
	IndexPrefix string `yaml:"index_prefix"`
}

// UploadConfig contains bulk image upload settings
type UploadConfig struct {
	MaxFiles          int    `yaml:"max_files"`
	MaxFileSizeMB     int    `yaml:"max_file_size_mb"`
	BatchSize         int    `yaml:"batch_size"`
	StagingDir        string `yaml:"staging_dir"`
	StorageDir        string `yaml:"storage_dir"`
	PublicBaseURL     string `yaml:"public_base_url"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
}

// SelectionConfig contains selection wizard settings
type SelectionConfig struct {
	// SchemaPath overrides the embedded default schema when set
	SchemaPath string `yaml:"schema_path"`
}

// BrochureConfig contains PDF rendering settings
type BrochureConfig struct {
	Enabled             bool   `yaml:"enabled"`
	ChromePath          string `yaml:"chrome_path"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	FailureThreshold    int    `yaml:"failure_threshold"`
	ResetTimeoutSeconds int    `yaml:"reset_timeout_seconds"`
}

// RateLimitConfig contains rate limiting settings for public write endpoints
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// CleanupConfig contains nightly maintenance settings
type CleanupConfig struct {
	DailyRunEnabled     bool   `yaml:"daily_run_enabled"`
	DailyRunTime        string `yaml:"daily_run_time"`
	DraftRetentionDays  int    `yaml:"draft_retention_days"`
	ClosedRetentionDays int    `yaml:"closed_retention_days"`
	MaxDeletionCount    int    `yaml:"max_deletion_count"`
	ReindexEnabled      bool   `yaml:"reindex_enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"` // silent, error, warn, info
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Type:   "sqlite",
			SQLite: SQLiteConfig{Path: "data/drake.db"},
		},
		Search: SearchConfig{
			Meilisearch:       MeilisearchConfig{IndexPrefix: "drake_"},
			WorkerPollSeconds: 10,
		},
		Upload: UploadConfig{
			MaxFiles:          20,
			MaxFileSizeMB:     10,
			BatchSize:         5,
			StagingDir:        os.TempDir(),
			StorageDir:        "data/uploads",
			PublicBaseURL:     "/uploads",
			SessionTTLMinutes: 60,
		},
		Brochure: BrochureConfig{
			Enabled:             true,
			TimeoutSeconds:      30,
			FailureThreshold:    3,
			ResetTimeoutSeconds: 300,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 20,
			RequestsPerHour:   300,
		},
		Cleanup: CleanupConfig{
			DailyRunEnabled:     true,
			DailyRunTime:        "03:00",
			DraftRetentionDays:  180,
			ClosedRetentionDays: 365,
			MaxDeletionCount:    1000,
			ReindexEnabled:      true,
		},
		Logging: LoggingConfig{
			Level:       "warn",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// Missing file means defaults
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "", "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Upload.MaxFiles < 0 || c.Upload.MaxFileSizeMB < 0 || c.Upload.BatchSize < 0 {
		return fmt.Errorf("upload limits must not be negative")
	}
	return nil
}

// Location returns the configured timezone, falling back to local time
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// MaxFileSizeBytes returns the per-file upload cap in bytes
func (c *UploadConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// GetSessionTTL returns the upload session lifetime
func (c *UploadConfig) GetSessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// GetPollInterval returns the index worker poll interval
func (c *SearchConfig) GetPollInterval() time.Duration {
	if c.WorkerPollSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WorkerPollSeconds) * time.Second
}

// GetTimeout returns the brochure render timeout
func (c *BrochureConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetResetTimeout returns how long the renderer stays disabled after repeated failures
func (c *BrochureConfig) GetResetTimeout() time.Duration {
	return time.Duration(c.ResetTimeoutSeconds) * time.Second
}

// GetEnv returns the environment value for key or defaultValue
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func GetEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return GetEnv(envKey, defaultValue)
}
