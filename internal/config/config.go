package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for PulseBoard's time tracking core
type Config struct {
	Database    DatabaseConfig
	Tracking    TrackingConfig
	Analytics   AnalyticsConfig
	Application ApplicationConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `env:"PB_DATABASE_DIR"`
	Filename       string        `env:"PB_DATABASE_FILENAME"`
	QueryTimeout   time.Duration `env:"PB_DATABASE_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"PB_DATABASE_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"PB_DATABASE_DIR_PERMISSIONS"`
}

// TrackingConfig holds the accounting engine and rate limiter policy
type TrackingConfig struct {
	MinimumStopDuration time.Duration `env:"PB_TRACKING_MINIMUM_STOP_DURATION"`
	RateLimitWindow     time.Duration `env:"PB_TRACKING_RATE_LIMIT_WINDOW"`
	RateLimitMaxActions int           `env:"PB_TRACKING_RATE_LIMIT_MAX_ACTIONS"`
}

// AnalyticsConfig holds dashboard aggregation settings
type AnalyticsConfig struct {
	Timezone         string `env:"PB_ANALYTICS_TIMEZONE"`
	WorkdayStartHour int    `env:"PB_ANALYTICS_WORKDAY_START_HOUR"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout    time.Duration `env:"PB_APPLICATION_TIMEOUT"`
	Verbose    bool          `env:"PB_APPLICATION_VERBOSE"`
	UserID     string        `env:"PB_APPLICATION_USER_ID"`
	OutputJSON bool          `env:"PB_APPLICATION_OUTPUT_JSON"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".pulseboard")

	return &Config{
		Database: DatabaseConfig{
			Dir:            defaultDBDir,
			Filename:       "pulseboard.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Tracking: TrackingConfig{
			MinimumStopDuration: 120 * time.Second,
			RateLimitWindow:     time.Hour,
			RateLimitMaxActions: 10,
		},
		Analytics: AnalyticsConfig{
			Timezone:         "Local",
			WorkdayStartHour: 9,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == ":memory:" {
		return c.Database.Filename
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// Location resolves the analytics timezone used for calendar buckets
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.Timezone == "" || c.Analytics.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Analytics.Timezone)
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	if c.Database.Dir == "" && c.Database.Filename != ":memory:" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	// Validate tracking configuration
	if c.Tracking.MinimumStopDuration < 0 {
		return &ConfigError{Field: "tracking.minimum_stop_duration", Message: "minimum stop duration cannot be negative"}
	}
	if c.Tracking.RateLimitWindow <= 0 {
		return &ConfigError{Field: "tracking.rate_limit_window", Message: "rate limit window must be positive"}
	}
	if c.Tracking.RateLimitMaxActions < 1 {
		return &ConfigError{Field: "tracking.rate_limit_max_actions", Message: "rate limit must allow at least one action"}
	}

	// Validate analytics configuration
	if c.Analytics.WorkdayStartHour < 1 || c.Analytics.WorkdayStartHour > 14 {
		return &ConfigError{Field: "analytics.workday_start_hour", Message: "workday start hour must be between 1 and 14"}
	}
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "analytics.timezone", Message: "unknown timezone " + c.Analytics.Timezone}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
