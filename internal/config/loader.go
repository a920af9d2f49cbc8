package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

// EnvPrefix is prepended to every configuration key looked up in the environment.
const EnvPrefix = "PB"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config     *Config
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
		v:      viper.New(),
	}
}

// WithConfigFile points the loader at an explicit config file. When unset the
// loader looks for pulseboard.yaml in the database directory and the working
// directory, and carries on without one.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the config file, if any
// 3. Override with PB_* environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	l.registerDefaults()

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if err := l.readConfigFile(); err != nil {
		return nil, err
	}

	l.apply()

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) registerDefaults() {
	d := l.config
	l.v.SetDefault("database.dir", d.Database.Dir)
	l.v.SetDefault("database.filename", d.Database.Filename)
	l.v.SetDefault("database.query_timeout", d.Database.QueryTimeout)
	l.v.SetDefault("database.write_timeout", d.Database.WriteTimeout)
	l.v.SetDefault("database.dir_permissions", d.Database.DirPermissions)

	l.v.SetDefault("tracking.minimum_stop_duration", d.Tracking.MinimumStopDuration)
	l.v.SetDefault("tracking.rate_limit_window", d.Tracking.RateLimitWindow)
	l.v.SetDefault("tracking.rate_limit_max_actions", d.Tracking.RateLimitMaxActions)

	l.v.SetDefault("analytics.timezone", d.Analytics.Timezone)
	l.v.SetDefault("analytics.workday_start_hour", d.Analytics.WorkdayStartHour)

	l.v.SetDefault("application.timeout", d.Application.Timeout)
	l.v.SetDefault("application.verbose", d.Application.Verbose)
	l.v.SetDefault("application.user_id", d.Application.UserID)
	l.v.SetDefault("application.output_json", d.Application.OutputJSON)
}

func (l *Loader) readConfigFile() error {
	if l.configFile == "" {
		l.configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("pulseboard")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(l.v.GetString("database.dir"))
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return xerrors.Errorf("read config file: %w", err)
	}
	return nil
}

// apply copies the merged viper view onto the typed configuration
func (l *Loader) apply() {
	c := l.config

	// Database configuration
	c.Database.Dir = l.v.GetString("database.dir")
	c.Database.Filename = l.v.GetString("database.filename")
	c.Database.QueryTimeout = l.v.GetDuration("database.query_timeout")
	c.Database.WriteTimeout = l.v.GetDuration("database.write_timeout")
	c.Database.DirPermissions = l.v.GetUint32("database.dir_permissions")

	// Tracking configuration
	c.Tracking.MinimumStopDuration = l.v.GetDuration("tracking.minimum_stop_duration")
	c.Tracking.RateLimitWindow = l.v.GetDuration("tracking.rate_limit_window")
	c.Tracking.RateLimitMaxActions = l.v.GetInt("tracking.rate_limit_max_actions")

	// Analytics configuration
	c.Analytics.Timezone = l.v.GetString("analytics.timezone")
	c.Analytics.WorkdayStartHour = l.v.GetInt("analytics.workday_start_hour")

	// Application configuration
	c.Application.Timeout = l.v.GetDuration("application.timeout")
	c.Application.Verbose = l.v.GetBool("application.verbose") || os.Getenv(EnvPrefix+"_DEBUG") != ""
	c.Application.UserID = l.v.GetString("application.user_id")
	if user := os.Getenv(EnvPrefix + "_USER"); user != "" && c.Application.UserID == "" {
		c.Application.UserID = user
	}
	c.Application.OutputJSON = l.v.GetBool("application.output_json")
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Database overrides
	DBDir          *string
	DBFilename     *string
	DBQueryTimeout *time.Duration
	DBWriteTimeout *time.Duration

	// Tracking overrides
	MinimumStopDuration *time.Duration
	RateLimitWindow     *time.Duration
	RateLimitMaxActions *int

	// Analytics overrides
	Timezone         *string
	WorkdayStartHour *int

	// Application overrides
	Timeout    *time.Duration
	Verbose    *bool
	UserID     *string
	OutputJSON *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	// Database overrides
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *overrides.DBQueryTimeout
	}
	if overrides.DBWriteTimeout != nil {
		config.Database.WriteTimeout = *overrides.DBWriteTimeout
	}

	// Tracking overrides
	if overrides.MinimumStopDuration != nil {
		config.Tracking.MinimumStopDuration = *overrides.MinimumStopDuration
	}
	if overrides.RateLimitWindow != nil {
		config.Tracking.RateLimitWindow = *overrides.RateLimitWindow
	}
	if overrides.RateLimitMaxActions != nil {
		config.Tracking.RateLimitMaxActions = *overrides.RateLimitMaxActions
	}

	// Analytics overrides
	if overrides.Timezone != nil {
		config.Analytics.Timezone = *overrides.Timezone
	}
	if overrides.WorkdayStartHour != nil {
		config.Analytics.WorkdayStartHour = *overrides.WorkdayStartHour
	}

	// Application overrides
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
	if overrides.UserID != nil {
		config.Application.UserID = *overrides.UserID
	}
	if overrides.OutputJSON != nil {
		config.Application.OutputJSON = *overrides.OutputJSON
	}
}
