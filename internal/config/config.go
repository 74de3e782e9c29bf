// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

// Config holds all configuration parameters for the application
type Config struct {
	AppName     string   `mapstructure:"appname"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Refresher settings
	JobIntervalSeconds     int `mapstructure:"jobintervalseconds"`
	RefreshWindowDays      int `mapstructure:"refreshwindowdays"`
	RefreshWorkers         int `mapstructure:"refreshworkers"`
	CatalogCacheTTLSeconds int `mapstructure:"catalogcachettlseconds"`

	// Data retention settings
	EmptyConversationRetentionDays int `mapstructure:"emptyconversationretentiondays"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "voicero")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("jobintervalseconds", 3600)
		v.SetDefault("refreshwindowdays", 30)
		v.SetDefault("refreshworkers", 4)
		v.SetDefault("catalogcachettlseconds", 300)
		v.SetDefault("emptyconversationretentiondays", 7)

		v.BindEnv("appname", "VOICERO_APP_NAME")
		v.BindEnv("environment", "VOICERO_ENV")
		v.BindEnv("loglevel", "VOICERO_LOG_LEVEL")
		v.BindEnv("storagepath", "VOICERO_STORAGE_PATH")
		v.BindEnv("logsdir", "VOICERO_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "VOICERO_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "VOICERO_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "VOICERO_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "VOICERO_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "VOICERO_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "VOICERO_DB_MAX_IDLE_CONNS")
		v.BindEnv("jobintervalseconds", "VOICERO_JOB_INTERVAL_SECONDS")
		v.BindEnv("refreshwindowdays", "VOICERO_REFRESH_WINDOW_DAYS")
		v.BindEnv("refreshworkers", "VOICERO_REFRESH_WORKERS")
		v.BindEnv("catalogcachettlseconds", "VOICERO_CATALOG_CACHE_TTL_SECONDS")
		v.BindEnv("emptyconversationretentiondays", "VOICERO_EMPTY_CONVERSATION_RETENTION_DAYS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if c.RefreshWindowDays <= 0 {
		return fmt.Errorf("refresh window must be positive, got %d days", c.RefreshWindowDays)
	}
	if c.JobIntervalSeconds <= 0 {
		return fmt.Errorf("job interval must be positive, got %d seconds", c.JobIntervalSeconds)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns an empty port; voicero serves no HTTP (implements cartridge.Config).
func (c *Config) GetPort() string {
	return ""
}

// GetPublicDirectory implements cartridge.Config.
func (c *Config) GetPublicDirectory() string {
	return ""
}

// GetAssetsPrefix implements cartridge.Config.
func (c *Config) GetAssetsPrefix() string {
	return ""
}

// GetAppName returns the application name.
func (c *Config) GetAppName() string {
	return c.AppName
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1
// - Development/Production: 10 (the refresher reads several websites in parallel)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// GetRefreshWorkers returns the number of websites the refresher builds concurrently.
func (c *Config) GetRefreshWorkers() int {
	if c.RefreshWorkers <= 0 {
		return 1
	}
	return c.RefreshWorkers
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
