package config_test

import (
	"log/slog"
	"testing"

	"github.com/karloscodes/cartridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicero/internal/config"
)

var (
	_ cartridge.Config            = (*config.Config)(nil)
	_ cartridge.LogConfigProvider = (*config.Config)(nil)
)

func TestLogConfigFromProvider(t *testing.T) {
	cfg := &config.Config{
		AppName:          "voicero",
		Environment:      config.Production,
		LogLevel:         config.LogLevelWarn,
		LogsDirectory:    "/var/log/voicero",
		LogsMaxSizeInMb:  20,
		LogsMaxBackups:   10,
		LogsMaxAgeInDays: 30,
	}

	logCfg := cartridge.LogConfigFromProvider(cfg)

	assert.Equal(t, "warn", logCfg.Level)
	assert.Equal(t, "/var/log/voicero", logCfg.Directory)
	assert.Equal(t, 20, logCfg.MaxSizeMB)
	assert.Equal(t, 10, logCfg.MaxBackups)
	assert.Equal(t, 30, logCfg.MaxAgeDays)
	assert.Equal(t, "voicero", logCfg.AppName)
}

func TestNewLoggerRespectsConfiguredLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	cfg := &config.Config{
		AppName:     "voicero",
		Environment: config.Test,
		LogLevel:    config.LogLevelWarn,
	}

	logger := cartridge.NewLogger(cfg, nil)
	require.NotNil(t, logger)

	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}

func TestServerSettingsAreEmpty(t *testing.T) {
	cfg := &config.Config{}

	assert.Empty(t, cfg.GetPort())
	assert.Empty(t, cfg.GetPublicDirectory())
	assert.Empty(t, cfg.GetAssetsPrefix())
}
