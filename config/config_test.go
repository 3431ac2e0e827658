package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Galleria.Addr)
	assert.Equal(t, "galleria.db", cfg.Galleria.DbPath)
	assert.Equal(t, "public", cfg.Galleria.MediaRoot)
	assert.True(t, cfg.Galleria.BackgroundJobsEnabled)
	assert.Equal(t, 5, cfg.Save.IntervalMinutes)
}

func TestLoadHonoursEnvironment(t *testing.T) {
	t.Setenv("GALLERIA_ADDR", ":9999")
	t.Setenv("SAVE_INTERVAL_MINUTES", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Galleria.Addr)
	assert.Equal(t, 10, cfg.Save.IntervalMinutes)
}

func TestGetLogLevel(t *testing.T) {
	cases := map[string]slog.Leveler{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for value, expected := range cases {
		cfg := Config{Galleria: GalleriaConfig{LogLevel: value}}
		assert.Equal(t, expected, cfg.GetLogLevel(), value)
	}
}
