package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

type Config struct {
	Galleria GalleriaConfig
	Save     SaveConfig
}

type GalleriaConfig struct {
	Addr                  string `env:"GALLERIA_ADDR"`
	DbPath                string `env:"DB_PATH"`
	DataPath              string `env:"DATA_PATH"`
	MediaRoot             string `env:"MEDIA_ROOT"`
	LogLevel              string `env:"LOG_LEVEL"`
	BackgroundJobsEnabled bool   `env:"BACKGROUND_JOBS_ENABLED"`
}

type SaveConfig struct {
	Endpoint        string `env:"SAVE_ENDPOINT"`
	IntervalMinutes int    `env:"SAVE_INTERVAL_MINUTES"`
}

// Load fills the config from .env (when present) and the environment,
// over sensible local defaults.
func Load() (Config, error) {
	cfg := Config{
		Galleria: GalleriaConfig{
			Addr:                  ":8080",
			DbPath:                "galleria.db",
			DataPath:              "data/db.json",
			MediaRoot:             "public",
			LogLevel:              "info",
			BackgroundJobsEnabled: true,
		},
		Save: SaveConfig{
			Endpoint:        "http://localhost:8080/api/save-db",
			IntervalMinutes: 5,
		},
	}

	c := config.New()
	if _, err := os.Stat(".env"); err == nil {
		c.AddFeeder(feeder.DotEnv{Path: ".env"})
	}
	c.AddFeeder(feeder.Env{})
	c.AddStruct(&cfg)

	if err := c.Feed(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Galleria.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
