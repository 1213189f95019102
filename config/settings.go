package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pevans/seminarfed/dialect"
	"github.com/rs/zerolog/log"
)

// Settings is the resolved configuration of a seminarfed process.
type Settings struct {
	DSN      string
	Fetch    FetchConfig
	Schedule string
	LogLevel string
	Dialects map[string]dialect.Overrides
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		DSN: "seminarfed.db",
		Fetch: FetchConfig{
			Timeout:   10 * time.Second,
			Attempts:  3,
			UserAgent: "seminarfed/1.0 (agenda importer)",
		},
		Schedule: "0 * * * *",
		LogLevel: "info",
	}
}

// Load resolves settings with precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file (~/.seminarfed/config.yaml)
// 3. Default values (lowest priority)
func Load() Settings {
	settings := Defaults()

	cfg, err := LoadConfigFile()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load config file; continuing with defaults and environment variables")
	}
	if cfg != nil {
		settings.apply(cfg)
	}

	if val := os.Getenv("SEMINARFED_DB"); val != "" {
		settings.DSN = val
	}
	if val := os.Getenv("SEMINARFED_SCHEDULE"); val != "" {
		settings.Schedule = val
	}
	if val := os.Getenv("SEMINARFED_LOG_LEVEL"); val != "" {
		settings.LogLevel = val
	}
	if val := os.Getenv("SEMINARFED_FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			settings.Fetch.Timeout = d
		} else {
			log.Warn().Str("value", val).Msg("ignoring invalid SEMINARFED_FETCH_TIMEOUT")
		}
	}
	if val := os.Getenv("SEMINARFED_FETCH_ATTEMPTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			settings.Fetch.Attempts = n
		} else {
			log.Warn().Str("value", val).Msg("ignoring invalid SEMINARFED_FETCH_ATTEMPTS")
		}
	}

	return settings
}

func (s *Settings) apply(cfg *FileConfig) {
	if cfg.Storage.DSN != "" {
		s.DSN = cfg.Storage.DSN
	}
	if cfg.Fetch.Timeout > 0 {
		s.Fetch.Timeout = cfg.Fetch.Timeout
	}
	if cfg.Fetch.Attempts > 0 {
		s.Fetch.Attempts = cfg.Fetch.Attempts
	}
	if cfg.Fetch.UserAgent != "" {
		s.Fetch.UserAgent = cfg.Fetch.UserAgent
	}
	if cfg.Schedule != "" {
		s.Schedule = cfg.Schedule
	}
	if cfg.LogLevel != "" {
		s.LogLevel = cfg.LogLevel
	}
	if cfg.Dialects != nil {
		s.Dialects = cfg.Dialects
	}
}
