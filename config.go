package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the runtime configuration, read from the environment and then
// overridden by command-line flags.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GCPProject      string        `env:"GCP_PROJECT_ID"`
	GCPRegion       string        `env:"GCP_REGION"`
	GeminiModel     string        `env:"GEMINI_MODEL"`
	ContentFile     string        `env:"WORDPLAY_CONTENT_FILE"`
	StatsDB         string        `env:"WORDPLAY_STATS_DB"`
	SessionTTL      time.Duration `env:"WORDPLAY_SESSION_TTL" envDefault:"2h"`
	JanitorInterval time.Duration `env:"WORDPLAY_JANITOR_INTERVAL" envDefault:"5m"`
	LogLevel        string        `env:"WORDPLAY_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid session TTL %s", c.SessionTTL)
	}
	if c.JanitorInterval <= 0 {
		return fmt.Errorf("invalid janitor interval %s", c.JanitorInterval)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// newLogger builds the production logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
