// Package config loads service settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/elecmate/quotedesk/internal/validation"
)

const (
	defaultEnv             = "development"
	defaultDBPath          = "./quotedesk.db"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds application configuration.
type Config struct {
	Env             string        `mapstructure:"app_env"`
	DBPath          string        `mapstructure:"db_path" validate:"required"`
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	APIToken        string        `mapstructure:"api_token"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	SeedDemo        bool          `mapstructure:"seed_demo"`
}

// Load reads configuration. Environment variables (DB_PATH, PORT, ...) win
// over values from path, which win over defaults. An empty path skips the
// config file.
func Load(path string) (Config, error) {
	// Best-effort: a missing .env is fine; production injects real env vars.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("api_token", "")
	v.SetDefault("shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("seed_demo", false)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validation.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	switch c.Env {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Warnings lists settings that are allowed but probably wrong.
func (c Config) Warnings() []string {
	var warnings []string
	if c.APIToken == "" && !c.IsDev() {
		warnings = append(warnings, "API_TOKEN is not set; the API accepts unauthenticated requests")
	}
	if c.SeedDemo && !c.IsDev() {
		warnings = append(warnings, "SEED_DEMO is enabled outside development")
	}
	return warnings
}
