// Package config loads application configuration from an optional YAML file
// with environment-variable overrides. A .env file is honored in development.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the console.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Import   ImportConfig   `yaml:"import"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port" env:"PORT, default=8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL             string        `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS, default=25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME, default=30m"`
}

// RedisConfig holds the optional analytics cache settings.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED, default=false"`
	Addr    string `yaml:"addr" env:"REDIS_ADDR, default=localhost:6379"`
}

// AuthConfig holds bearer-credential settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL, default=24h"`
}

// ImportConfig bounds the CSV import endpoint.
type ImportConfig struct {
	MaxBodyBytes  int64   `yaml:"max_body_bytes" env:"IMPORT_MAX_BODY_BYTES, default=10485760"`
	RatePerMinute float64 `yaml:"rate_per_minute" env:"IMPORT_RATE_PER_MINUTE, default=30"`
}

// Load reads configuration from path (ignored when absent) and then applies
// environment overrides. DATABASE_URL and JWT_SECRET are required.
func Load(path string) (*Config, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (DATABASE_URL)")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	return cfg, nil
}
