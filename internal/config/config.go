// Package config loads service configuration in three layers: struct
// defaults, an optional YAML file, then PIZZA_-prefixed environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable, e.g.
// PIZZA_JWT_SECRET -> jwt.secret.
const EnvPrefix = "PIZZA_"

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "PIZZA_CONFIG"

var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/jwt-pizza-service/config.yaml",
}

type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gt=0,lte=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

type DatabaseConfig struct {
	// Driver is sqlite3 or postgres.
	Driver       string        `koanf:"driver" validate:"oneof=sqlite3 postgres"`
	DSN          string        `koanf:"dsn" validate:"required"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	MaxIdleConns int           `koanf:"max_idle_conns"`
	ConnTimeout  time.Duration `koanf:"conn_timeout"`
	// ListPerPage is the default page size for listing endpoints.
	ListPerPage int `koanf:"list_per_page" validate:"gt=0"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret" validate:"required"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

type FactoryConfig struct {
	URL    string `koanf:"url" validate:"required,url"`
	APIKey string `koanf:"api_key"`
}

// AdminConfig seeds a default admin account when the user table is empty.
type AdminConfig struct {
	Seed     bool   `koanf:"seed"`
	Name     string `koanf:"name"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	JWT      JWTConfig      `koanf:"jwt"`
	Factory  FactoryConfig  `koanf:"factory"`
	Admin    AdminConfig    `koanf:"admin"`
	Log      LogConfig      `koanf:"log"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3000,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite3",
			DSN:          "file:pizza.db?_foreign_keys=on",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
			ConnTimeout:  5 * time.Second,
			ListPerPage:  10,
		},
		JWT: JWTConfig{
			Issuer: "jwt-pizza-service",
			TTL:    time.Hour,
		},
		Factory: FactoryConfig{
			URL: "https://pizza-factory.cs329.click",
		},
		Admin: AdminConfig{
			Seed:     true,
			Name:     "常用名字",
			Email:    "a@jwt.com",
			Password: "admin",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, file, and environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// PIZZA_DATABASE_MAX_OPEN_CONNS -> database.max_open_conns
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks structural constraints with validator tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	// section and key are separated by the first underscore; the rest of the
	// key keeps its underscores (max_open_conns)
	return strings.Replace(s, "_", ".", 1)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
