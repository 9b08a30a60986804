// Package config loads application settings.
// Values are layered: struct defaults, then an optional YAML file, then environment variables.
// Environment names follow the KEY_SUBKEY convention (DB_HOST -> db.host).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an optional YAML configuration file.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the root configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	DB     DBConfig     `koanf:"db"`
	Redis  RedisConfig  `koanf:"redis"`
	JWT    JWTConfig    `koanf:"jwt"`
	Media  MediaConfig  `koanf:"media"`
	CORS   CORSConfig   `koanf:"cors"`
	Login  LoginConfig  `koanf:"login"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `koanf:"mode"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honored.
	// Empty trusts none and the client IP is the connection's remote address.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Driver   string `koanf:"driver"` // postgres | sqlite
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
	Path     string `koanf:"path"` // sqlite file
	Migrate  bool   `koanf:"migrate"`
}

// RedisConfig holds Redis settings. An empty Host disables Redis.
type RedisConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Password string `koanf:"password"`
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// JWTConfig holds API token settings.
type JWTConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

// MediaConfig holds uploaded file settings.
type MediaConfig struct {
	Root string `koanf:"root"`
	URL  string `koanf:"url"`
}

// CORSConfig lists allowed origins. Empty disables the CORS middleware.
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// LoginConfig rate limits token issuance per client IP.
type LoginConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json | text
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", Mode: "release", TrustedProxies: []string{}},
		DB: DBConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
			Path:    "recipe.db",
		},
		Redis: RedisConfig{Port: "6379"},
		JWT:   JWTConfig{TTL: 30 * 24 * time.Hour},
		Media: MediaConfig{Root: "media", URL: "/media"},
		Login: LoginConfig{RPS: 1, Burst: 10},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, CONFIG_PATH and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc maps DB_HOST to db.host. Variables outside the known
// sections are dropped so unrelated environment does not leak into the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	switch section {
	case "server", "db", "redis", "jwt", "media", "cors", "login", "log":
		return section + "." + rest
	}
	return ""
}

// Validate checks settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	if c.JWT.Secret == "" && c.Server.Mode == "release" {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.Login.RPS <= 0 || c.Login.Burst <= 0 {
		return errors.New("login rate limit must be positive")
	}
	return nil
}
