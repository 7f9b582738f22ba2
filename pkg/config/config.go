// Package config loads application configuration from defaults, an optional
// YAML file and SHOP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marshallshelly/costume-shop/pkg/logger"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
)

// Environments recognised by DatabaseName.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Config represents the application configuration.
type Config struct {
	Environment string         `yaml:"environment"`
	Database    DatabaseConfig `yaml:"database"`
	Server      ServerConfig   `yaml:"server"`
	Log         logger.Config  `yaml:"log"`
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`

	// Name overrides the environment-selected database when set.
	Name     string `yaml:"name"`
	DevName  string `yaml:"dev_name"`
	TestName string `yaml:"test_name"`

	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	TraceLevel      logger.Level  `yaml:"trace_level"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	StaticDir         string        `yaml:"static_dir"`
	AccessTokenSecret string        `yaml:"access_token_secret"`
	AccessTokenTTL    time.Duration `yaml:"access_token_ttl"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Database: DatabaseConfig{
			Host:       "localhost",
			Port:       5432,
			SSLMode:    "disable",
			DevName:    "costume_shop_db_dev",
			TestName:   "costume_shop_db_test",
			MaxConns:   10,
			MinConns:   2,
			TraceLevel: logger.LevelWarn,
		},
		Server: ServerConfig{
			Addr:            ":9090",
			StaticDir:       "public",
			AccessTokenTTL:  24 * time.Hour,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: logger.DefaultConfig(),
	}
}

// Load reads path (if non-empty and present) and applies the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("SHOP_ENV", &c.Environment)
	str("SHOP_DB_URL", &c.Database.URL)
	str("SHOP_DB_HOST", &c.Database.Host)
	str("SHOP_DB_USER", &c.Database.User)
	str("SHOP_DB_PASSWORD", &c.Database.Password)
	str("SHOP_DB_NAME", &c.Database.Name)
	str("SHOP_DB_SSLMODE", &c.Database.SSLMode)
	str("SHOP_HTTP_ADDR", &c.Server.Addr)
	str("SHOP_STATIC_DIR", &c.Server.StaticDir)
	str("SHOP_ACCESS_TOKEN_SECRET", &c.Server.AccessTokenSecret)
	str("SHOP_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("SHOP_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = logger.Level(v)
	}
	if v, ok := lookup("SHOP_DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SHOP_DB_PORT %q: %w", v, err)
		}
		c.Database.Port = port
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("database host or url is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port %d", c.Database.Port)
	}
	return nil
}

// DatabaseName returns the explicit name, else the test or development
// database depending on the environment.
func (c *Config) DatabaseName() string {
	if c.Database.Name != "" {
		return c.Database.Name
	}
	if c.Environment == EnvTest {
		return c.Database.TestName
	}
	return c.Database.DevName
}

// RuntimeConfig builds the pool configuration. log may be nil.
func (c *Config) RuntimeConfig(log *slog.Logger) *runtime.Config {
	return &runtime.Config{
		URL:             c.Database.URL,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Database:        c.DatabaseName(),
		User:            c.Database.User,
		Password:        c.Database.Password,
		SSLMode:         c.Database.SSLMode,
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		Logger:          log,
		TraceLevel:      c.Database.TraceLevel.Slog(),
	}
}
