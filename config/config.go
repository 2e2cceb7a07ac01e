package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"feedctl/pkg/endpoint"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

const DefaultHTTPTimeout = 30 * time.Second

type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type APIConfig struct {
	BaseURL      string        `yaml:"base_url" validate:"required,url"`
	PostsPath    string        `yaml:"posts_path" validate:"required,startswith=/"`
	LoginPath    string        `yaml:"login_path" validate:"required,startswith=/"`
	RegisterPath string        `yaml:"register_path" validate:"required,startswith=/"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
}

type SessionConfig struct {
	Store string      `yaml:"store" validate:"oneof=file redis memory"`
	File  string      `yaml:"file"`
	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Key      string `yaml:"key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

var ErrInvalidConfig = errors.New("invalid config")

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:      endpoint.DefaultBaseURL,
			PostsPath:    endpoint.PostsPath,
			LoginPath:    endpoint.LoginPath,
			RegisterPath: endpoint.RegisterPath,
			Timeout:      DefaultHTTPTimeout,
		},
		Session: SessionConfig{
			Store: SessionStoreFile,
			File:  defaultSessionFile(),
			Redis: RedisConfig{Key: "feedctl:" + endpoint.AccessTokenKey},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the config from defaults, the YAML file at path (optional, an
// empty path skips it) and FEEDCTL_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Session.Store == SessionStoreRedis && c.Session.Redis.Addr == "" {
		return fmt.Errorf("%w: session.redis.addr is required for the redis store", ErrInvalidConfig)
	}
	if c.Session.Store == SessionStoreFile && c.Session.File == "" {
		return fmt.Errorf("%w: session.file is required for the file store", ErrInvalidConfig)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("FEEDCTL_API_URL", &cfg.API.BaseURL)
	str("FEEDCTL_API_KEY", &cfg.API.APIKey)
	str("FEEDCTL_SESSION_STORE", &cfg.Session.Store)
	str("FEEDCTL_SESSION_FILE", &cfg.Session.File)
	str("FEEDCTL_REDIS_ADDR", &cfg.Session.Redis.Addr)
	str("FEEDCTL_REDIS_PASSWORD", &cfg.Session.Redis.Password)
	str("FEEDCTL_LOG_LEVEL", &cfg.Log.Level)
	str("FEEDCTL_LOG_FORMAT", &cfg.Log.Format)
	str("FEEDCTL_METRICS_ADDR", &cfg.Metrics.Addr)

	if v, ok := lookup("FEEDCTL_HTTP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: FEEDCTL_HTTP_TIMEOUT: %v", ErrInvalidConfig, err)
		}
		cfg.API.Timeout = d
	}
	if v, ok := lookup("FEEDCTL_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: FEEDCTL_REDIS_DB: %v", ErrInvalidConfig, err)
		}
		cfg.Session.Redis.DB = db
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "feedctl", "session.yaml")
}
