// Package config loads draftwiz settings from DRAFTWIZ_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "DRAFTWIZ_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the process configuration.
type Config struct {
	Store string `env:"STORE" envDefault:"file"`
	Dir   string `env:"DIR"   envDefault:".draftwizard/drafts"`

	RedisAddr     string        `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"       envDefault:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX"   envDefault:"draftwizard:"`
	RedisTTL      time.Duration `env:"REDIS_TTL"      envDefault:"0s"`
	RedisLock     bool          `env:"REDIS_LOCK"     envDefault:"true"`

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
	EncryptionKey          string   `env:"ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `env:"ENCRYPTION_FALLBACK_KEYS" envSeparator:","`

	Debounce time.Duration `env:"AUTOSAVE_DEBOUNCE" envDefault:"2s"`
	Backstop time.Duration `env:"AUTOSAVE_BACKSTOP" envDefault:"30s"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given variables instead of the process environment
// when environ is non-nil.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: Prefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the parser cannot.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store))
	}
	if c.Debounce <= 0 {
		errs = append(errs, errors.New("autosave debounce must be positive"))
	}
	if c.Backstop < 0 {
		errs = append(errs, errors.New("autosave backstop cannot be negative"))
	}
	if _, _, err := c.Keys(); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Encrypted reports whether encryption at rest is configured.
func (c Config) Encrypted() bool {
	return c.EncryptionKey != ""
}

// Keys decodes the encryption keys. Both results are nil when encryption is off.
func (c Config) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(c.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, k := range c.EncryptionFallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

// ParseLevel maps a level name to slog.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
