package config_test

import (
	"encoding/base64"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/draftwizard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, config.BackendFile, cfg.Store)
	assert.Equal(t, ".draftwizard/drafts", cfg.Dir)
	assert.Equal(t, 2*time.Second, cfg.Debounce)
	assert.Equal(t, 30*time.Second, cfg.Backstop)
	assert.Equal(t, "draftwizard:", cfg.RedisPrefix)
	assert.True(t, cfg.RedisLock)
	assert.False(t, cfg.Encrypted())
}

func TestLoadFrom_Overrides(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	old := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("o", 32)))

	cfg, err := config.LoadFrom(map[string]string{
		"DRAFTWIZ_STORE":                    "redis",
		"DRAFTWIZ_REDIS_DB":                 "3",
		"DRAFTWIZ_REDIS_TTL":                "24h",
		"DRAFTWIZ_AUTOSAVE_DEBOUNCE":        "500ms",
		"DRAFTWIZ_ENCRYPTION_KEY":           key,
		"DRAFTWIZ_ENCRYPTION_FALLBACK_KEYS": old,
		"DRAFTWIZ_LOG_LEVEL":                "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, config.BackendRedis, cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)

	active, fallback, err := cfg.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Len(t, fallback, 1)

	lvl, err := config.ParseLevel(cfg.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown store": {"DRAFTWIZ_STORE": "s3"},
		"short key":     {"DRAFTWIZ_ENCRYPTION_KEY": base64.StdEncoding.EncodeToString([]byte("short"))},
		"not base64":    {"DRAFTWIZ_ENCRYPTION_KEY": "%%%"},
		"bad level":     {"DRAFTWIZ_LOG_LEVEL": "loud"},
		"bad duration":  {"DRAFTWIZ_AUTOSAVE_BACKSTOP": "soon"},
		"zero debounce": {"DRAFTWIZ_AUTOSAVE_DEBOUNCE": "0s"},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadFrom(environ)
			assert.Error(t, err)
		})
	}
}
