package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/draftwizard"
	"github.com/aretw0/draftwizard/internal/config"
	"github.com/aretw0/draftwizard/pkg/adapters/file"
	"github.com/aretw0/draftwizard/pkg/adapters/memory"
	redisstore "github.com/aretw0/draftwizard/pkg/adapters/redis"
	"github.com/aretw0/draftwizard/pkg/persistence"
	"github.com/aretw0/draftwizard/pkg/persistence/middleware"
	"github.com/aretw0/draftwizard/pkg/ports"
)

// BuildWizard assembles a Wizard from configuration: the configured store,
// its distributed lock, encryption at rest and the autosave timings.
func BuildWizard(cfg config.Config, logger *slog.Logger) (*draftwizard.Wizard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []draftwizard.Option{
		draftwizard.WithLogger(logger),
		draftwizard.WithAutosave(
			persistence.WithDebounce(cfg.Debounce),
			persistence.WithBackstop(cfg.Backstop),
		),
	}

	store, storeOpts, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, storeOpts...)

	if cfg.Encrypted() {
		active, fallback, err := cfg.Keys()
		if err != nil {
			return nil, err
		}
		opts = append(opts, draftwizard.WithMiddleware(middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})))
	}

	logger.Debug("wizard configured", "store", cfg.Store, "encrypted", cfg.Encrypted(),
		"debounce", cfg.Debounce, "backstop", cfg.Backstop)
	return draftwizard.New(store, opts...), nil
}

func buildStore(cfg config.Config) (ports.DraftStore, []draftwizard.Option, error) {
	switch cfg.Store {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile:
		return file.New(cfg.Dir), nil, nil
	case config.BackendRedis:
		s := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redisstore.WithPrefix(cfg.RedisPrefix),
			redisstore.WithTTL(cfg.RedisTTL),
		)
		opts := []draftwizard.Option{draftwizard.WithCloser(s)}
		if cfg.RedisLock {
			opts = append(opts, draftwizard.WithLocker(redisstore.NewLocker(s.Client(), s.Prefix())))
		}
		return s, opts, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}
