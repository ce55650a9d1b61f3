package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/persistence/middleware"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
)

// NewEngine builds the library facade from the config: programs come from
// cfg.ProgramsDir, or from the bundled examples when it is empty.
func NewEngine(cfg config.Config, logger *slog.Logger, hooks domain.MachineHooks) (*turing.Engine, error) {
	eng, err := turing.New(cfg.ProgramsDir,
		turing.WithLogger(logger),
		turing.WithHooks(hooks),
		turing.WithStepLimit(cfg.StepLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init engine: %w", err)
	}
	return eng, nil
}

// NewSessionManager wires the session host used by the HTTP server. Sessions are kept
// in Redis (with a distributed lock) when cfg.Redis.Addr is set, in memory otherwise.
// The returned close function releases the store.
func NewSessionManager(cfg config.Config, loader ports.ProgramLoader, logger *slog.Logger, hooks domain.MachineHooks) (*session.Manager, func() error, error) {
	opts := []session.Option{
		session.WithLoader(loader),
		session.WithLogger(logger),
		session.WithHooks(hooks),
		session.WithStepLimit(cfg.StepLimit),
	}

	if cfg.Redis.Addr == "" {
		logger.Info("using in-memory session store")
		store, err := withEncryption(memory.NewStore(), cfg.Encryption)
		if err != nil {
			return nil, nil, err
		}
		return session.NewManager(store, opts...), func() error { return nil }, nil
	}

	var storeOpts []redis.Option
	if cfg.Redis.Prefix != "" {
		storeOpts = append(storeOpts, redis.WithPrefix(cfg.Redis.Prefix))
	}
	if cfg.Redis.TTL > 0 {
		storeOpts = append(storeOpts, redis.WithTTL(cfg.Redis.TTL))
	}
	redisStore := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
	store, err := withEncryption(redisStore, cfg.Encryption)
	if err != nil {
		redisStore.Close()
		return nil, nil, err
	}
	locker := redis.NewLocker(redisStore.Client(), cfg.Redis.Prefix)
	opts = append(opts, session.WithLocker(locker))

	logger.Info("using redis session store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return session.NewManager(store, opts...), redisStore.Close, nil
}

// withEncryption wraps store with the encryption middleware when a key is configured.
func withEncryption(store ports.SnapshotStore, cfg config.EncryptionConfig) (ports.SnapshotStore, error) {
	if cfg.Key == "" {
		return store, nil
	}
	active, err := middleware.ParseKey(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	encCfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		encCfg.FallbackKeys = append(encCfg.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(encCfg)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}
