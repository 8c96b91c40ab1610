package cache

import (
	"fmt"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/infrastructure/config"
)

// NewIdempotencyStore builds the idempotency store selected by configuration.
// "redis" shares state across instances; "memory" is for single-instance and
// local development.
func NewIdempotencyStore(cfg *config.Config) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Backend {
	case "redis":
		store, err := NewRedisIdempotencyStore(RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis idempotency store: %w", err)
		}
		return store, nil
	case "memory":
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}
