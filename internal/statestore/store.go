// Package statestore persists the engine state between restarts.
package statestore

import (
	"context"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/pkg/config"
	"github.com/wonny/inout/backend/pkg/redis"
)

// Store is a StateStore that can also forget its state (state reset)
type Store interface {
	contracts.StateStore
	Delete(ctx context.Context) error
}

// FromConfig picks the configured backend. rc may be nil for the file store.
func FromConfig(cfg config.StateConfig, rc *redis.Client) (Store, error) {
	if cfg.Store == config.StateStoreRedis {
		return NewRedisStore(rc, cfg.Key)
	}
	return NewFileStore(cfg.FilePath), nil
}
