package statestore

import (
	"context"
	"fmt"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/pkg/redis"
)

// RedisStore keeps the engine state under a single key, without expiry
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store on an enabled client
func NewRedisStore(client *redis.Client, key string) (*RedisStore, error) {
	if client == nil || !client.Enabled() {
		return nil, fmt.Errorf("state store: %w", redis.ErrDisabled)
	}
	return &RedisStore{client: client, key: key}, nil
}

// Load implements contracts.StateStore
func (s *RedisStore) Load(ctx context.Context) (contracts.State, error) {
	data, err := s.client.Redis().Get(ctx, s.key).Bytes()
	if redis.IsMiss(err) {
		return contracts.State{}, contracts.ErrStateNotFound
	}
	if err != nil {
		return contracts.State{}, fmt.Errorf("load state %s: %w", s.key, err)
	}
	return contracts.UnmarshalState(data)
}

// Save implements contracts.StateStore
func (s *RedisStore) Save(ctx context.Context, st contracts.State) error {
	data, err := contracts.MarshalState(st)
	if err != nil {
		return err
	}
	if err := s.client.Redis().Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save state %s: %w", s.key, err)
	}
	return nil
}

// Delete removes the persisted state
func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Redis().Del(ctx, s.key).Err()
}
