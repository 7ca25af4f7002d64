package statestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/pkg/config"
	"github.com/wonny/inout/backend/pkg/redis"
)

func sampleState() contracts.State {
	return contracts.State{
		Regime:     contracts.RegimeOut,
		DayCounter: 41,
		OutDay:     30,
		WaitDays:   15,
		UpdatedAt:  time.Date(2024, 3, 8, 15, 30, 0, 0, time.UTC),
	}
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, contracts.ErrStateNotFound)

	require.NoError(t, s.Save(ctx, sampleState()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), got)

	require.NoError(t, s.Delete(ctx))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, contracts.ErrStateNotFound)
}

func TestFileStore(t *testing.T) {
	exercise(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json")))
}

func TestMemory(t *testing.T) {
	exercise(t, &Memory{})
}

func TestFileStore_RejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"regime":"SIDEWAYS"}`), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contracts.ErrStateNotFound)
}

func TestFromConfig(t *testing.T) {
	s, err := FromConfig(config.StateConfig{Store: config.StateStoreFile, FilePath: "x.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = FromConfig(config.StateConfig{Store: config.StateStoreRedis, Key: "k"}, redis.Wrap(nil))
	assert.ErrorIs(t, err, redis.ErrDisabled)
}

func TestRedisStore_Live(t *testing.T) {
	if testing.Short() || os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set")
	}
	rc, err := redis.New(&config.Config{Redis: config.RedisConfig{
		Host: os.Getenv("REDIS_HOST"), Port: "6379", Enabled: true,
	}})
	require.NoError(t, err)
	defer rc.Close()

	s, err := NewRedisStore(rc, "inout_test:state")
	require.NoError(t, err)
	exercise(t, s)
}
