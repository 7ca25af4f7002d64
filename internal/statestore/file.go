package statestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/wonny/inout/backend/internal/contracts"
)

// FileStore keeps the state as a JSON file, replaced atomically on save
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements contracts.StateStore
func (s *FileStore) Load(_ context.Context) (contracts.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return contracts.State{}, contracts.ErrStateNotFound
	}
	if err != nil {
		return contracts.State{}, fmt.Errorf("load state: %w", err)
	}
	return contracts.UnmarshalState(data)
}

// Save implements contracts.StateStore
func (s *FileStore) Save(_ context.Context, st contracts.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := contracts.MarshalState(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Delete removes the persisted state
func (s *FileStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Memory is a process-local store for backtests and tests
type Memory struct {
	mu    sync.Mutex
	state *contracts.State
}

// Load implements contracts.StateStore
func (m *Memory) Load(_ context.Context) (contracts.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return contracts.State{}, contracts.ErrStateNotFound
	}
	return *m.state, nil
}

// Save implements contracts.StateStore
func (m *Memory) Save(_ context.Context, st contracts.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &st
	return nil
}

// Delete removes the stored state
func (m *Memory) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}
