// Package storage persists single keyed records for the stores. It stands in for the
// browser's local storage: every record is a JSON document overwritten wholesale.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no record exists under the state's key.
var ErrNotFound = errors.New("storage: record not found")

// State is one keyed record.
type State interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// Backend hands out States by key.
type Backend interface {
	State(key string) State
}

// MemoryState is an in-memory State, used for tests and ephemeral runs.
type MemoryState struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

func NewMemoryState(data []byte) *MemoryState {
	return &MemoryState{data: data}
}

// NewMemoryStateWithError returns a state whose every operation fails with err.
func NewMemoryStateWithError(err error) *MemoryState {
	return &MemoryState{err: err}
}

func (m *MemoryState) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryState) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = append([]byte{}, data...)
	m.saves++
	return nil
}

func (m *MemoryState) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = nil
	return nil
}

// Saves reports how many times Save succeeded.
func (m *MemoryState) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Fail makes every subsequent operation return err (nil restores normal behaviour).
func (m *MemoryState) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// MemoryBackend keeps one MemoryState per key.
type MemoryBackend struct {
	mu     sync.Mutex
	states map[string]*MemoryState
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{states: make(map[string]*MemoryState)}
}

func (b *MemoryBackend) State(key string) State {
	return b.Memory(key)
}

// Memory returns the concrete state for key, creating it on first use.
func (b *MemoryBackend) Memory(key string) *MemoryState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[key]
	if !ok {
		s = NewMemoryState(nil)
		b.states[key] = s
	}
	return s
}

// Compile-time interface checks.
var (
	_ State   = (*MemoryState)(nil)
	_ State   = (*FileState)(nil)
	_ State   = (*S3State)(nil)
	_ State   = (*RedisState)(nil)
	_ State   = (*SQLState)(nil)
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*S3Backend)(nil)
	_ Backend = (*RedisBackend)(nil)
	_ Backend = (*SQLBackend)(nil)
)
