package mocks

import (
	"context"
	"sync"

	"github.com/V4T54L/causeway/internal/domain"
)

// MockExecutionRepository is a mock implementation of domain.ExecutionRepository for testing.
type MockExecutionRepository struct {
	mu      sync.Mutex
	Saved   []domain.Execution
	Batches [][]domain.Execution
	SaveErr error
	GetErr  error
}

func (m *MockExecutionRepository) Save(ctx context.Context, exec domain.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, exec)
	return nil
}

func (m *MockExecutionRepository) SaveBatch(ctx context.Context, execs []domain.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Batches = append(m.Batches, execs)
	m.Saved = append(m.Saved, execs...)
	return nil
}

func (m *MockExecutionRepository) Get(ctx context.Context, id string) (domain.Execution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.Execution{}, m.GetErr
	}
	for _, e := range m.Saved {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Execution{}, domain.ErrExecutionNotFound
}

// MockViewCache is an in-memory domain.ViewCache.
type MockViewCache struct {
	mu      sync.Mutex
	Entries map[string][]byte
	Gets    int
	Sets    int
	SetErr  error
}

func (m *MockViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	v, ok := m.Entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (m *MockViewCache) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Entries == nil {
		m.Entries = make(map[string][]byte)
	}
	m.Entries[key] = value
	return nil
}

// MockWALRepository records written executions and replays them back.
type MockWALRepository struct {
	mu        sync.Mutex
	Written   []domain.Execution
	Truncated int
	WriteErr  error
	ReplayErr error
}

func (m *MockWALRepository) Write(ctx context.Context, exec domain.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written = append(m.Written, exec)
	return nil
}

func (m *MockWALRepository) Replay(ctx context.Context, handler func(exec domain.Execution) error) error {
	m.mu.Lock()
	written := append([]domain.Execution(nil), m.Written...)
	m.mu.Unlock()
	if m.ReplayErr != nil {
		return m.ReplayErr
	}
	for _, e := range written {
		if err := handler(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockWALRepository) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Truncated++
	m.Written = nil
	return nil
}

// MockAPIKeyRepository accepts the keys listed in Valid.
type MockAPIKeyRepository struct {
	Valid map[string]bool
	Err   error
}

func (m *MockAPIKeyRepository) IsValid(ctx context.Context, key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.Valid[key], nil
}
