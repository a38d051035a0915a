package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
)

// MockStore is a minimal in-memory HistoryStore used to exercise the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]*domain.Conversation
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.Conversation)}
}

func (m *MockStore) Save(_ context.Context, sessionID string, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = conv.Clone()
	return nil
}

func (m *MockStore) Load(_ context.Context, sessionID string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return conv.Clone(), nil
}

func (m *MockStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestHistoryStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, NewMockStore())
}
