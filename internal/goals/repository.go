package goals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// StorageKey is the key goals are persisted under.
const StorageKey = "financialGoals"

var ErrNotFound = errors.New("key not found")

// Store is a byte-oriented key-value backend. Get returns ErrNotFound for
// missing keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Repository persists Goals as JSON. Writes are last-write-wins.
type Repository struct {
	store Store
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// Load returns empty goals when nothing has been saved yet.
func (r *Repository) Load(ctx context.Context) (Goals, error) {
	raw, err := r.store.Get(ctx, StorageKey)
	if errors.Is(err, ErrNotFound) {
		return Goals{CategoryBudgets: []CategoryBudget{}}, nil
	}
	if err != nil {
		return Goals{}, fmt.Errorf("load goals: %w", err)
	}
	var g Goals
	if err := json.Unmarshal(raw, &g); err != nil {
		return Goals{}, fmt.Errorf("decode goals: %w", err)
	}
	if g.CategoryBudgets == nil {
		g.CategoryBudgets = []CategoryBudget{}
	}
	return g, nil
}

func (r *Repository) Save(ctx context.Context, g Goals) error {
	if err := g.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	if err := r.store.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}
