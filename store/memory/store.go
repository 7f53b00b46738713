package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/elmortem/assetfinder/store"
)

// MemoryStore keeps the persisted cache in process memory. Useful for
// tests and for tools that never want on-disk state. Saved containers
// are deep-copied through their JSON form, so callers cannot mutate
// what was persisted.
type MemoryStore struct {
	mu   sync.RWMutex
	blob []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Name returns the identifier name defined for this store.
func (*MemoryStore) Name() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (ms *MemoryStore) Open(ctx context.Context) error {
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the store is no longer needed.
func (ms *MemoryStore) Close(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.blob = nil
	return nil
}

func (ms *MemoryStore) Load(ctx context.Context) (*store.Container, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.blob == nil {
		return nil, store.ErrNotExist
	}
	var c store.Container
	if err := json.Unmarshal(ms.blob, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (ms *MemoryStore) Save(ctx context.Context, c *store.Container) error {
	blob, err := json.Marshal(c)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.blob = blob
	return nil
}
