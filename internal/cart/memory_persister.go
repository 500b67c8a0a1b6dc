package cart

import (
	"context"
	"sync"
)

// MemoryPersister keeps cart records in process memory.
type MemoryPersister struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{records: make(map[string][]byte)}
}

// Load returns a copy of the record stored under key.
func (p *MemoryPersister) Load(ctx context.Context, key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	data, ok := p.records[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under key.
func (p *MemoryPersister) Save(ctx context.Context, key string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records[key] = append([]byte(nil), data...)
	return nil
}
