package db

import (
	"embed"
	"fmt"
	"sync"
)

// MemoryStore keeps snapshots in a plain map. It backs tests and runs
// without a database path configured.
type MemoryStore struct {
	m    sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string][]byte{},
	}
}

func (ms *MemoryStore) ApplyMigrations(migrations embed.FS) error {
	return nil
}

func (ms *MemoryStore) GetValue(key string) ([]byte, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	value, ok := ms.data[key]
	if !ok {
		return nil, fmt.Errorf("no value stored for %s", key)
	}
	return append([]byte(nil), value...), nil
}

func (ms *MemoryStore) UpsertValue(key string, value []byte) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.data[key] = append([]byte(nil), value...)
	return nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
