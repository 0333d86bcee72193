package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

const memoryBucket = "local"

// Memory keeps blobs in process memory under mem://local/<name>.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Put implements Blobs.
func (m *Memory) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = append([]byte(nil), data...)
	return fmt.Sprintf("mem://%s/%s", memoryBucket, name), nil
}

// Fetch implements Blobs.
func (m *Memory) Fetch(_ context.Context, uri string) ([]byte, error) {
	_, name, err := SplitURI(uri, "mem")
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return append([]byte(nil), data...), nil
}

// Names lists stored blob names.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.blobs))
	for n := range m.blobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
