package backup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Manager keeps one AutoBackup per storage key.
type Manager struct {
	delay time.Duration
	sinks []Sink
	log   zerolog.Logger

	mu    sync.Mutex
	autos map[string]*AutoBackup
}

// NewManager returns a manager whose backups share delay and sinks.
func NewManager(delay time.Duration, sinks []Sink, log zerolog.Logger) *Manager {
	return &Manager{delay: delay, sinks: sinks, log: log, autos: make(map[string]*AutoBackup)}
}

// Attach returns the AutoBackup for key, creating it on first use.
func (m *Manager) Attach(key string) *AutoBackup {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.autos[key]; ok {
		return a
	}
	a := NewAutoBackup(key, m.delay, m.sinks, m.log)
	m.autos[key] = a
	return a
}

// Status reports the backup state for key. ok is false when no backup is
// attached to it.
func (m *Manager) Status(key string) (Status, bool) {
	m.mu.Lock()
	a, ok := m.autos[key]
	m.mu.Unlock()
	if !ok {
		return Status{Key: key}, false
	}
	return a.Status(), true
}

// Keys lists attached keys in order.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.autos))
	for k := range m.autos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StopAll stops every AutoBackup, flushing pending snapshots. It returns the
// first flush error.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	autos := make([]*AutoBackup, 0, len(m.autos))
	for _, a := range m.autos {
		autos = append(autos, a)
	}
	m.mu.Unlock()

	var firstErr error
	for _, a := range autos {
		if err := a.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
