// Package portfolio owns the mutable collection of properties.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/persistence"
)

var (
	// ErrNotFound is returned when no property has the requested id.
	ErrNotFound = errors.New("property not found")
	// ErrDuplicateID is returned when adding a property whose id is taken.
	ErrDuplicateID = errors.New("property id already exists")
	// ErrRecordIndex is returned for an out-of-range record position.
	ErrRecordIndex = errors.New("record index out of range")
)

// Persister loads and saves the whole collection.
type Persister interface {
	Load(ctx context.Context) ([]domain.Property, error)
	Save(ctx context.Context, props []domain.Property) error
}

// Listener receives a snapshot after every mutation.
type Listener func(props []domain.Property)

// Store is the in-memory portfolio. Mutations are visible to the next read
// immediately; saving through the Persister afterwards is best effort.
type Store struct {
	// commitMu orders save and notify by commit. Reads only take mu.
	commitMu  sync.Mutex
	mu        sync.RWMutex
	props     []domain.Property
	persister Persister
	log       zerolog.Logger

	subMu  sync.Mutex
	subs   map[int]Listener
	nextID int
}

// NewStore returns a store holding props that saves through p.
func NewStore(p Persister, props []domain.Property, log zerolog.Logger) *Store {
	if props == nil {
		props = []domain.Property{}
	}
	return &Store{
		props:     domain.CloneAll(props),
		persister: p,
		log:       log,
		subs:      make(map[int]Listener),
	}
}

// Open loads the collection from p. When nothing was stored yet the store
// starts with seed, which may be nil.
func Open(ctx context.Context, p Persister, seed []domain.Property, log zerolog.Logger) (*Store, error) {
	props, err := p.Load(ctx)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		log.Info().Int("seeded", len(seed)).Msg("No stored portfolio, starting fresh")
		props = seed
	case err != nil:
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	return NewStore(p, props, log), nil
}

// List returns a copy of every property in collection order.
func (s *Store) List() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAll(s.props)
}

// Len returns the number of properties.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props)
}

// Get returns the property with the given id.
func (s *Store) Get(id string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Property{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.props[i].Clone(), nil
}

// Add validates p and puts it at the front of the collection, assigning a
// fresh id when p has none.
func (s *Store) Add(ctx context.Context, p domain.Property) (domain.Property, error) {
	if err := p.Validate(); err != nil {
		return domain.Property{}, err
	}
	p = p.Clone()
	if p.ID == "" {
		p.ID = domain.NewID()
	}
	p.RentalHistory = domain.NormalizeRecords(p.RentalHistory)

	err := s.mutate(ctx, func() error {
		if s.indexOf(p.ID) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		s.props = append([]domain.Property{p}, s.props...)
		return nil
	})
	if err != nil {
		return domain.Property{}, err
	}
	s.log.Info().Str("property_id", p.ID).Msg("Property added")
	return p.Clone(), nil
}

// Update replaces the property with p's id. Nothing changes when the id is
// unknown; ErrNotFound tells the caller so.
func (s *Store) Update(ctx context.Context, p domain.Property) (domain.Property, error) {
	if err := p.Validate(); err != nil {
		return domain.Property{}, err
	}
	p = p.Clone()
	p.RentalHistory = domain.NormalizeRecords(p.RentalHistory)

	err := s.mutate(ctx, func() error {
		i := s.indexOf(p.ID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
		}
		s.props[i] = p
		return nil
	})
	if err != nil {
		return domain.Property{}, err
	}
	s.log.Info().Str("property_id", p.ID).Msg("Property updated")
	return p.Clone(), nil
}

// Delete removes the property. Confirmation is the caller's job.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, func() error {
		i := s.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		s.props = append(s.props[:i:i], s.props[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("property_id", id).Msg("Property deleted")
	return nil
}

// Restore replaces the whole collection. Properties are not validated so
// any backup that parsed can be restored; records are normalized.
func (s *Store) Restore(ctx context.Context, props []domain.Property) error {
	next := domain.CloneAll(props)
	if next == nil {
		next = []domain.Property{}
	}
	for i := range next {
		next[i].RentalHistory = domain.NormalizeRecords(next[i].RentalHistory)
	}
	err := s.mutate(ctx, func() error {
		s.props = next
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Int("property_count", len(next)).Msg("Portfolio restored")
	return nil
}

// AddRecords appends normalized records to a property's history.
func (s *Store) AddRecords(ctx context.Context, id string, records []domain.FinancialRecord) (domain.Property, error) {
	normalized := domain.NormalizeRecords(records)
	var out domain.Property
	err := s.mutate(ctx, func() error {
		i := s.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		p := s.props[i].Clone()
		p.RentalHistory = append(p.RentalHistory, normalized...)
		s.props[i] = p
		out = p.Clone()
		return nil
	})
	if err != nil {
		return domain.Property{}, err
	}
	s.log.Info().Str("property_id", id).Int("record_count", len(normalized)).Msg("Records added")
	return out, nil
}

// DeleteRecord removes the record at index from a property's history.
func (s *Store) DeleteRecord(ctx context.Context, id string, index int) (domain.Property, error) {
	var out domain.Property
	err := s.mutate(ctx, func() error {
		i := s.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		p := s.props[i].Clone()
		if index < 0 || index >= len(p.RentalHistory) {
			return fmt.Errorf("%w: %d", ErrRecordIndex, index)
		}
		p.RentalHistory = append(p.RentalHistory[:index:index], p.RentalHistory[index+1:]...)
		s.props[i] = p
		out = p.Clone()
		return nil
	})
	if err != nil {
		return domain.Property{}, err
	}
	s.log.Info().Str("property_id", id).Int("record_index", index).Msg("Record deleted")
	return out, nil
}

// Subscribe registers fn to run after every successful mutation. The
// returned function removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// mutate applies fn under the write lock, then saves and notifies outside
// it, so reads don't wait for the backend. Writers are serialized so
// persister and listeners see snapshots in commit order. A failed save is
// logged and never rolls the mutation back.
func (s *Store) mutate(ctx context.Context, fn func() error) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := domain.CloneAll(s.props)
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Save(ctx, snapshot); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist portfolio")
		}
	}
	s.notify(snapshot)
	return nil
}

func (s *Store) notify(snapshot []domain.Property) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(domain.CloneAll(snapshot))
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.props {
		if s.props[i].ID == id {
			return i
		}
	}
	return -1
}
