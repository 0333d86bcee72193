package portfolio

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/persistence"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// BaseKey is the storage key, persistence.DefaultKey when empty.
	BaseKey string
	// PerUser gives every logged-in user their own key, BaseKey_<user>.
	PerUser bool
	// Seed returns the portfolio for a key with nothing stored. Nil means empty.
	Seed func() []domain.Property
	// OnOpen runs once for every store the registry opens.
	OnOpen func(key string, s *Store)
}

// Registry opens and caches one Store per storage key.
type Registry struct {
	backend persistence.Backend
	opts    RegistryOptions
	log     zerolog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry returns a registry over backend.
func NewRegistry(backend persistence.Backend, opts RegistryOptions, log zerolog.Logger) *Registry {
	if opts.BaseKey == "" {
		opts.BaseKey = persistence.DefaultKey
	}
	return &Registry{
		backend: backend,
		opts:    opts,
		log:     log,
		stores:  make(map[string]*Store),
	}
}

// Key returns the storage key for user.
func (r *Registry) Key(user string) string {
	user = strings.TrimSpace(user)
	if !r.opts.PerUser || user == "" {
		return r.opts.BaseKey
	}
	return r.opts.BaseKey + "_" + strings.ToLower(user)
}

// Store returns the store for user, opening it on first use.
func (r *Registry) Store(ctx context.Context, user string) (*Store, error) {
	key := r.Key(user)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[key]; ok {
		return s, nil
	}

	var seed []domain.Property
	if r.opts.Seed != nil {
		seed = r.opts.Seed()
	}
	log := r.log.With().Str("storage_key", key).Logger()
	s, err := Open(ctx, persistence.NewKeyed(r.backend, key), seed, log)
	if err != nil {
		return nil, err
	}
	r.stores[key] = s
	if r.opts.OnOpen != nil {
		r.opts.OnOpen(key, s)
	}
	log.Debug().Msg("Portfolio store opened")
	return s, nil
}

// Keys lists the keys of every open store.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.stores))
	for k := range r.stores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
