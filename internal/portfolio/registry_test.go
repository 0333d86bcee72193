package portfolio

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/persistence"
)

func TestRegistry_Key(t *testing.T) {
	shared := NewRegistry(persistence.NewMemoryStore(), RegistryOptions{}, zerolog.Nop())
	perUser := NewRegistry(persistence.NewMemoryStore(), RegistryOptions{PerUser: true, BaseKey: "k"}, zerolog.Nop())

	assert.Equal(t, persistence.DefaultKey, shared.Key("admin"))
	assert.Equal(t, "k_admin", perUser.Key("Admin"))
	assert.Equal(t, "k", perUser.Key(""))
}

func TestRegistry_StoreIsCachedAndPersisted(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemoryStore()
	var opened []string
	r := NewRegistry(backend, RegistryOptions{
		PerUser: true,
		Seed:    domain.SampleProperties,
		OnOpen:  func(key string, _ *Store) { opened = append(opened, key) },
	}, zerolog.Nop())

	s1, err := r.Store(ctx, "ana")
	require.NoError(t, err)
	s2, err := r.Store(ctx, "ana")
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, len(domain.SampleProperties()), s1.Len())

	require.NoError(t, s1.Delete(ctx, "1"))

	// a fresh registry over the same backend sees the saved portfolio
	again := NewRegistry(backend, RegistryOptions{PerUser: true, Seed: domain.SampleProperties}, zerolog.Nop())
	s3, err := again.Store(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, len(domain.SampleProperties())-1, s3.Len())

	other, err := r.Store(ctx, "bia")
	require.NoError(t, err)
	assert.Equal(t, len(domain.SampleProperties()), other.Len())

	assert.Equal(t, []string{"imobcontrol_data_ana", "imobcontrol_data_bia"}, opened)
	assert.Equal(t, []string{"imobcontrol_data_ana", "imobcontrol_data_bia"}, r.Keys())
}
