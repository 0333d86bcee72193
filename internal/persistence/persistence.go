// Package persistence stores portfolio documents under a storage key.
//
// A Backend only moves opaque bytes around; Keyed turns it into the
// Load/Save adapter the portfolio store expects, using the
// {"properties": [...]} document layout.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dvloznov/imobcontrol/internal/domain"
)

// ErrNotFound is returned when nothing has been stored under a key yet.
var ErrNotFound = errors.New("persistence: nothing stored under key")

// DefaultKey is the storage key used when no user namespace applies.
const DefaultKey = "imobcontrol_data"

// Backend reads and writes raw documents by key.
type Backend interface {
	// Read returns ErrNotFound when the key was never written.
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// Document is the persisted shape of a portfolio.
type Document struct {
	Properties []domain.Property `json:"properties"`
}

// Keyed binds a Backend to one storage key.
type Keyed struct {
	backend Backend
	key     string
}

// NewKeyed returns a Load/Save adapter for key.
func NewKeyed(b Backend, key string) *Keyed {
	return &Keyed{backend: b, key: key}
}

// Key returns the storage key.
func (k *Keyed) Key() string {
	return k.key
}

// Load reads the portfolio. Records are normalized on the way in.
func (k *Keyed) Load(ctx context.Context) ([]domain.Property, error) {
	data, err := k.backend.Read(ctx, k.key)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio %q: %w", k.key, err)
	}
	for i := range doc.Properties {
		doc.Properties[i].RentalHistory = domain.NormalizeRecords(doc.Properties[i].RentalHistory)
	}
	if doc.Properties == nil {
		doc.Properties = []domain.Property{}
	}
	return doc.Properties, nil
}

// Save writes the whole portfolio.
func (k *Keyed) Save(ctx context.Context, props []domain.Property) error {
	if props == nil {
		props = []domain.Property{}
	}
	data, err := json.Marshal(Document{Properties: props})
	if err != nil {
		return fmt.Errorf("failed to encode portfolio %q: %w", k.key, err)
	}
	if err := k.backend.Write(ctx, k.key, data); err != nil {
		return fmt.Errorf("failed to write portfolio %q: %w", k.key, err)
	}
	return nil
}
