// Package backup exports and restores whole portfolios as JSON documents.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/dvloznov/imobcontrol/internal/domain"
)

// Version is written into every exported document.
const Version = "1.0"

// isoLayout matches the millisecond UTC timestamps browsers produce.
const isoLayout = "2006-01-02T15:04:05.000Z"

// ErrInvalidBackup is returned for documents without a properties array.
var ErrInvalidBackup = errors.New("arquivo de backup inválido: lista de imóveis não encontrada")

// Document is an exported portfolio.
type Document struct {
	Properties []domain.Property `json:"properties"`
	BackupDate string            `json:"backupDate"`
	Version    string            `json:"version"`
}

// NewDocument wraps props for export at now.
func NewDocument(props []domain.Property, now time.Time) Document {
	if props == nil {
		props = []domain.Property{}
	}
	return Document{
		Properties: props,
		BackupDate: now.UTC().Format(isoLayout),
		Version:    Version,
	}
}

// Export renders props as a pretty-printed backup document.
func Export(props []domain.Property, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(props, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// Filename is the download name of a backup taken at now.
func Filename(now time.Time) string {
	return "imobcontrol_backup_" + now.UTC().Format("2006-01-02") + ".json"
}

// Parse accepts any JSON document whose top-level properties field is an
// array. No version check is made. Records are normalized.
func Parse(data []byte) ([]domain.Property, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	found, err := jsonpath.Get("$.properties", raw)
	if err != nil {
		return nil, ErrInvalidBackup
	}
	if _, ok := found.([]any); !ok {
		return nil, ErrInvalidBackup
	}

	var doc struct {
		Properties []domain.Property `json:"properties"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	props := doc.Properties
	if props == nil {
		props = []domain.Property{}
	}
	for i := range props {
		props[i].RentalHistory = domain.NormalizeRecords(props[i].RentalHistory)
	}
	return props, nil
}
