package backup

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/domain"
)

var backupTime = time.Date(2025, 11, 2, 13, 45, 10, 123000000, time.UTC)

func TestFilename(t *testing.T) {
	assert.Equal(t, "imobcontrol_backup_2025-11-02.json", Filename(backupTime))
}

func TestExport(t *testing.T) {
	data, err := Export(domain.SampleProperties()[:1], backupTime)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "{\n  \"properties\": ["), "pretty-printed")

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2025-11-02T13:45:10.123Z", doc.BackupDate)
	assert.Equal(t, "1.0", doc.Version)
	assert.Len(t, doc.Properties, 1)
}

func TestExport_EmptyPortfolio(t *testing.T) {
	data, err := Export(nil, backupTime)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"properties": []`)
}

func TestRoundTrip(t *testing.T) {
	props := domain.SampleProperties()

	data, err := Export(props, backupTime)
	require.NoError(t, err)
	restored, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, restored, len(props))
	for i := range props {
		assert.Equal(t, props[i].ID, restored[i].ID)
		require.Len(t, restored[i].RentalHistory, len(props[i].RentalHistory))
	}
	want, _ := json.Marshal(props)
	got, _ := json.Marshal(restored)
	assert.JSONEq(t, string(want), string(got))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"empty properties", `{"properties": []}`, 0, false},
		{"no version needed", `{"properties": [{"id": "9", "title": "Terreno"}]}`, 1, false},
		{"extra fields ignored", `{"properties": [], "version": "7.3", "backupDate": "x"}`, 0, false},
		{"missing properties", `{"version": "1.0"}`, 0, true},
		{"properties not an array", `{"properties": {"id": "1"}}`, 0, true},
		{"properties null", `{"properties": null}`, 0, true},
		{"top-level array", `[{"id": "1"}]`, 0, true},
		{"not json", `imobcontrol`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBackup)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestParse_NormalizesRecords(t *testing.T) {
	props, err := Parse([]byte(`{"properties":[{"id":"1","rentalHistory":[{"date":"01/01/2024","amount":"-80","type":"gasto"}]}]}`))
	require.NoError(t, err)

	r := props[0].RentalHistory[0]
	assert.Equal(t, domain.KindRevenue, r.Kind)
	assert.True(t, domain.NewMoney(80).Equal(r.Amount))
}
