package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/domain"
)

func TestBuildRecordRows(t *testing.T) {
	now := time.Date(2025, 11, 2, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	rows := BuildRecordRows("imobcontrol_data", "exp-1", domain.SampleProperties(), now)

	// Properties 2 and 3 carry three records each.
	require.Len(t, rows, 6)

	first := rows[0]
	assert.Equal(t, "exp-1", first.ExportID)
	assert.Equal(t, "imobcontrol_data", first.StorageKey)
	assert.Equal(t, "2", first.PropertyID)
	assert.Equal(t, string(domain.TypeHouse), first.PropertyType)
	assert.Equal(t, int64(0), first.RecordIndex)
	assert.Equal(t, bigquery.NullDate{Date: civil.Date{Year: 2024, Month: 4, Day: 15}, Valid: true}, first.RecordDate)
	assert.Equal(t, civil.Date{Year: 2024, Month: 4, Day: 12}, first.CheckIn.Date)
	assert.True(t, first.CheckOut.Valid)
	assert.Equal(t, "revenue", first.Kind)
	assert.Equal(t, 0, first.Amount.Cmp(big.NewRat(1500, 1)))
	assert.Equal(t, time.UTC, first.ExportedTS.Location())

	expense := rows[2]
	assert.Equal(t, "expense", expense.Kind)
	assert.Equal(t, 0, expense.Amount.Cmp(big.NewRat(350, 1)))
	assert.Equal(t, 0, expense.SignedAmount.Cmp(big.NewRat(-350, 1)))
	assert.False(t, expense.CheckIn.Valid)
	assert.Equal(t, int64(2), expense.RecordIndex)
}

func TestBuildRecordRows_NormalizesAndKeepsBadDates(t *testing.T) {
	props := []domain.Property{{
		ID:    "x",
		Title: "Loja",
		RentalHistory: []domain.FinancialRecord{
			{Date: "sem data", Amount: domain.NewMoney(-80.5), Kind: "Expense"},
		},
	}}

	rows := BuildRecordRows("k", "e", props, time.Now())

	require.Len(t, rows, 1)
	assert.False(t, rows[0].RecordDate.Valid)
	assert.Equal(t, "sem data", rows[0].RawDate)
	assert.Equal(t, "expense", rows[0].Kind)
	assert.Equal(t, 0, rows[0].Amount.Cmp(big.NewRat(161, 2)))
}

func TestBuildRecordRows_Empty(t *testing.T) {
	assert.Empty(t, BuildRecordRows("k", "e", nil, time.Now()))
	assert.Empty(t, BuildRecordRows("k", "e", []domain.Property{{ID: "1"}}, time.Now()))
}

func TestRecordRowSchema(t *testing.T) {
	schema, err := bigquery.InferSchema(RecordRow{})
	require.NoError(t, err)

	types := map[string]bigquery.FieldType{}
	for _, f := range schema {
		types[f.Name] = f.Type
	}
	assert.Equal(t, bigquery.DateFieldType, types["record_date"])
	assert.Equal(t, bigquery.NumericFieldType, types["amount"])
	assert.Equal(t, bigquery.TimestampFieldType, types["exported_ts"])
	assert.Equal(t, bigquery.IntegerFieldType, types["record_index"])
}
