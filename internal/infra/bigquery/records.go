package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/imobcontrol/internal/dates"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

// RecordRow is one financial record of one property at export time.
type RecordRow struct {
	ExportID   string `bigquery:"export_id"`   // REQUIRED, shared by every row of an export
	StorageKey string `bigquery:"storage_key"` // REQUIRED

	PropertyID     string `bigquery:"property_id"`     // REQUIRED
	PropertyTitle  string `bigquery:"property_title"`  // REQUIRED
	PropertyType   string `bigquery:"property_type"`   // NULLABLE
	PropertyStatus string `bigquery:"property_status"` // NULLABLE
	RecordIndex    int64  `bigquery:"record_index"`    // position in the rental history

	RecordDate bigquery.NullDate `bigquery:"record_date"` // DATE, NULLABLE (unparseable dates)
	RawDate    string            `bigquery:"raw_date"`    // as entered, DD/MM/YYYY
	CheckIn    bigquery.NullDate `bigquery:"check_in"`    // DATE, NULLABLE
	CheckOut   bigquery.NullDate `bigquery:"check_out"`   // DATE, NULLABLE

	Kind         string   `bigquery:"kind"`          // revenue | expense
	Amount       *big.Rat `bigquery:"amount"`        // NUMERIC, always positive
	SignedAmount *big.Rat `bigquery:"signed_amount"` // NUMERIC, negative for expenses
	Description  string   `bigquery:"description"`

	ExportedTS time.Time `bigquery:"exported_ts"` // TIMESTAMP
}

// BuildRecordRows flattens the portfolio into rows, in portfolio then
// rental history order. Properties without records produce no rows.
func BuildRecordRows(key, exportID string, props []domain.Property, now time.Time) []*RecordRow {
	var rows []*RecordRow
	for _, p := range props {
		for i, r := range p.RentalHistory {
			r = domain.NormalizeRecord(r)
			rows = append(rows, &RecordRow{
				ExportID:       exportID,
				StorageKey:     key,
				PropertyID:     p.ID,
				PropertyTitle:  p.Title,
				PropertyType:   string(p.Type),
				PropertyStatus: string(p.Status),
				RecordIndex:    int64(i),
				RecordDate:     nullDate(r.Date),
				RawDate:        r.Date,
				CheckIn:        nullDate(r.CheckIn),
				CheckOut:       nullDate(r.CheckOut),
				Kind:           string(r.Kind),
				Amount:         r.Amount.Decimal().Rat(),
				SignedAmount:   r.Signed().Decimal().Rat(),
				Description:    r.Description,
				ExportedTS:     now.UTC(),
			})
		}
	}
	return rows
}

func nullDate(s string) bigquery.NullDate {
	t, ok := dates.ParseDate(s)
	if !ok {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: civil.DateOf(t), Valid: true}
}
