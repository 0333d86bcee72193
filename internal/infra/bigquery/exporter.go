// Package bigquery exports portfolio records to BigQuery for analytics.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/imobcontrol/internal/backup"
	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/logger"
)

const (
	// RecordsTable receives one row per financial record per export.
	RecordsTable = "financial_records"
	// insertBatchSize bounds the rows of one streaming insert.
	insertBatchSize = 500
)

// Exporter streams portfolio records into a dataset.
type Exporter struct {
	client  *bigquery.Client
	dataset string
	now     func() time.Time
}

// NewExporter creates an exporter writing to projectID.dataset.
func NewExporter(ctx context.Context, projectID, dataset string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: creating client: %w", err)
	}
	return NewExporterWithClient(client, dataset), nil
}

// NewExporterWithClient creates an exporter over an existing client.
func NewExporterWithClient(client *bigquery.Client, dataset string) *Exporter {
	return &Exporter{client: client, dataset: dataset, now: time.Now}
}

// Close closes the BigQuery client connection.
func (e *Exporter) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// EnsureTable creates the records table, partitioned by export time, if
// it doesn't exist yet.
func (e *Exporter) EnsureTable(ctx context.Context) error {
	table := e.client.Dataset(e.dataset).Table(RecordsTable)
	if _, err := table.Metadata(ctx); err == nil {
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("EnsureTable: reading metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(RecordRow{})
	if err != nil {
		return fmt.Errorf("EnsureTable: inferring schema: %w", err)
	}
	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "exported_ts",
		},
	}
	if err := table.Create(ctx, meta); err != nil && !isConflict(err) {
		return fmt.Errorf("EnsureTable: creating table: %w", err)
	}
	return nil
}

// Export inserts every record of props under key and returns the export id
// and the number of rows written.
func (e *Exporter) Export(ctx context.Context, key string, props []domain.Property) (string, int, error) {
	exportID := uuid.New().String()
	rows := BuildRecordRows(key, exportID, props, e.now())
	if len(rows) == 0 {
		return exportID, 0, nil
	}

	inserter := e.client.Dataset(e.dataset).Table(RecordsTable).Inserter()
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		if err := inserter.Put(ctx, rows[start:end]); err != nil {
			return exportID, start, fmt.Errorf("Export: inserting rows: %w", err)
		}
	}

	log := logger.FromContext(ctx)

	log.Info().
		Str("export_id", exportID).
		Str("storage_key", key).
		Int("row_count", len(rows)).
		Msg("Records exported to BigQuery")
	return exportID, len(rows), nil
}

// MonthlyTotalRow is one month of the latest export of a storage key.
type MonthlyTotalRow struct {
	Month   string   `bigquery:"month"` // YYYY-MM
	Revenue *big.Rat `bigquery:"revenue"`
	Expense *big.Rat `bigquery:"expense"`
}

// QueryMonthlyTotals sums the latest export of key per month, oldest month
// first. Undated records are left out.
func (e *Exporter) QueryMonthlyTotals(ctx context.Context, key string) ([]*MonthlyTotalRow, error) {
	q := e.client.Query(fmt.Sprintf(`
		WITH latest AS (
			SELECT export_id
			FROM `+"`%s.%s`"+`
			WHERE storage_key = @key
			ORDER BY exported_ts DESC
			LIMIT 1
		)
		SELECT
			FORMAT_DATE('%%Y-%%m', record_date) AS month,
			SUM(IF(kind = 'revenue', amount, 0)) AS revenue,
			SUM(IF(kind = 'expense', amount, 0)) AS expense
		FROM `+"`%s.%s`"+`
		WHERE export_id IN (SELECT export_id FROM latest)
			AND record_date IS NOT NULL
		GROUP BY month
		ORDER BY month
	`, e.dataset, RecordsTable, e.dataset, RecordsTable))
	q.Parameters = []bigquery.QueryParameter{{Name: "key", Value: key}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryMonthlyTotals: reading query: %w", err)
	}

	var rows []*MonthlyTotalRow
	for {
		var row MonthlyTotalRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryMonthlyTotals: iterating rows: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func isConflict(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// Sink exports automatic backups to BigQuery.
type Sink struct {
	exporter *Exporter
}

// NewSink returns a backup sink over exporter.
func NewSink(exporter *Exporter) *Sink {
	return &Sink{exporter: exporter}
}

// Name implements backup.Sink.
func (s *Sink) Name() string { return "bigquery" }

// Write implements backup.Sink.
func (s *Sink) Write(ctx context.Context, snap backup.Snapshot) error {
	_, _, err := s.exporter.Export(ctx, snap.Key, snap.Properties)
	return err
}

var _ backup.Sink = (*Sink)(nil)
