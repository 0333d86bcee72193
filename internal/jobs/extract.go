package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/imobcontrol/internal/ai"
	"github.com/dvloznov/imobcontrol/internal/logger"
)

// DocumentFetcher loads an uploaded document by URI.
type DocumentFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Extractor reads records out of a document.
type Extractor interface {
	ExtractRecords(ctx context.Context, document []byte, mimeType string) ai.Extraction
}

// NewExtractHandler returns the handler that runs statement extractions.
// Only an unreachable model is retried; a malformed answer fails the job.
func NewExtractHandler(docs DocumentFetcher, extractor Extractor) JobHandler {
	return func(ctx context.Context, job *ExtractRecordsJob) error {
		log := logger.FromContext(ctx).With().
			Str("job_id", job.JobID).
			Str("property_id", job.PropertyID).
			Logger()

		data, err := docs.Fetch(ctx, job.DocumentURI)
		if err != nil {
			return fmt.Errorf("failed to fetch document %s: %w", job.DocumentURI, err)
		}

		ex := extractor.ExtractRecords(ctx, data, job.MIMEType)
		job.Outcome = ex.Outcome
		log.Info().Str("outcome", string(ex.Outcome)).Int("record_count", len(ex.Records)).Msg("Extraction finished")

		switch ex.Outcome {
		case ai.OutcomeOK:
			job.Records = ex.Records
			return nil
		case ai.OutcomeUnavailable:
			return Retryable(fmt.Errorf("model unavailable: %w", ex.Err))
		default:
			return fmt.Errorf("model returned malformed records: %w", ex.Err)
		}
	}
}
