package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/ai"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

type mockFetcher struct {
	data []byte
	err  error
	uri  string
}

func (m *mockFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	m.uri = uri
	return m.data, m.err
}

type mockExtractor struct {
	result   ai.Extraction
	document []byte
	mimeType string
}

func (m *mockExtractor) ExtractRecords(ctx context.Context, document []byte, mimeType string) ai.Extraction {
	m.document, m.mimeType = document, mimeType
	return m.result
}

func newJob() *ExtractRecordsJob {
	return &ExtractRecordsJob{JobID: "j1", PropertyID: "p1", DocumentURI: "mem://local/a.pdf", MIMEType: "application/pdf"}
}

func TestExtractHandler(t *testing.T) {
	ctx := context.Background()
	records := []domain.FinancialRecord{{Date: "01/01/2025", Amount: domain.NewMoney(10), Kind: domain.KindRevenue}}

	t.Run("ok stages records", func(t *testing.T) {
		docs := &mockFetcher{data: []byte("%PDF")}
		ex := &mockExtractor{result: ai.Extraction{Outcome: ai.OutcomeOK, Records: records}}
		job := newJob()

		require.NoError(t, NewExtractHandler(docs, ex)(ctx, job))
		assert.Equal(t, "mem://local/a.pdf", docs.uri)
		assert.Equal(t, []byte("%PDF"), ex.document)
		assert.Equal(t, "application/pdf", ex.mimeType)
		assert.Equal(t, ai.OutcomeOK, job.Outcome)
		assert.Len(t, job.Records, 1)
	})

	t.Run("unavailable is retryable", func(t *testing.T) {
		ex := &mockExtractor{result: ai.Extraction{Outcome: ai.OutcomeUnavailable, Err: errors.New("503")}}
		job := newJob()

		err := NewExtractHandler(&mockFetcher{}, ex)(ctx, job)
		require.Error(t, err)
		assert.True(t, IsRetryable(err))
		assert.Equal(t, ai.OutcomeUnavailable, job.Outcome)
	})

	t.Run("malformed is final", func(t *testing.T) {
		ex := &mockExtractor{result: ai.Extraction{Outcome: ai.OutcomeMalformed, Err: errors.New("bad json")}}
		job := newJob()

		err := NewExtractHandler(&mockFetcher{}, ex)(ctx, job)
		require.Error(t, err)
		assert.False(t, IsRetryable(err))
		assert.Empty(t, job.Records)
	})

	t.Run("fetch failure", func(t *testing.T) {
		err := NewExtractHandler(&mockFetcher{err: errors.New("gone")}, &mockExtractor{})(ctx, newJob())
		require.Error(t, err)
		assert.False(t, IsRetryable(err))
	})
}

func TestRetryable(t *testing.T) {
	base := errors.New("boom")
	wrapped := Retryable(base)

	assert.True(t, IsRetryable(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.Nil(t, Retryable(nil))
	assert.False(t, IsRetryable(base))
}

func TestExtractRecordsJob_Clone(t *testing.T) {
	job := newJob()
	job.Records = []domain.FinancialRecord{{Date: "01/01/2025"}}

	c := job.Clone()
	c.Records[0].Date = "02/02/2025"

	assert.Equal(t, "01/01/2025", job.Records[0].Date)
}
