package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/jobs"
)

func newTestQueue(t *testing.T, store jobs.JobStore) *Queue {
	t.Helper()
	q := NewQueue(10, 2, store, zerolog.Nop())
	q.backoff = func(int) time.Duration { return 10 * time.Millisecond }
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ExtractRecordsJob {
	t.Helper()
	var job *jobs.ExtractRecordsJob
	require.Eventually(t, func() bool {
		j, err := store.GetJob(context.Background(), jobID)
		if err != nil {
			return false
		}
		job = j
		return j.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestQueue_CompletesJob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := newTestQueue(t, store)

	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractRecordsJob) error {
		job.Records = []domain.FinancialRecord{{Date: "01/01/2025", Amount: domain.NewMoney(5)}}
		return nil
	}))

	job := &jobs.ExtractRecordsJob{PropertyID: "p1", DocumentURI: "mem://local/a.pdf"}
	require.NoError(t, q.PublishExtractRecords(ctx, job))
	require.NotEmpty(t, job.JobID)
	assert.Equal(t, jobs.DefaultMaxRetries, job.MaxRetries)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Len(t, done.Records, 1)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	assert.Empty(t, done.Error)
}

func TestQueue_RetriesOnlyRetryableErrors(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := newTestQueue(t, store)

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractRecordsJob) error {
		if calls.Add(1) < 3 {
			return jobs.Retryable(errors.New("model unavailable"))
		}
		return nil
	}))

	job := &jobs.ExtractRecordsJob{JobID: "retry-me"}
	require.NoError(t, q.PublishExtractRecords(ctx, job))

	done := waitForStatus(t, store, "retry-me", jobs.JobStatusCompleted)
	assert.Equal(t, 2, done.RetryCount)
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueue_GivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := newTestQueue(t, store)

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractRecordsJob) error {
		calls.Add(1)
		return jobs.Retryable(errors.New("still down"))
	}))

	require.NoError(t, q.PublishExtractRecords(ctx, &jobs.ExtractRecordsJob{JobID: "doomed", MaxRetries: 2}))

	failed := waitForStatus(t, store, "doomed", jobs.JobStatusFailed)
	assert.Equal(t, 2, failed.RetryCount)
	assert.Equal(t, "still down", failed.Error)
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueue_PermanentErrorFailsImmediately(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := newTestQueue(t, store)

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractRecordsJob) error {
		calls.Add(1)
		return errors.New("malformed")
	}))

	require.NoError(t, q.PublishExtractRecords(ctx, &jobs.ExtractRecordsJob{JobID: "bad"}))

	failed := waitForStatus(t, store, "bad", jobs.JobStatusFailed)
	assert.Equal(t, 0, failed.RetryCount)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueue_ClosedRejectsWork(t *testing.T) {
	q := NewQueue(1, 1, nil, zerolog.Nop())
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.Error(t, q.PublishExtractRecords(context.Background(), &jobs.ExtractRecordsJob{}))
	assert.Error(t, q.Start(context.Background(), func(context.Context, *jobs.ExtractRecordsJob) error { return nil }))
}
