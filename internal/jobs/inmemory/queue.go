package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/jobs"
)

// DefaultWorkers is used when NewQueue gets a non-positive worker count.
const DefaultWorkers = 5

// Queue is a channel-backed Publisher and Consumer for single-instance use.
type Queue struct {
	jobChan   chan *jobs.ExtractRecordsJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	workers   int
	log       zerolog.Logger
	closed    bool

	// backoff returns the wait before the given retry.
	backoff func(retry int) time.Duration
}

// NewQueue creates a queue. bufferSize bounds how many jobs wait before
// PublishExtractRecords blocks.
func NewQueue(bufferSize, workers int, store jobs.JobStore, log zerolog.Logger) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		jobChan:   make(chan *jobs.ExtractRecordsJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   workers,
		log:       log,
		backoff: func(retry int) time.Duration {
			return time.Duration(retry) * time.Second
		},
	}
}

// PublishExtractRecords implements jobs.Publisher.
func (q *Queue) PublishExtractRecords(ctx context.Context, job *jobs.ExtractRecordsJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = jobs.DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job.Clone():
		q.log.Debug().Str("job_id", job.JobID).Msg("Job enqueued")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements jobs.Consumer.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	q.log.Info().Int("workers", q.workers).Msg("Job queue started")
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob runs the handler once and decides between done, retry and failed.
func (q *Queue) processJob(ctx context.Context, job *jobs.ExtractRecordsJob, handler jobs.JobHandler) {
	log := q.log.With().Str("job_id", job.JobID).Logger()

	job.Status = jobs.JobStatusRunning
	now := time.Now().UTC()
	job.StartedAt = &now
	q.save(ctx, job)

	err := handler(ctx, job)

	completedAt := time.Now().UTC()
	job.CompletedAt = &completedAt

	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().Int("record_count", len(job.Records)).Msg("Job completed")
	case jobs.IsRetryable(err) && job.RetryCount < job.MaxRetries:
		job.Error = err.Error()
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		backoff := q.backoff(job.RetryCount)
		log.Warn().Err(err).Int("retry", job.RetryCount).Dur("backoff", backoff).Msg("Job will be retried")

		q.save(ctx, job)

		retry := job.Clone()
		time.AfterFunc(backoff, func() {
			retry.Status = jobs.JobStatusPending
			retry.StartedAt = nil
			retry.CompletedAt = nil
			if err := q.PublishExtractRecords(context.Background(), retry); err != nil {
				log.Error().Err(err).Msg("Failed to re-enqueue job")
			}
		})
		return
	default:
		job.Error = err.Error()
		job.Status = jobs.JobStatusFailed
		log.Error().Err(err).Msg("Job failed")
	}

	q.save(ctx, job)
}

func (q *Queue) save(ctx context.Context, job *jobs.ExtractRecordsJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.log.Warn().Err(err).Str("job_id", job.JobID).Msg("Failed to save job state")
	}
}

// Stop implements jobs.Consumer.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements jobs.Publisher.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
