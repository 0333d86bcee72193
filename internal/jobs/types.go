// Package jobs runs document extractions outside the request path.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/imobcontrol/internal/ai"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates records were extracted and await import.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed for good.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the model was unavailable and the job will run again.
	JobStatusRetrying JobStatus = "retrying"
	// JobStatusImported indicates the staged records were added to the property.
	JobStatusImported JobStatus = "imported"
)

// DefaultMaxRetries applies when a job doesn't set MaxRetries.
const DefaultMaxRetries = 3

var (
	// ErrJobNotFound is returned by stores for unknown job ids.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobStatusChanged is returned by TransitionJob when the job left the
	// expected status before the call.
	ErrJobStatusChanged = errors.New("job status changed")
)

// ExtractRecordsJob reads financial records out of an uploaded statement.
// Records are staged on the job until the owner imports them.
type ExtractRecordsJob struct {
	JobID       string `json:"jobId"`
	Owner       string `json:"owner"`
	PropertyID  string `json:"propertyId"`
	DocumentURI string `json:"documentUri"`
	MIMEType    string `json:"mimeType"`

	Status  JobStatus                `json:"status"`
	Outcome ai.Outcome               `json:"outcome,omitempty"`
	Records []domain.FinancialRecord `json:"records,omitempty"`
	Error   string                   `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	RetryCount int `json:"retryCount"`
	MaxRetries int `json:"maxRetries"`
}

// Clone returns a copy that shares nothing mutable with j.
func (j *ExtractRecordsJob) Clone() *ExtractRecordsJob {
	c := *j
	if j.Records != nil {
		c.Records = append([]domain.FinancialRecord(nil), j.Records...)
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Publisher enqueues jobs.
type Publisher interface {
	PublishExtractRecords(ctx context.Context, job *ExtractRecordsJob) error
	Close() error
}

// Consumer runs a handler over queued jobs.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	// Stop waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job, filling in its outcome. Returning an error
// wrapped with Retryable asks the queue to try again later.
type JobHandler func(ctx context.Context, job *ExtractRecordsJob) error

// JobStore keeps job state.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExtractRecordsJob) error
	// GetJob returns ErrJobNotFound for unknown ids.
	GetJob(ctx context.Context, jobID string) (*ExtractRecordsJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractRecordsJob, error)
	// TransitionJob moves a job from status from to status to in one step
	// and returns the updated job. It returns ErrJobStatusChanged when the
	// job is not in status from.
	TransitionJob(ctx context.Context, jobID string, from, to JobStatus) (*ExtractRecordsJob, error)
}

// JobFilter narrows ListJobs. Zero fields match everything.
type JobFilter struct {
	Owner      string
	PropertyID string
	Status     JobStatus
	Limit      int
	Offset     int
}

type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var r retryableError
	return errors.As(err, &r)
}
