package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/imobcontrol/internal/jobs"
)

// Store is an in-memory JobStore, safe for concurrent use.
// Jobs are lost on restart.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ExtractRecordsJob
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.ExtractRecordsJob),
	}
}

// SaveJob implements jobs.JobStore.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ExtractRecordsJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job.Clone()
	return nil
}

// GetJob implements jobs.JobStore.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ExtractRecordsJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", jobs.ErrJobNotFound, jobID)
	}
	return job.Clone(), nil
}

// TransitionJob implements jobs.JobStore.
func (s *Store) TransitionJob(ctx context.Context, jobID string, from, to jobs.JobStatus) (*jobs.ExtractRecordsJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", jobs.ErrJobNotFound, jobID)
	}
	if job.Status != from {
		return nil, fmt.Errorf("%w: %s is %s, not %s", jobs.ErrJobStatusChanged, jobID, job.Status, from)
	}
	job.Status = to
	return job.Clone(), nil
}

// ListJobs implements jobs.JobStore. Newest jobs come first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractRecordsJob, error) {
	s.mu.RLock()
	var result []*jobs.ExtractRecordsJob
	for _, job := range s.jobs {
		if filter.Owner != "" && job.Owner != filter.Owner {
			continue
		}
		if filter.PropertyID != "" && job.PropertyID != filter.PropertyID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		result = append(result, job.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].JobID < result[j].JobID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.ExtractRecordsJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

var _ jobs.JobStore = (*Store)(nil)
