package inmemory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.Error(t, s.SaveJob(ctx, &jobs.ExtractRecordsJob{}))

	job := &jobs.ExtractRecordsJob{JobID: "a", Status: jobs.JobStatusPending}
	require.NoError(t, s.SaveJob(ctx, job))
	job.Status = jobs.JobStatusFailed // caller mutation must not leak in

	got, err := s.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, got.Status)

	_, err = s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, j := range []jobs.ExtractRecordsJob{
		{JobID: "1", Owner: "ana", PropertyID: "p1", Status: jobs.JobStatusCompleted},
		{JobID: "2", Owner: "ana", PropertyID: "p2", Status: jobs.JobStatusFailed},
		{JobID: "3", Owner: "bia", PropertyID: "p1", Status: jobs.JobStatusCompleted},
		{JobID: "4", Owner: "ana", PropertyID: "p1", Status: jobs.JobStatusPending},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.SaveJob(ctx, &j))
	}

	idsOf := func(list []*jobs.ExtractRecordsJob) []string {
		var out []string
		for _, j := range list {
			out = append(out, j.JobID)
		}
		return out
	}

	all, err := s.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "2", "1"}, idsOf(all))

	ana, err := s.ListJobs(ctx, jobs.JobFilter{Owner: "ana", PropertyID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "1"}, idsOf(ana))

	done, err := s.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, idsOf(done))

	page, err := s.ListJobs(ctx, jobs.JobFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, idsOf(page))

	past, err := s.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestStore_TransitionJob(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveJob(ctx, &jobs.ExtractRecordsJob{JobID: "a", Status: jobs.JobStatusCompleted}))

	_, err := s.TransitionJob(ctx, "missing", jobs.JobStatusCompleted, jobs.JobStatusImported)
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	const workers = 16
	var (
		wg      sync.WaitGroup
		claimed atomic.Int32
		lost    atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := s.TransitionJob(ctx, "a", jobs.JobStatusCompleted, jobs.JobStatusImported)
			if err == nil {
				assert.Equal(t, jobs.JobStatusImported, job.Status)
				claimed.Add(1)
				return
			}
			assert.ErrorIs(t, err, jobs.ErrJobStatusChanged)
			lost.Add(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), claimed.Load())
	assert.Equal(t, int32(workers-1), lost.Load())

	got, err := s.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusImported, got.Status)

	_, err = s.TransitionJob(ctx, "a", jobs.JobStatusImported, jobs.JobStatusCompleted)
	require.NoError(t, err)
	got, err = s.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusCompleted, got.Status)
}
