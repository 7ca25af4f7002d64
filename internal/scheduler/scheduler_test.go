package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/inout/backend/pkg/logger"
)

var errTransient = errors.New("transient")

type countingJob struct {
	failures int
	err      error
	runs     int
}

func (j *countingJob) Name() string     { return "counting" }
func (j *countingJob) Schedule() string { return "0 0 0 1 1 *" }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	if j.runs <= j.failures {
		return j.err
	}
	return nil
}

func newScheduler() *Scheduler {
	return New(logger.Nop(), WithRetry(3, time.Millisecond, func(err error) bool {
		return errors.Is(err, errTransient)
	}))
}

func TestAddJob_Duplicate(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&countingJob{}))
	assert.Error(t, s.AddJob(&countingJob{}))
	assert.Equal(t, []string{"counting"}, s.GetAllJobs())
}

func TestAddJob_BadSchedule(t *testing.T) {
	s := newScheduler()
	assert.Error(t, s.AddJob(badJob{&countingJob{}}))
}

type badJob struct{ *countingJob }

func (badJob) Schedule() string { return "every tuesday" }

func TestRunJob_RetriesRetryableErrors(t *testing.T) {
	s := newScheduler()
	job := &countingJob{failures: 2, err: errTransient}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunJob("counting")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Attempts)

	stats := s.GetJobStats()["counting"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1.0, stats.SuccessRate)
	require.NotNil(t, stats.LastSuccess)
}

func TestRunJob_DoesNotRetryOtherErrors(t *testing.T) {
	s := newScheduler()
	job := &countingJob{failures: 5, err: errors.New("bad input")}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunJob("counting")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "bad input", res.Error)

	h, err := s.GetJobHistory("counting")
	require.NoError(t, err)
	assert.Equal(t, 0.0, h.GetSuccessRate())
}

func TestRunJob_GivesUpAfterMaxRetries(t *testing.T) {
	s := newScheduler()
	job := &countingJob{failures: 10, err: errTransient}
	require.NoError(t, s.AddJob(job))

	res, _ := s.RunJob("counting")
	assert.False(t, res.Success)
	assert.Equal(t, 4, res.Attempts)
}

func TestRunJob_Unknown(t *testing.T) {
	_, err := newScheduler().RunJob("nope")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&countingJob{}))
	s.Start()
	s.Stop()
}

func TestJobHistory_KeepsLast100(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 120; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	total, failed := h.Counts()
	assert.Equal(t, 100, total)
	assert.Equal(t, 50, failed)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetLatestResults(500), 100)
}
