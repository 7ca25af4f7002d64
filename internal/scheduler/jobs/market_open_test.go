package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/pkg/logger"
)

type stubEngine struct {
	calls     []string
	dailyErr  []error
	weeklyErr []error
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (s *stubEngine) DailyEvaluate(context.Context) (*contracts.Decision, error) {
	s.calls = append(s.calls, "daily")
	return &contracts.Decision{Kind: contracts.KindDailyOutCheck}, pop(&s.dailyErr)
}

func (s *stubEngine) WeeklyEvaluate(context.Context) (*contracts.Decision, error) {
	s.calls = append(s.calls, "weekly")
	return &contracts.Decision{Kind: contracts.KindWeeklyInCheck}, pop(&s.weeklyErr)
}

func newJob(t *testing.T, e Evaluator, now time.Time) *MarketOpenJob {
	t.Helper()
	return newJobWith(t, e, now, strategyconfig.Default())
}

func newJobWith(t *testing.T, e Evaluator, now time.Time, cfg *strategyconfig.Config) *MarketOpenJob {
	t.Helper()
	j, err := NewMarketOpenJob(e, cfg, logger.Nop())
	require.NoError(t, err)
	j.clock = func() time.Time { return now }
	return j
}

var (
	thursday = time.Date(2024, 3, 7, 16, 30, 0, 0, time.UTC)
	friday   = time.Date(2024, 3, 8, 16, 30, 0, 0, time.UTC)
)

func upstreamErr() error {
	return fmt.Errorf("%w: timeout", contracts.ErrUpstreamDataUnavailable)
}

func TestMarketOpenJob_Schedule(t *testing.T) {
	j := newJob(t, &stubEngine{}, thursday)
	assert.Equal(t, "market_open", j.Name())
	assert.Equal(t, "0 30 11 * * MON-FRI", j.Schedule())
}

func TestMarketOpenJob_DailyOnlyMidweek(t *testing.T) {
	e := &stubEngine{}
	require.NoError(t, newJob(t, e, thursday).Run(context.Background()))
	assert.Equal(t, []string{"daily"}, e.calls)
}

func TestMarketOpenJob_DailyBeforeWeeklyOnFriday(t *testing.T) {
	e := &stubEngine{}
	require.NoError(t, newJob(t, e, friday).Run(context.Background()))
	assert.Equal(t, []string{"daily", "weekly"}, e.calls)
}

func TestMarketOpenJob_UpstreamFailureHoldsWeekly(t *testing.T) {
	e := &stubEngine{dailyErr: []error{upstreamErr()}}
	j := newJob(t, e, friday)

	err := j.Run(context.Background())
	assert.True(t, IsRetryable(err))
	assert.Equal(t, []string{"daily"}, e.calls, "weekly waits for the daily check")

	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, []string{"daily", "daily", "weekly"}, e.calls)
}

func TestMarketOpenJob_RetryDoesNotRepeatCompletedDaily(t *testing.T) {
	e := &stubEngine{weeklyErr: []error{upstreamErr()}}
	j := newJob(t, e, friday)

	assert.True(t, IsRetryable(j.Run(context.Background())))
	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, []string{"daily", "weekly", "weekly"}, e.calls)

	require.NoError(t, j.Run(context.Background()))
	assert.Len(t, e.calls, 3, "both entry points already ran today")
}

func TestMarketOpenJob_NonRetryableDailyStillRunsWeekly(t *testing.T) {
	e := &stubEngine{dailyErr: []error{fmt.Errorf("skip: %w", contracts.ErrInsufficientHistory)}}

	err := newJob(t, e, friday).Run(context.Background())

	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, []string{"daily", "weekly"}, e.calls)
}

func TestMarketOpenJob_ClosedFridayMovesWeeklyToThursday(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Schedule.Holidays = []string{"2024-03-08"}

	e := &stubEngine{}
	require.NoError(t, newJobWith(t, e, thursday, cfg).Run(context.Background()))
	assert.Equal(t, []string{"daily", "weekly"}, e.calls)

	closed := &stubEngine{}
	require.NoError(t, newJobWith(t, closed, friday, cfg).Run(context.Background()))
	assert.Empty(t, closed.calls, "no evaluation on a closure")
}

func TestMarketOpenJob_StaleSessionIsNotAnError(t *testing.T) {
	e := &stubEngine{dailyErr: []error{fmt.Errorf("daily_out_check skipped: %w", contracts.ErrNoNewSession)}}
	j := newJob(t, e, friday)

	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, []string{"daily", "weekly"}, e.calls)

	require.NoError(t, j.Run(context.Background()))
	assert.Len(t, e.calls, 2, "not retried")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(upstreamErr()))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(contracts.ErrDegenerateStatistic))
	assert.False(t, IsRetryable(contracts.ErrNoNewSession))
}
