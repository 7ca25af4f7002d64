package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/pkg/logger"
)

// Evaluator is the engine surface the job drives
type Evaluator interface {
	DailyEvaluate(ctx context.Context) (*contracts.Decision, error)
	WeeklyEvaluate(ctx context.Context) (*contracts.Decision, error)
}

// MarketOpenJob runs the daily out-check every trading day after the open and,
// on the last trading day of the week, the weekly in-check right after it.
// A retried run never repeats an entry point that already completed today.
type MarketOpenJob struct {
	engine   Evaluator
	schedule string
	calendar strategyconfig.Schedule
	loc      *time.Location
	clock    func() time.Time
	logger   *logger.Logger

	mu         sync.Mutex
	dailyDone  string
	weeklyDone string
}

// NewMarketOpenJob creates the job from the strategy schedule
func NewMarketOpenJob(engine Evaluator, cfg *strategyconfig.Config, log *logger.Logger) (*MarketOpenJob, error) {
	spec, err := cfg.Schedule.CronSpec()
	if err != nil {
		return nil, err
	}
	if _, err := cfg.Schedule.WeeklyWeekday(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &MarketOpenJob{
		engine:   engine,
		schedule: spec,
		calendar: cfg.Schedule,
		loc:      loc,
		clock:    time.Now,
		logger:   log.Component("jobs.market_open"),
	}, nil
}

// Name returns the job name
func (j *MarketOpenJob) Name() string {
	return "market_open"
}

// Schedule returns the cron schedule
func (j *MarketOpenJob) Schedule() string {
	return j.schedule
}

// Run executes the daily out-check, then the weekly in-check when today is the
// week's last trading day. Listed closures run nothing. An upstream failure in
// either returns immediately so the scheduler retries; the weekly check never
// runs before the daily one has completed.
func (j *MarketOpenJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	today := j.clock().In(j.loc)
	key := today.Format(time.DateOnly)
	if !j.calendar.IsTradingDay(today) {
		j.logger.WithField("date", key).Info("Market closed, nothing to evaluate")
		return nil
	}
	var errs []error

	if j.dailyDone != key {
		_, err := j.engine.DailyEvaluate(ctx)
		if errors.Is(err, contracts.ErrUpstreamDataUnavailable) {
			return err
		}
		j.dailyDone = key
		// 이미 평가된 종가: 오류 아님, 재시도 안 함
		if err != nil && !errors.Is(err, contracts.ErrNoNewSession) {
			errs = append(errs, err)
		}
	}

	if j.calendar.WeeklyDue(today) && j.weeklyDone != key {
		_, err := j.engine.WeeklyEvaluate(ctx)
		if errors.Is(err, contracts.ErrUpstreamDataUnavailable) {
			return errors.Join(append(errs, err)...)
		}
		j.weeklyDone = key
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("market open %s: %w", key, errors.Join(errs...))
	}
	return nil
}

// IsRetryable is the scheduler retry predicate: only upstream outages are retried
func IsRetryable(err error) bool {
	return errors.Is(err, contracts.ErrUpstreamDataUnavailable)
}
