package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/extreme"
	"github.com/wonny/inout/backend/internal/rebalance"
	"github.com/wonny/inout/backend/internal/regime"
	"github.com/wonny/inout/backend/internal/signals"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/internal/waitdays"
	"github.com/wonny/inout/backend/pkg/logger"
)

// Deps are the engine's collaborators. Store and Journal are optional.
type Deps struct {
	Prices    contracts.PriceSource
	Executor  contracts.Executor
	Publisher contracts.Publisher
	Store     contracts.StateStore
	Journal   contracts.DecisionJournal
	Clock     func() time.Time
}

// Engine runs the daily out-check and the weekly in-check. Both entry points
// are serialised by one mutex; each reads the current state as a value and
// commits a new one only when the evaluation completes.
// ⭐ SSOT: 레짐 상태 변경은 Engine 에서만
type Engine struct {
	mu    sync.Mutex
	state contracts.State

	cfg        *strategyconfig.Config
	symbols    []string
	computer   *signals.Computer
	detector   *extreme.Detector
	adjuster   *waitdays.Adjuster
	rebalancer *rebalance.Rebalancer

	deps   Deps
	logger *logger.Logger
}

// New creates an engine in the initial state (IN, day 0, initial wait)
func New(cfg *strategyconfig.Config, deps Deps, log *logger.Logger) (*Engine, error) {
	if deps.Prices == nil || deps.Executor == nil {
		return nil, fmt.Errorf("engine needs a price source and an executor")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	return &Engine{
		state:      contracts.NewState(cfg.WaitDays.Initial),
		cfg:        cfg,
		symbols:    cfg.RoleTable().SignalUniverse(),
		computer:   signals.NewComputer(cfg, log),
		detector:   extreme.NewDetector(cfg, log),
		adjuster:   waitdays.NewAdjuster(cfg),
		rebalancer: rebalance.NewRebalancer(cfg),
		deps:       deps,
		logger:     log.Component("engine"),
	}, nil
}

// Restore loads the persisted state. A missing state keeps the initial one.
func (e *Engine) Restore(ctx context.Context) error {
	if e.deps.Store == nil {
		return nil
	}

	s, err := e.deps.Store.Load(ctx)
	if errors.Is(err, contracts.ErrStateNotFound) {
		e.logger.Info("No persisted state, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}

	e.mu.Lock()
	e.state = s
	e.mu.Unlock()

	e.logger.WithFields(map[string]interface{}{
		"regime":      s.Regime,
		"day_counter": s.DayCounter,
		"out_day":     s.OutDay,
		"wait_days":   s.WaitDays,
	}).Info("State restored")
	return nil
}

// State returns a copy of the current state
func (e *Engine) State() contracts.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Weights returns the target map the current regime resolves to
func (e *Engine) Weights() contracts.WeightMap {
	return rebalance.ResolveWeights(e.State().Regime, e.cfg.Holdings)
}

// Reset returns the engine to the initial state and persists it
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := contracts.NewState(e.cfg.WaitDays.Initial)
	s.UpdatedAt = e.deps.Clock().UTC()
	if e.deps.Store != nil {
		if err := e.deps.Store.Save(ctx, s); err != nil {
			return fmt.Errorf("reset state: %w", err)
		}
	}
	e.state = s
	e.logger.Warn("State reset")
	return nil
}

// DailyEvaluate is the daily out-check: it advances the regime machine and,
// when the regime is OUT, moves the book to the defensive holdings.
func (e *Engine) DailyEvaluate(ctx context.Context) (*contracts.Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.state
	d := e.newDecision(contracts.KindDailyOutCheck, before)

	table, err := e.deps.Prices.History(ctx, e.symbols, e.cfg.Signals.LookbackDays)
	if err != nil {
		return e.skip(ctx, d, upstream(err, "price history"))
	}

	sample, err := e.computer.Compute(table)
	if err != nil {
		return e.skip(ctx, d, err)
	}
	d.AsOf = sample.AsOf()
	if !d.AsOf.After(before.LastAsOf) {
		// 휴일 또는 재실행: 같은 거래일을 두 번 세지 않는다
		return e.skip(ctx, d, fmt.Errorf("%w: %s already evaluated",
			contracts.ErrNoNewSession, d.AsOf.Format(time.DateOnly)))
	}

	res, err := e.detector.Detect(sample)
	if err != nil {
		return e.skip(ctx, d, err)
	}

	wait, checks := e.adjuster.Next(before.WaitDays, sample)
	next, tr := regime.Step(before, res.Count, wait)
	next.LastAsOf = d.AsOf
	next.UpdatedAt = d.EvaluatedAt

	holdings, err := e.deps.Executor.Holdings(ctx)
	if err != nil {
		return e.skip(ctx, d, upstream(err, "holdings"))
	}
	plan := e.rebalancer.OutCheck(next.Regime, holdings)

	d.After = next
	d.Readings = res.Readings
	d.BreachCount = res.Count
	d.WaitDays = wait
	d.Weights = plan.Weights
	d.Instructions = plan.Instructions

	e.commit(ctx, next)

	log := e.logger.WithFields(map[string]interface{}{
		"as_of":        d.AsOf.Format(time.DateOnly),
		"regime":       next.Regime,
		"breaches":     res.Count,
		"wait_days":    wait,
		"day_counter":  before.DayCounter,
		"out_day":      next.OutDay,
		"instructions": len(plan.Instructions),
	})
	for _, c := range checks {
		if c.Escalated {
			log = log.WithField("escalated_"+c.Pair, true)
		}
	}
	if tr.SameDayRun {
		log.Warn("Breach and re-entry on the same day (zero wait)")
	} else {
		log.Info("Daily out-check evaluated")
	}

	err = e.execute(ctx, plan.Instructions)
	e.finish(ctx, d)
	return d, err
}

// WeeklyEvaluate is the weekly in-check: when the regime is IN it moves the
// book to the growth holdings. The regime machine is not advanced.
func (e *Engine) WeeklyEvaluate(ctx context.Context) (*contracts.Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	d := e.newDecision(contracts.KindWeeklyInCheck, s)
	d.WaitDays = s.WaitDays

	holdings, err := e.deps.Executor.Holdings(ctx)
	if err != nil {
		return e.skip(ctx, d, upstream(err, "holdings"))
	}
	plan := e.rebalancer.InCheck(s.Regime, holdings)
	d.Weights = plan.Weights
	d.Instructions = plan.Instructions

	e.logger.WithFields(map[string]interface{}{
		"regime":       s.Regime,
		"active":       plan.Active,
		"instructions": len(plan.Instructions),
	}).Info("Weekly in-check evaluated")

	err = e.execute(ctx, plan.Instructions)
	e.finish(ctx, d)
	return d, err
}

func (e *Engine) newDecision(kind contracts.EvaluationKind, s contracts.State) *contracts.Decision {
	now := e.deps.Clock().UTC()
	y, m, day := now.Date()
	return &contracts.Decision{
		Kind:        kind,
		AsOf:        time.Date(y, m, day, 0, 0, 0, 0, time.UTC),
		EvaluatedAt: now,
		Before:      s,
		After:       s,
	}
}

// skip publishes a no-op decision and returns err wrapped; state is untouched
func (e *Engine) skip(ctx context.Context, d *contracts.Decision, err error) (*contracts.Decision, error) {
	d.Skipped = true
	d.SkipReason = contracts.SkipReason(err)
	d.Error = err.Error()

	log := e.logger.WithError(err).WithFields(map[string]interface{}{
		"kind":   d.Kind,
		"reason": d.SkipReason,
	})
	if errors.Is(err, contracts.ErrNoNewSession) {
		log.Info("Evaluation skipped")
	} else {
		log.Warn("Evaluation skipped")
	}

	e.finish(ctx, d)
	return d, fmt.Errorf("%s skipped: %w", d.Kind, err)
}

// commit installs next and persists it. A persistence failure is logged and
// does not roll back the in-memory state.
func (e *Engine) commit(ctx context.Context, next contracts.State) {
	e.state = next
	if e.deps.Store == nil {
		return
	}
	if err := e.deps.Store.Save(ctx, next); err != nil {
		e.logger.WithError(err).Error("State persistence failed")
	}
}

// execute sends every instruction even if one fails, returning the joined errors
func (e *Engine) execute(ctx context.Context, instructions []contracts.Instruction) error {
	var errs []error
	for _, in := range instructions {
		if err := e.deps.Executor.SetTargetWeight(ctx, in.Symbol, in.Weight); err != nil {
			e.logger.WithError(err).WithField("symbol", in.Symbol).Error("Set target weight failed")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("execution: %w", errors.Join(errs...))
	}
	return nil
}

func (e *Engine) finish(ctx context.Context, d *contracts.Decision) {
	if e.deps.Publisher != nil {
		e.deps.Publisher.Publish(d)
	}
	if e.deps.Journal != nil {
		if err := e.deps.Journal.Record(ctx, d); err != nil {
			e.logger.WithError(err).Error("Decision journal write failed")
		}
	}
}

// upstream marks a collaborator failure as ErrUpstreamDataUnavailable unless
// it already carries one of the evaluation sentinels.
func upstream(err error, what string) error {
	if errors.Is(err, contracts.ErrUpstreamDataUnavailable) ||
		errors.Is(err, contracts.ErrInsufficientHistory) ||
		errors.Is(err, contracts.ErrDegenerateStatistic) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", contracts.ErrUpstreamDataUnavailable, what, err)
}
