package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/engine"
	"github.com/wonny/inout/backend/internal/execution"
	"github.com/wonny/inout/backend/internal/observability"
	"github.com/wonny/inout/backend/internal/pricefeed"
	"github.com/wonny/inout/backend/internal/risk"
	"github.com/wonny/inout/backend/internal/statestore"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/pkg/logger"
)

// Engine replays a CSV of daily closes through the in/out engine
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	strategy  *strategyconfig.Config
	source    *pricefeed.CSVSource
	publisher contracts.Publisher
	logger    *logger.Logger
}

// Config holds backtest configuration
type Config struct {
	StartDate      time.Time // zero: first row
	EndDate        time.Time // zero: last row
	InitialCapital float64
}

// Result holds backtest results
type Result struct {
	Config      Config
	StartDate   time.Time
	EndDate     time.Time
	Duration    time.Duration
	TradingDays int

	// Performance metrics
	InitialCapital float64
	FinalCapital   float64
	TotalReturn    float64
	CAGR           float64
	Volatility     float64
	SharpeRatio    float64
	MaxDrawdown    float64
	DailyVaR95     risk.VaRResult

	// Regime metrics
	DaysOut      int
	Switches     int
	Skipped      int
	TotalTrades  int
	FinalState   contracts.State
	WeeklyChecks int

	EquityCurve []EquityPoint
	Decisions   []contracts.Decision
}

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Date   time.Time
	Equity float64
	Regime contracts.Regime
}

// NewEngine creates a new backtest engine over a loaded CSV
func NewEngine(strategy *strategyconfig.Config, source *pricefeed.CSVSource, log *logger.Logger) *Engine {
	return &Engine{
		strategy: strategy,
		source:   source,
		logger:   log.Component("backtest"),
	}
}

// WithPublisher forwards every replayed decision to p as well
func (e *Engine) WithPublisher(p contracts.Publisher) *Engine {
	e.publisher = p
	return e
}

// Run walks the rows in [StartDate, EndDate]: the daily out-check on every
// row, then the weekly in-check on the last trading day of each ISO week.
// Evaluation skips are recorded, not fatal.
func (e *Engine) Run(ctx context.Context, config Config) (*Result, error) {
	table := e.source.Table()
	if table.Len() == 0 {
		return nil, fmt.Errorf("backtest: empty price table")
	}
	if config.InitialCapital <= 0 {
		return nil, fmt.Errorf("backtest: initial capital must be positive")
	}
	weekday, err := e.strategy.Schedule.WeeklyWeekday()
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	broker := execution.NewMemoryBroker(config.InitialCapital)
	recorder := observability.NewRecorder(table.Len() * 2)
	publishers := observability.Multi{recorder}
	if e.publisher != nil {
		publishers = append(publishers, e.publisher)
	}

	var now time.Time
	eng, err := engine.New(e.strategy, engine.Deps{
		Prices:    e.source,
		Executor:  broker,
		Publisher: publishers,
		Store:     &statestore.Memory{},
		Clock:     func() time.Time { return now },
	}, logger.Nop())
	if err != nil {
		return nil, err
	}

	result := &Result{
		Config:         config,
		InitialCapital: config.InitialCapital,
	}
	holdings := holdingSymbols(e.strategy.Holdings)

	e.logger.WithFields(map[string]interface{}{
		"rows":            table.Len(),
		"initial_capital": config.InitialCapital,
	}).Info("Starting backtest")

	for i, day := range table.Dates {
		if !config.StartDate.IsZero() && day.Before(config.StartDate) {
			continue
		}
		if !config.EndDate.IsZero() && day.After(config.EndDate) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		now = day.Add(16 * time.Hour)
		e.source.SetAsOf(day)
		broker.SetPrices(rowCloses(table, holdings, i))

		if result.TradingDays == 0 {
			result.StartDate = day
		}
		result.EndDate = day
		result.TradingDays++

		d, err := eng.DailyEvaluate(ctx)
		e.note(d, err)
		if d != nil && !d.Skipped && d.After.Regime == contracts.RegimeOut {
			result.DaysOut++
		}
		if d != nil && !d.Skipped && d.Before.Regime != d.After.Regime {
			result.Switches++
		}

		if IsWeekEnd(table.Dates, i, weekday) {
			d, err := eng.WeeklyEvaluate(ctx)
			e.note(d, err)
			result.WeeklyChecks++
		}

		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Date:   day,
			Equity: broker.Equity(),
			Regime: eng.State().Regime,
		})
	}
	e.source.SetAsOf(time.Time{})

	if result.TradingDays == 0 {
		return nil, fmt.Errorf("backtest: no rows between %s and %s",
			config.StartDate.Format(time.DateOnly), config.EndDate.Format(time.DateOnly))
	}

	result.Decisions = recorder.All()
	for _, d := range result.Decisions {
		if d.Skipped {
			result.Skipped++
		}
	}
	result.TotalTrades = len(broker.Fills())
	result.FinalCapital = broker.Equity()
	result.FinalState = eng.State()
	result.Duration = time.Since(startTime)
	calculateMetrics(result)

	e.logger.WithFields(map[string]interface{}{
		"trading_days": result.TradingDays,
		"total_return": fmt.Sprintf("%.2f%%", result.TotalReturn*100),
		"cagr":         fmt.Sprintf("%.2f%%", result.CAGR*100),
		"max_drawdown": fmt.Sprintf("%.2f%%", result.MaxDrawdown*100),
		"days_out":     result.DaysOut,
		"switches":     result.Switches,
		"skipped":      result.Skipped,
	}).Info("Backtest completed")

	return result, nil
}

// note logs evaluation errors; skips are expected during warm-up
func (e *Engine) note(d *contracts.Decision, err error) {
	if err == nil {
		return
	}
	log := e.logger.WithError(err)
	if d != nil {
		log = log.WithField("as_of", d.AsOf.Format(time.DateOnly))
	}
	if errors.Is(err, contracts.ErrInsufficientHistory) || errors.Is(err, contracts.ErrDegenerateStatistic) ||
		errors.Is(err, contracts.ErrNoNewSession) {
		log.Debug("Evaluation skipped")
		return
	}
	log.Warn("Evaluation failed")
}

// IsWeekEnd reports whether dates[i] is the last trading day of its ISO week
// on or before the weekly check day. Missing rows are closures, so a closed
// check day moves the check to the previous row of that week. The final row
// only counts when it falls on the weekly check day.
func IsWeekEnd(dates []time.Time, i int, weekday time.Weekday) bool {
	day, due := isoDay(dates[i].Weekday()), isoDay(weekday)
	if day > due {
		return false
	}
	if i+1 < len(dates) {
		y1, w1 := dates[i].ISOWeek()
		y2, w2 := dates[i+1].ISOWeek()
		return y1 != y2 || w1 != w2 || isoDay(dates[i+1].Weekday()) > due
	}
	return day == due
}

// isoDay numbers Monday 1 through Sunday 7
func isoDay(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func holdingSymbols(h strategyconfig.Holdings) []string {
	out := make([]string, 0, len(h.Growth)+2)
	for _, g := range h.Growth {
		out = append(out, g.Symbol)
	}
	return append(out, h.DefensiveA.Symbol, h.DefensiveB.Symbol)
}

func rowCloses(t *contracts.PriceTable, symbols []string, i int) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		if col, ok := t.Closes[sym]; ok && i < len(col) {
			out[sym] = col[i]
		}
	}
	return out
}
