package signals

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/pkg/logger"
)

// Computer turns daily closes into smoothed relative-return signals
// ⭐ SSOT: in/out 시그널 계산은 여기서만
type Computer struct {
	lagMin  int
	lagMax  int
	minRows int
	macro   []strategyconfig.MacroSpec
	pairs   []strategyconfig.PairSpec
	logger  *logger.Logger
}

// NewComputer creates a signal computer from strategy config
func NewComputer(cfg *strategyconfig.Config, log *logger.Logger) *Computer {
	return &Computer{
		lagMin:  cfg.Signals.Smoothing.LagMin,
		lagMax:  cfg.Signals.Smoothing.LagMax,
		minRows: cfg.Signals.MinRows,
		macro:   cfg.Signals.Macro,
		pairs:   cfg.Signals.Pairs,
		logger:  log.Component("signals"),
	}
}

// Compute drops incomplete rows and builds the oriented return sample:
// one column per macro signal (inverted where configured) followed by one
// pair-differential column per pair.
func (c *Computer) Compute(table *contracts.PriceTable) (*contracts.ReturnSample, error) {
	clean := table.DropIncomplete()
	if clean.Len() < c.minRows {
		return nil, fmt.Errorf("%w: %d complete rows, need %d", contracts.ErrInsufficientHistory, clean.Len(), c.minRows)
	}

	sample := &contracts.ReturnSample{
		Dates:  clean.Dates,
		Values: make(map[string][]float64, len(c.macro)+len(c.pairs)),
		Raw:    make(map[string][]float64),
	}

	raw := func(symbol string) ([]float64, error) {
		if r, ok := sample.Raw[symbol]; ok {
			return r, nil
		}
		closes := clean.Series(symbol)
		if closes == nil {
			return nil, fmt.Errorf("%w: no closes for %s", contracts.ErrInsufficientHistory, symbol)
		}
		r, err := c.relativeReturns(closes)
		if err != nil {
			return nil, err
		}
		sample.Raw[symbol] = r
		return r, nil
	}

	for _, m := range c.macro {
		r, err := raw(m.Symbol)
		if err != nil {
			return nil, err
		}
		col := make([]float64, len(r))
		for i, v := range r {
			if m.Invert {
				// rising safe-haven currency is bearish
				col[i] = -v
			} else {
				col[i] = v
			}
		}
		sample.Columns = append(sample.Columns, m.Symbol)
		sample.Values[m.Symbol] = col
	}

	for _, p := range c.pairs {
		safe, err := raw(p.Safe)
		if err != nil {
			return nil, err
		}
		risk, err := raw(p.Risk)
		if err != nil {
			return nil, err
		}
		col := make([]float64, len(safe))
		for i := range safe {
			col[i] = -(safe[i] - risk[i])
		}
		sample.Columns = append(sample.Columns, p.Name)
		sample.Values[p.Name] = col
	}

	c.logger.WithFields(map[string]interface{}{
		"rows":    sample.Len(),
		"dropped": table.Len() - clean.Len(),
		"as_of":   sample.AsOf().Format("2006-01-02"),
	}).Debug("Computed return sample")

	return sample, nil
}

// relativeReturns returns close[i]/baseline[i] - 1 where baseline is the mean
// of the closes lagMin..lagMax rows back. Rows without full lag history are NaN.
func (c *Computer) relativeReturns(closes []float64) ([]float64, error) {
	out := make([]float64, len(closes))
	for i := range closes {
		if i < c.lagMax {
			out[i] = math.NaN()
			continue
		}
		baseline, err := stats.Mean(closes[i-c.lagMax : i-c.lagMin+1])
		if err != nil {
			return nil, fmt.Errorf("baseline at row %d: %w", i, err)
		}
		out[i] = closes[i]/baseline - 1
	}
	return out, nil
}
