package extreme

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/pkg/logger"
)

// Detector flags left-tail readings against each signal's trailing distribution
// ⭐ SSOT: 극단값(하위 꼬리) 판정은 여기서만
type Detector struct {
	percentile float64
	minSamples int
	logger     *logger.Logger
}

// Result is the breach vector for the newest row
type Result struct {
	Readings []contracts.SignalReading
	Count    int
}

// Flags returns the breach vector in column order
func (r *Result) Flags() []bool {
	out := make([]bool, len(r.Readings))
	for i, rd := range r.Readings {
		out[i] = rd.Breached
	}
	return out
}

// NewDetector creates a detector from strategy config
func NewDetector(cfg *strategyconfig.Config, log *logger.Logger) *Detector {
	return &Detector{
		percentile: cfg.Signals.Percentile,
		minSamples: cfg.Signals.MinPercentileSamples,
		logger:     log.Component("extreme"),
	}
}

// Detect ranks the newest value of every column against the whole window,
// newest value included. A breach is strictly below the percentile.
// Any column with fewer than minSamples defined values fails the whole day
// with ErrDegenerateStatistic; no partial vector is returned.
func (d *Detector) Detect(sample *contracts.ReturnSample) (*Result, error) {
	res := &Result{Readings: make([]contracts.SignalReading, 0, len(sample.Columns))}

	for _, name := range sample.Columns {
		threshold, n := Percentile(sample.Column(name), d.percentile)
		if n < d.minSamples {
			return nil, fmt.Errorf("%w: %s has %d samples, need %d", contracts.ErrDegenerateStatistic, name, n, d.minSamples)
		}

		current := sample.Last(name)
		breached := current < threshold
		if breached {
			res.Count++
		}
		res.Readings = append(res.Readings, contracts.SignalReading{
			Name:      name,
			Value:     current,
			Threshold: threshold,
			Breached:  breached,
		})
	}

	if res.Count > 0 {
		d.logger.WithFields(map[string]interface{}{
			"breaches": res.Count,
			"as_of":    sample.AsOf().Format("2006-01-02"),
		}).Debug("Left-tail breach detected")
	}
	return res, nil
}

// Percentile returns the p-th percentile (0..100) of the finite values,
// linearly interpolated between order statistics at rank (n-1)·p/100,
// and the number of finite values used. NaN when there are none.
func Percentile(values []float64, p float64) (float64, int) {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	n := len(sorted)
	if n == 0 {
		return math.NaN(), 0
	}
	sort.Float64s(sorted)

	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1], n
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo]), n
}
