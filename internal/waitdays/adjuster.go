package waitdays

import (
	"math"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
)

// Adjuster computes the adaptive cooldown: 50% daily decay, restored to the
// initial constant whenever a safe-vs-risk pair shows a fresh reversal.
type Adjuster struct {
	initial int
	decay   float64
	ceiling int
	pairs   []strategyconfig.PairSpec
}

// PairCheck is one pair's escalation verdict, kept for logging
type PairCheck struct {
	Pair      string
	Escalated bool
}

// NewAdjuster creates an adjuster from strategy config
func NewAdjuster(cfg *strategyconfig.Config) *Adjuster {
	return &Adjuster{
		initial: cfg.WaitDays.Initial,
		decay:   cfg.WaitDays.Decay,
		ceiling: cfg.WaitDays.Ceiling,
		pairs:   cfg.Signals.Pairs,
	}
}

// Escalates reports a fresh reversal: the safe leg is up today while the
// risk leg turned from up yesterday to down today.
func Escalates(safeLast, riskLast, riskPrev float64) bool {
	return safeLast > 0 && riskLast < 0 && riskPrev > 0
}

// Contribution returns the pair's escalation term: the initial constant when
// it escalates, otherwise 1.
func (a *Adjuster) Contribution(escalated bool) int {
	if escalated {
		return a.initial
	}
	return 1
}

// Next returns floor(max(decay·prev, max pair contribution)) capped at the ceiling,
// reading raw (non-inverted) leg returns from the sample.
func (a *Adjuster) Next(prev int, sample *contracts.ReturnSample) (int, []PairCheck) {
	checks := make([]PairCheck, 0, len(a.pairs))
	term := 1
	for _, p := range a.pairs {
		esc := Escalates(sample.RawLast(p.Safe), sample.RawLast(p.Risk), sample.RawPrev(p.Risk))
		checks = append(checks, PairCheck{Pair: p.Name, Escalated: esc})
		if c := a.Contribution(esc); c > term {
			term = c
		}
	}
	return a.combine(prev, term), checks
}

func (a *Adjuster) combine(prev, term int) int {
	v := int(math.Floor(math.Max(a.decay*float64(prev), float64(term))))
	if v > a.ceiling {
		v = a.ceiling
	}
	if v < 0 {
		v = 0
	}
	return v
}
