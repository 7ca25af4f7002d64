package rebalance

import (
	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
)

// ResolveWeights returns the full target map for a regime. Pure and total:
// every configured holding appears, growth and defensive are never both nonzero.
// ⭐ SSOT: 목표 비중 결정은 이 함수에서만
func ResolveWeights(r contracts.Regime, h strategyconfig.Holdings) contracts.WeightMap {
	w := make(contracts.WeightMap, len(h.Growth)+2)
	in := r == contracts.RegimeIn

	for _, g := range h.Growth {
		if in {
			w[g.Symbol] = g.Weight
		} else {
			w[g.Symbol] = 0
		}
	}
	if in {
		w[h.DefensiveA.Symbol] = 0
		w[h.DefensiveB.Symbol] = 0
	} else {
		w[h.DefensiveA.Symbol] = h.DefensiveA.Weight
		w[h.DefensiveB.Symbol] = h.DefensiveB.Weight
	}
	return w
}

// NeedsTrade reports a zero/nonzero boundary crossing between holding and target.
// Drift inside an already-open position never trades.
func NeedsTrade(held, target float64) bool {
	return (held != 0 && target == 0) || (held == 0 && target != 0)
}

// Instructions filters a weight map down to boundary crossings, sorted by symbol
func Instructions(w contracts.WeightMap, holdings contracts.HoldingSnapshot) []contracts.Instruction {
	var out []contracts.Instruction
	for _, sym := range w.Symbols() {
		if NeedsTrade(holdings.Quantity(sym), w[sym]) {
			out = append(out, contracts.Instruction{Symbol: sym, Weight: w[sym]})
		}
	}
	return out
}

// Rebalancer applies the two entry-point policies
type Rebalancer struct {
	holdings strategyconfig.Holdings
}

// NewRebalancer creates a rebalancer from strategy config
func NewRebalancer(cfg *strategyconfig.Config) *Rebalancer {
	return &Rebalancer{holdings: cfg.Holdings}
}

// Plan is the weight map for the current regime plus the instructions an
// entry point emits. Instructions is empty when the entry point is inactive.
type Plan struct {
	Weights      contracts.WeightMap
	Instructions []contracts.Instruction
	Active       bool
}

// OutCheck is the daily entry point: it only moves the book when OUT.
// While IN it leaves positions alone; re-entry is the weekly in-check's job.
func (r *Rebalancer) OutCheck(regime contracts.Regime, holdings contracts.HoldingSnapshot) Plan {
	return r.plan(regime, regime == contracts.RegimeOut, holdings)
}

// InCheck is the weekly entry point: it only moves the book when IN
func (r *Rebalancer) InCheck(regime contracts.Regime, holdings contracts.HoldingSnapshot) Plan {
	return r.plan(regime, regime == contracts.RegimeIn, holdings)
}

func (r *Rebalancer) plan(regime contracts.Regime, active bool, holdings contracts.HoldingSnapshot) Plan {
	p := Plan{
		Weights: ResolveWeights(regime, r.holdings),
		Active:  active,
	}
	if active {
		p.Instructions = Instructions(p.Weights, holdings)
	}
	return p
}
