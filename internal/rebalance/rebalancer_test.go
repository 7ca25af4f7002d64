package rebalance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
)

func TestResolveWeights(t *testing.T) {
	h := strategyconfig.Default().Holdings

	in := ResolveWeights(contracts.RegimeIn, h)
	assert.Equal(t, contracts.WeightMap{"TQQQ": 1, "TMF": 0, "TYD": 0}, in)

	out := ResolveWeights(contracts.RegimeOut, h)
	assert.Equal(t, contracts.WeightMap{"TQQQ": 0, "TMF": 0.5, "TYD": 0.5}, out)

	for _, w := range []contracts.WeightMap{in, out} {
		growth := w["TQQQ"] != 0
		defensive := w["TMF"] != 0 || w["TYD"] != 0
		assert.False(t, growth && defensive, "growth and defensive both nonzero: %v", w)
		assert.InDelta(t, 1, w.Total(), 1e-12)
	}
}

func TestNeedsTrade(t *testing.T) {
	tests := []struct {
		held, target float64
		want         bool
	}{
		{0, 0, false},
		{0, 0.5, true},
		{100, 0, true},
		{100, 0.5, false},
		{-3, 0, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NeedsTrade(tt.held, tt.target), "%v", tt)
	}
}

func TestOutCheck(t *testing.T) {
	r := NewRebalancer(strategyconfig.Default())

	// OUT with a growth position: sell growth, buy both defensives
	p := r.OutCheck(contracts.RegimeOut, contracts.HoldingSnapshot{"TQQQ": 120})
	assert.True(t, p.Active)
	assert.Equal(t, []contracts.Instruction{
		{Symbol: "TMF", Weight: 0.5},
		{Symbol: "TQQQ", Weight: 0},
		{Symbol: "TYD", Weight: 0.5},
	}, p.Instructions)

	// IN: inactive, but the resolved map is still the nominal one
	p = r.OutCheck(contracts.RegimeIn, contracts.HoldingSnapshot{"TMF": 10, "TYD": 10})
	assert.False(t, p.Active)
	assert.Empty(t, p.Instructions)
	assert.Equal(t, 1.0, p.Weights["TQQQ"])
}

func TestInCheck(t *testing.T) {
	r := NewRebalancer(strategyconfig.Default())

	p := r.InCheck(contracts.RegimeIn, contracts.HoldingSnapshot{"TMF": 10, "TYD": 12})
	assert.Equal(t, []contracts.Instruction{
		{Symbol: "TMF", Weight: 0},
		{Symbol: "TQQQ", Weight: 1},
		{Symbol: "TYD", Weight: 0},
	}, p.Instructions)

	p = r.InCheck(contracts.RegimeOut, contracts.HoldingSnapshot{"TMF": 10})
	assert.False(t, p.Active)
	assert.Empty(t, p.Instructions)
}

func TestTurnoverSuppression(t *testing.T) {
	r := NewRebalancer(strategyconfig.Default())

	// already positioned defensively, weights drifted: nothing to do
	p := r.OutCheck(contracts.RegimeOut, contracts.HoldingSnapshot{"TMF": 300, "TYD": 41})
	assert.Empty(t, p.Instructions)

	// already in growth
	p = r.InCheck(contracts.RegimeIn, contracts.HoldingSnapshot{"TQQQ": 7})
	assert.Empty(t, p.Instructions)
}
