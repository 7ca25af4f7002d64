package waitdays

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
)

// raw builds a sample holding only the two newest raw returns per symbol
func raw(prevLast map[string][2]float64) *contracts.ReturnSample {
	s := &contracts.ReturnSample{Raw: map[string][]float64{}}
	for _, sym := range []string{"GLD", "SLV", "XLU", "XLI", "FXF", "FXA"} {
		s.Raw[sym] = []float64{0.001, 0.001}
	}
	for sym, v := range prevLast {
		s.Raw[sym] = []float64{v[0], v[1]}
	}
	return s
}

func TestEscalates(t *testing.T) {
	assert.True(t, Escalates(0.03, -0.02, 0.01))
	assert.False(t, Escalates(0, -0.02, 0.01), "safe leg must be strictly positive")
	assert.False(t, Escalates(0.03, 0, 0.01), "risk leg must be strictly negative")
	assert.False(t, Escalates(0.03, -0.02, -0.01), "risk leg must reverse from positive")
	assert.False(t, Escalates(math.NaN(), -0.02, 0.01))
}

func TestNext_GoldSilverReversalRestoresInitial(t *testing.T) {
	a := NewAdjuster(strategyconfig.Default())

	// gold +3%, silver -2% today after +1% yesterday
	s := raw(map[string][2]float64{
		"GLD": {0.0, 0.03},
		"SLV": {0.01, -0.02},
	})

	got, checks := a.Next(2, s)
	assert.Equal(t, 15, got)
	assert.Equal(t, []PairCheck{{"G_S", true}, {"U_I", false}, {"C_A", false}}, checks)
	assert.Equal(t, 15, a.Contribution(true))
	assert.Equal(t, 1, a.Contribution(false))
}

func TestNext_DecayWithoutStress(t *testing.T) {
	a := NewAdjuster(strategyconfig.Default())
	s := raw(nil)

	seq := []int{}
	v := 15
	for i := 0; i < 5; i++ {
		v, _ = a.Next(v, s)
		seq = append(seq, v)
	}
	assert.Equal(t, []int{7, 3, 1, 1, 1}, seq)
}

func TestNext_CeilingAndBounds(t *testing.T) {
	cfg := strategyconfig.Default()
	a := NewAdjuster(cfg)
	s := raw(nil)

	got, _ := a.Next(500, s)
	assert.Equal(t, 60, got, "capped at ceiling")

	for prev := 0; prev <= 200; prev++ {
		next, _ := a.Next(prev, s)
		assert.LessOrEqual(t, float64(next), math.Max(0.5*float64(prev), float64(cfg.WaitDays.Initial)))
		assert.LessOrEqual(t, next, cfg.WaitDays.Ceiling)
		assert.GreaterOrEqual(t, next, 0)
	}
}

func TestNext_AnyPairEscalates(t *testing.T) {
	a := NewAdjuster(strategyconfig.Default())
	s := raw(map[string][2]float64{
		"FXF": {0.0, 0.004},
		"FXA": {0.002, -0.006},
	})

	got, checks := a.Next(40, s)
	assert.Equal(t, 20, got, "decayed value wins when larger than the escalation term")
	assert.True(t, checks[2].Escalated)
}
