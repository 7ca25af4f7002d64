package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateVaR(t *testing.T) {
	// -0.10, -0.05, 0.00 ... 0.85 (20 values)
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = -0.10 + float64(i)*0.05
	}

	tests := []struct {
		name       string
		returns    []float64
		confidence float64
		wantVaR    float64
		wantCVaR   float64
	}{
		{"95% picks second worst", returns, 0.95, 0.05, 0.075},
		{"99% picks worst", returns, 0.99, 0.10, 0.10},
		{"all gains", []float64{0.01, 0.02, 0.03}, 0.95, 0, 0},
		{"empty", nil, 0.95, 0, 0},
		{"non-finite ignored", []float64{math.NaN(), -0.02, math.Inf(1)}, 0.95, 0.02, 0.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateVaR(tt.returns, tt.confidence)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.InDelta(t, tt.wantVaR, got.VaR, 1e-12)
			assert.InDelta(t, tt.wantCVaR, got.CVaR, 1e-12)
		})
	}
}

func TestCalculateVaR_DoesNotMutateInput(t *testing.T) {
	in := []float64{0.03, -0.02, 0.01}
	CalculateVaR(in, 0.95)
	assert.Equal(t, []float64{0.03, -0.02, 0.01}, in)
}
