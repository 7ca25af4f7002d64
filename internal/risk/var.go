// Package risk measures tail loss of a daily return series.
package risk

import (
	"math"
	"sort"
)

// VaRResult VaR 계산 결과
// - VaR=0.05 → 95% 신뢰수준에서 하루 최대 5% 손실 가능
// - CVaR=0.07 → 5% tail에서 평균 7% 손실 예상
type VaRResult struct {
	Confidence float64 `json:"confidence"` // 신뢰수준 (예: 0.95, 0.99)
	VaR        float64 `json:"var"`        // Value at Risk (손실, 양수)
	CVaR       float64 `json:"cvar"`       // Conditional VaR (Expected Shortfall, 양수)
}

// CalculateVaR 과거 수익률 기반 VaR 계산 (Historical Simulation)
// returns: 일별 수익률 배열 (양수=이익, 음수=손실)
// confidence: 신뢰수준 (예: 0.95, 0.99)
func CalculateVaR(returns []float64, confidence float64) VaRResult {
	clean := make([]float64, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) && !math.IsInf(r, 0) {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return VaRResult{Confidence: confidence}
	}

	// 오름차순: 손실이 앞에
	sort.Float64s(clean)

	idx := int(math.Floor((1.0 - confidence) * float64(len(clean))))
	if idx >= len(clean) {
		idx = len(clean) - 1
	}

	return VaRResult{
		Confidence: confidence,
		VaR:        loss(clean[idx]),
		CVaR:       CalculateCVaR(clean, idx),
	}
}

// CalculateCVaR Conditional VaR (Expected Shortfall) 계산
// sorted: 오름차순 정렬된 수익률, varIdx 이하가 tail
func CalculateCVaR(sorted []float64, varIdx int) float64 {
	if len(sorted) == 0 || varIdx < 0 {
		return 0
	}
	if varIdx >= len(sorted) {
		varIdx = len(sorted) - 1
	}

	var sum float64
	for i := 0; i <= varIdx; i++ {
		sum += sorted[i]
	}
	return loss(sum / float64(varIdx+1))
}

// loss 손실을 양수로 표현, 이익이면 0
func loss(r float64) float64 {
	if r < 0 {
		return -r
	}
	return 0
}
