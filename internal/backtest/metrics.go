package backtest

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/wonny/inout/backend/internal/risk"
)

// calculateMetrics calculates performance metrics from the equity curve
func calculateMetrics(result *Result) {
	if len(result.EquityCurve) == 0 || result.InitialCapital <= 0 {
		return
	}

	result.TotalReturn = (result.FinalCapital - result.InitialCapital) / result.InitialCapital

	// CAGR over calendar time
	years := result.EndDate.Sub(result.StartDate).Hours() / 24 / 365.25
	if years > 0 && result.FinalCapital > 0 {
		result.CAGR = math.Pow(result.FinalCapital/result.InitialCapital, 1.0/years) - 1.0
	}

	dailyReturns := make([]float64, 0, len(result.EquityCurve))
	for i := 1; i < len(result.EquityCurve); i++ {
		prev := result.EquityCurve[i-1].Equity
		if prev == 0 {
			continue
		}
		dailyReturns = append(dailyReturns, result.EquityCurve[i].Equity/prev-1)
	}

	// Volatility (annualized)
	if sd, err := stats.StandardDeviationPopulation(dailyReturns); err == nil {
		result.Volatility = sd * math.Sqrt(252)
	}

	// Sharpe Ratio (0% risk-free)
	if result.Volatility > 0 {
		result.SharpeRatio = result.CAGR / result.Volatility
	}

	result.MaxDrawdown = calculateMaxDrawdown(result.EquityCurve)
	result.DailyVaR95 = risk.CalculateVaR(dailyReturns, 0.95)
}

// calculateMaxDrawdown calculates maximum drawdown from equity curve
func calculateMaxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	maxDrawdown := 0.0
	peak := curve[0].Equity

	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if peak <= 0 {
			continue
		}

		drawdown := (peak - point.Equity) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}
