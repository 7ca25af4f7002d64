package backtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/pricefeed"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/internal/testkit"
	"github.com/wonny/inout/backend/pkg/logger"
)

func flatCSV(t *testing.T, cfg *strategyconfig.Config, rows int) *pricefeed.CSVSource {
	t.Helper()
	symbols := append(cfg.RoleTable().SignalUniverse(), "TQQQ", "TMF", "TYD")

	var b strings.Builder
	b.WriteString("date," + strings.Join(symbols, ",") + "\n")
	for _, d := range testkit.TradingDays(rows) {
		b.WriteString(d.Format(time.DateOnly))
		for range symbols {
			b.WriteString(",100")
		}
		b.WriteString("\n")
	}

	src, err := pricefeed.ReadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	return src
}

func TestRun_FlatMarketStaysIn(t *testing.T) {
	cfg := strategyconfig.Default()
	src := flatCSV(t, cfg, 300)

	res, err := NewEngine(cfg, src, logger.Nop()).Run(context.Background(), Config{InitialCapital: 10000})
	require.NoError(t, err)

	assert.Equal(t, 300, res.TradingDays)
	assert.Equal(t, 60, res.WeeklyChecks)
	assert.Equal(t, 0, res.DaysOut)
	assert.Equal(t, 0, res.Switches)
	assert.Greater(t, res.Skipped, 0, "warm-up rows are skipped")
	assert.Equal(t, 1, res.TotalTrades, "only the first weekly in-check buys")
	assert.Equal(t, contracts.RegimeIn, res.FinalState.Regime)
	assert.InDelta(t, 10000, res.FinalCapital, 1e-6)
	assert.InDelta(t, 0, res.MaxDrawdown, 1e-12)
	assert.Equal(t, 0.0, res.DailyVaR95.VaR)
	assert.Len(t, res.EquityCurve, 300)
	assert.Len(t, res.Decisions, 360)
}

func TestRun_DateWindow(t *testing.T) {
	cfg := strategyconfig.Default()
	src := flatCSV(t, cfg, 20)
	days := testkit.TradingDays(20)

	res, err := NewEngine(cfg, src, logger.Nop()).Run(context.Background(), Config{
		StartDate:      days[5],
		EndDate:        days[9],
		InitialCapital: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, days[5], res.StartDate)
	assert.Equal(t, days[9], res.EndDate)
	assert.Equal(t, 5, res.TradingDays)

	_, err = NewEngine(cfg, src, logger.Nop()).Run(context.Background(), Config{
		StartDate:      days[19].AddDate(0, 0, 7),
		InitialCapital: 1000,
	})
	assert.Error(t, err)
}

func TestRun_RejectsBadCapital(t *testing.T) {
	cfg := strategyconfig.Default()
	_, err := NewEngine(cfg, flatCSV(t, cfg, 5), logger.Nop()).Run(context.Background(), Config{})
	assert.Error(t, err)
}

func TestIsWeekEnd(t *testing.T) {
	d := func(s string) time.Time {
		v, err := time.Parse(time.DateOnly, s)
		require.NoError(t, err)
		return v
	}
	// Thu, Fri holiday-less week, then Thu before a Good Friday style gap
	dates := []time.Time{
		d("2024-03-21"), d("2024-03-22"), d("2024-03-25"), d("2024-03-28"), d("2024-04-01"), d("2024-04-03"),
	}

	tests := []struct {
		i    int
		want bool
	}{
		{0, false},
		{1, true},
		{2, false},
		{3, true}, // Friday missing
		{4, false},
		{5, false}, // last row, Wednesday
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.i), func(t *testing.T) {
			assert.Equal(t, tt.want, IsWeekEnd(dates, tt.i, time.Friday))
		})
	}

	assert.True(t, IsWeekEnd([]time.Time{d("2024-04-05")}, 0, time.Friday))

	// Wednesday check day: Thursday rows never host it
	wednesday := []bool{false, false, true, false, false, true}
	for i, want := range wednesday {
		assert.Equal(t, want, IsWeekEnd(dates, i, time.Wednesday), "row %d", i)
	}
}

func TestCalculateMaxDrawdown(t *testing.T) {
	curve := []EquityPoint{{Equity: 100}, {Equity: 120}, {Equity: 90}, {Equity: 130}, {Equity: 117}}
	assert.InDelta(t, 0.25, calculateMaxDrawdown(curve), 1e-12)
	assert.Equal(t, 0.0, calculateMaxDrawdown(nil))
}
