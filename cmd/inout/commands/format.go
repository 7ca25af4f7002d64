package commands

import (
	"fmt"
	"time"

	"github.com/wonny/inout/backend/internal/backtest"
	"github.com/wonny/inout/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	for i := 0; i < totalWidth; i++ {
		fmt.Print("─")
	}
	fmt.Println()
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintWeights prints a target weight map in symbol order
func PrintWeights(w contracts.WeightMap) {
	for _, sym := range w.Symbols() {
		PrintKeyValue(sym, fmt.Sprintf("%.2f", w[sym]), 6)
	}
}

// PrintDecision prints one evaluation with its signal table
func PrintDecision(d *contracts.Decision) {
	PrintDoubleSeparator()
	fmt.Printf("  %s  %s\n", d.Kind, d.AsOf.Format(time.DateOnly))
	PrintSeparator()

	if d.Skipped {
		PrintWarning(fmt.Sprintf("Skipped (%s): %s", d.SkipReason, d.Error))
		return
	}

	PrintKeyValue("Regime", fmt.Sprintf("%s → %s", d.Before.Regime, d.After.Regime), 12)
	PrintKeyValue("Day", fmt.Sprintf("%d (out day %d)", d.Before.DayCounter, d.After.OutDay), 12)
	PrintKeyValue("Breaches", fmt.Sprintf("%d", d.BreachCount), 12)
	PrintKeyValue("Wait days", fmt.Sprintf("%d", d.WaitDays), 12)

	if len(d.Readings) > 0 {
		fmt.Println()
		widths := []int{6, 10, 10, 6}
		PrintTableHeader([]string{"Signal", "Value", "P1", "Breach"}, widths)
		for _, r := range d.Readings {
			mark := ""
			if r.Breached {
				mark = "●"
			}
			PrintTableRow([]string{
				r.Name,
				fmt.Sprintf("%+.4f", r.Value),
				fmt.Sprintf("%+.4f", r.Threshold),
				mark,
			}, widths)
		}
	}

	fmt.Println()
	if len(d.Instructions) == 0 {
		fmt.Println("   No trades")
		return
	}
	for _, in := range d.Instructions {
		fmt.Printf("   → %s target %.2f\n", in.Symbol, in.Weight)
	}
}

// PrintBacktestResult prints the replay summary
func PrintBacktestResult(r *backtest.Result, hash string) {
	PrintDoubleSeparator()
	fmt.Println("  Backtest")
	PrintSeparator()
	PrintKeyValue("Period", fmt.Sprintf("%s ~ %s (%d days)",
		r.StartDate.Format(time.DateOnly), r.EndDate.Format(time.DateOnly), r.TradingDays), 14)
	PrintKeyValue("Config hash", hash[:12], 14)
	PrintKeyValue("Capital", fmt.Sprintf("%.2f → %.2f", r.InitialCapital, r.FinalCapital), 14)
	PrintKeyValue("Total return", fmt.Sprintf("%.2f%%", r.TotalReturn*100), 14)
	PrintKeyValue("CAGR", fmt.Sprintf("%.2f%%", r.CAGR*100), 14)
	PrintKeyValue("Volatility", fmt.Sprintf("%.2f%%", r.Volatility*100), 14)
	PrintKeyValue("Sharpe", fmt.Sprintf("%.2f", r.SharpeRatio), 14)
	PrintKeyValue("Max drawdown", fmt.Sprintf("%.2f%%", r.MaxDrawdown*100), 14)
	PrintKeyValue("Daily VaR 95", fmt.Sprintf("%.2f%% (CVaR %.2f%%)", r.DailyVaR95.VaR*100, r.DailyVaR95.CVaR*100), 14)
	PrintSeparator()
	PrintKeyValue("Days out", fmt.Sprintf("%d", r.DaysOut), 14)
	PrintKeyValue("Switches", fmt.Sprintf("%d", r.Switches), 14)
	PrintKeyValue("Weekly checks", fmt.Sprintf("%d", r.WeeklyChecks), 14)
	PrintKeyValue("Trades", fmt.Sprintf("%d", r.TotalTrades), 14)
	PrintKeyValue("Skipped", fmt.Sprintf("%d", r.Skipped), 14)
	PrintKeyValue("Final state", fmt.Sprintf("%s day %d wait %d",
		r.FinalState.Regime, r.FinalState.DayCounter, r.FinalState.WaitDays), 14)
	PrintSeparator()
	fmt.Printf("✅ Replayed in %.2fs\n", r.Duration.Seconds())
}
