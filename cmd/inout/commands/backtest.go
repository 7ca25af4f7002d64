package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/inout/backend/internal/backtest"
	"github.com/wonny/inout/backend/internal/observability"
	"github.com/wonny/inout/backend/internal/pricefeed"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "CSV 종가로 백테스트 실행",
	Long: `CSV 일별 종가를 재생하여 전략을 시뮬레이션합니다.

매 행마다 daily out-check, ISO 주의 마지막 거래일에 weekly in-check를 실행하고
메모리 브로커가 목표 비중을 즉시 체결합니다.

CSV 형식 (wide):
  date,SPY,XLI,DBB,...,TQQQ,TMF,TYD
  2020-01-02,324.87,81.05,...

Example:
  go run ./cmd/inout backtest --prices data/closes.csv
  go run ./cmd/inout backtest --prices data/closes.csv --from 2015-01-01 --chart out.png`,
	RunE: runBacktest,
}

var (
	backtestPrices string
	backtestFrom   string
	backtestTo     string
	backtestCash   float64
	backtestChart  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	// Flags
	backtestCmd.Flags().StringVar(&backtestPrices, "prices", "", "CSV 종가 파일 (required)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "시작일 (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "종료일 (YYYY-MM-DD)")
	backtestCmd.Flags().Float64Var(&backtestCash, "cash", 100000, "초기 자본")
	backtestCmd.Flags().StringVar(&backtestChart, "chart", "", "레짐 차트 PNG 경로")
	_ = backtestCmd.MarkFlagRequired("prices")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := cliLogger()

	strategy, hash, err := loadStrategy(strategyPath(), log)
	if err != nil {
		return err
	}

	from, err := parseDate(backtestFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseDate(backtestTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	src, err := pricefeed.OpenCSV(backtestPrices)
	if err != nil {
		return err
	}

	result, err := backtest.NewEngine(strategy, src, log).Run(context.Background(), backtest.Config{
		StartDate:      from,
		EndDate:        to,
		InitialCapital: backtestCash,
	})
	if err != nil {
		return err
	}

	PrintBacktestResult(result, hash)

	if backtestChart != "" {
		if err := observability.RenderChart(result.Decisions, backtestChart); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		abs, _ := filepath.Abs(backtestChart)
		PrintSuccess("Chart written to " + abs)
	}
	return nil
}

// strategyPath is the --strategy flag or the stock location
func strategyPath() string {
	if strategyFile != "" {
		return strategyFile
	}
	return "config/strategy/inout.yaml"
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
