package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/inout/backend/internal/journal"
	"github.com/wonny/inout/backend/internal/observability"
)

// chartCmd renders journaled decisions
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "저널 기록으로 레짐 차트 생성",
	Long: `audit.inout_decisions 에 기록된 daily out-check 로
in_market / num_out_signals / wait_days 차트를 CHART_DIR 에 저장합니다.

Example:
  go run ./cmd/inout chart --days 365`,
	RunE: runChart,
}

var chartDays int

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().IntVar(&chartDays, "days", 365, "조회 기간 (일)")
}

func runChart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("chart needs the decision journal (DATABASE_URL)")
	}

	since := time.Now().AddDate(0, 0, -chartDays)
	decisions, err := journal.NewPostgresJournal(a.db.Pool, a.hash).Since(ctx, since)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.ChartDir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(a.cfg.ChartDir, fmt.Sprintf("inout_%s.png", time.Now().Format("20060102")))
	if err := observability.RenderChart(decisions, path); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%d decisions charted to %s", len(decisions), path))
	return nil
}
