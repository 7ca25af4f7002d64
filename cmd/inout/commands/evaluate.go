package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/inout/backend/internal/contracts"
)

// evaluateCmd runs one entry point immediately
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [daily|weekly]",
	Short: "평가 1회 즉시 실행",
	Long: `daily out-check 또는 weekly in-check를 즉시 1회 실행합니다.
상태는 설정된 저장소(STATE_STORE)에 저장됩니다.

Example:
  go run ./cmd/inout evaluate daily
  go run ./cmd/inout evaluate weekly`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"daily", "weekly"},
	RunE:      runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var d *contracts.Decision
	switch args[0] {
	case "daily":
		d, err = a.engine.DailyEvaluate(ctx)
	case "weekly":
		d, err = a.engine.WeeklyEvaluate(ctx)
	default:
		return fmt.Errorf("unknown entry point %q (daily|weekly)", args[0])
	}

	if d != nil {
		PrintDecision(d)
	}
	if errors.Is(err, contracts.ErrNoNewSession) {
		// 같은 종가 재평가는 실패가 아님
		return nil
	}
	return err
}
