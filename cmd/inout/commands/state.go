package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/inout/backend/internal/journal"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "엔진 상태 조회/초기화",
}

var (
	stateShowCmd = &cobra.Command{
		Use:   "show",
		Short: "저장된 상태 조회",
		RunE:  showState,
	}

	stateResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "초기 상태(IN, day 0)로 되돌림",
		RunE:  resetState,
	}
)

var stateRecent int

func init() {
	rootCmd.AddCommand(stateCmd)
	stateShowCmd.Flags().IntVar(&stateRecent, "recent", 10, "저널에서 보여줄 최근 평가 수")
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
}

func showState(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.engine.State()
	PrintDoubleSeparator()
	fmt.Printf("  Engine state (%s)\n", a.cfg.State.Store)
	PrintSeparator()
	PrintKeyValue("Regime", string(st.Regime), 12)
	PrintKeyValue("Day counter", fmt.Sprintf("%d", st.DayCounter), 12)
	PrintKeyValue("Out day", fmt.Sprintf("%d", st.OutDay), 12)
	PrintKeyValue("Wait days", fmt.Sprintf("%d", st.WaitDays), 12)
	if !st.UpdatedAt.IsZero() {
		PrintKeyValue("Updated", st.UpdatedAt.Format("2006-01-02 15:04:05"), 12)
	}
	PrintSeparator()
	PrintWeights(a.engine.Weights())

	if a.db == nil {
		return nil
	}
	recent, err := journal.NewPostgresJournal(a.db.Pool, a.hash).Recent(context.Background(), stateRecent)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		fmt.Println()
		widths := []int{16, 10, 6, 8, 4, 20}
		PrintTableHeader([]string{"Kind", "As of", "Regime", "Breaches", "Wait", "Skip"}, widths)
		for _, d := range recent {
			PrintTableRow([]string{
				string(d.Kind),
				d.AsOf.Format(time.DateOnly),
				string(d.After.Regime),
				fmt.Sprintf("%d", d.BreachCount),
				fmt.Sprintf("%d", d.WaitDays),
				d.SkipReason,
			}, widths)
		}
	}
	return nil
}

func resetState(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.engine.Reset(context.Background()); err != nil {
		return err
	}
	PrintSuccess("State reset to IN / day 0")
	return nil
}
