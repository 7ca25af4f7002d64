package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inout",
	Short: "In/Out - 레짐 감지 및 리밸런싱 엔진",
	Long: `In/Out regime engine CLI

매일 장 시작 후 좌측 꼬리 신호(매크로 5개 + 페어 3개)를 평가하여
성장 자산(IN)과 방어 자산(OUT) 사이를 전환합니다.

Usage:
  go run ./cmd/inout [command]

Examples:
  go run ./cmd/inout run
  go run ./cmd/inout evaluate daily
  go run ./cmd/inout state show
  go run ./cmd/inout backtest --prices data/closes.csv`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default is STRATEGY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
