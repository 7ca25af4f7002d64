package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/inout/backend/internal/strategyconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 관리",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "전략 YAML 검증 및 해시 출력",
	Long: `전략 YAML 을 읽어 필수 제약(에러)과 권장 제약(경고)을 검사하고
저널에 기록되는 설정 해시를 출력합니다.

Example:
  go run ./cmd/inout config validate --strategy config/strategy/inout.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	path := strategyPath()

	cfg, _, err := strategyconfig.Load(path)
	if err != nil {
		PrintError(fmt.Sprintf("%s: %v", path, err))
		return err
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintDoubleSeparator()
	fmt.Printf("  %s v%s\n", cfg.Meta.StrategyID, cfg.Meta.Version)
	PrintSeparator()
	PrintKeyValue("File", path, 10)
	PrintKeyValue("Hash", hash, 10)
	PrintKeyValue("Signals", fmt.Sprintf("%v", cfg.ColumnNames()), 10)
	PrintKeyValue("Universe", fmt.Sprintf("%v", cfg.RoleTable().SignalUniverse()), 10)
	PrintKeyValue("Wait days", fmt.Sprintf("initial %d, decay %.2f, ceiling %d",
		cfg.WaitDays.Initial, cfg.WaitDays.Decay, cfg.WaitDays.Ceiling), 10)
	if spec, err := cfg.Schedule.CronSpec(); err == nil {
		PrintKeyValue("Schedule", fmt.Sprintf("%s (%s)", spec, cfg.Meta.Timezone), 10)
	}
	PrintSeparator()

	warnings := strategyconfig.Warn(cfg)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	if len(warnings) == 0 {
		PrintSuccess("Strategy config is valid")
	}
	return nil
}
