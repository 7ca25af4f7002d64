package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/inout/backend/internal/pricefeed"
	"github.com/wonny/inout/backend/pkg/config"
	"github.com/wonny/inout/backend/pkg/database"
	"github.com/wonny/inout/backend/pkg/logger"
)

// pricesCmd represents the prices command
var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "가격 데이터 관리",
}

var pricesImportCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "CSV 종가를 data.daily_prices 에 적재",
	Long: `wide 형식 CSV(date,SYM1,SYM2,...)를 data.daily_prices 에 upsert 합니다.
빈 셀은 건너뜁니다.

Example:
  go run ./cmd/inout prices import data/closes.csv`,
	Args: cobra.ExactArgs(1),
	RunE: importPrices,
}

func init() {
	rootCmd.AddCommand(pricesCmd)
	pricesCmd.AddCommand(pricesImportCmd)
}

func importPrices(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("prices import needs DATABASE_URL")
	}
	log := logger.New(cfg)

	src, err := pricefeed.OpenCSV(args[0])
	if err != nil {
		return err
	}
	table := src.Table()

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	start := time.Now()
	n, err := pricefeed.NewPostgresSource(db.Pool, log).Upsert(ctx, table)
	if err != nil {
		return err
	}

	PrintDoubleSeparator()
	fmt.Println("  Price import")
	PrintSeparator()
	PrintKeyValue("File", args[0], 8)
	PrintKeyValue("Symbols", fmt.Sprintf("%d", len(table.Symbols)), 8)
	if table.Len() > 0 {
		PrintKeyValue("Period", fmt.Sprintf("%s ~ %s",
			table.Dates[0].Format(time.DateOnly), table.LastDate().Format(time.DateOnly)), 8)
	}
	PrintKeyValue("Rows", fmt.Sprintf("%d", n), 8)
	PrintSeparator()
	PrintSuccess(fmt.Sprintf("Imported in %.2fs", time.Since(start).Seconds()))
	return nil
}
