package pricefeed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/pkg/logger"
)

// PostgresSource reads daily closes from data.daily_prices
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresSource creates a new price source over pool
func NewPostgresSource(pool *pgxpool.Pool, log *logger.Logger) *PostgresSource {
	return &PostgresSource{pool: pool, logger: log.Component("pricefeed.postgres")}
}

// History returns the last `days` trading dates on which any of symbols traded
func (s *PostgresSource) History(ctx context.Context, symbols []string, days int) (*contracts.PriceTable, error) {
	query := `
		WITH dates AS (
			SELECT DISTINCT trade_date
			FROM data.daily_prices
			WHERE symbol = ANY($1)
			ORDER BY trade_date DESC
			LIMIT $2
		)
		SELECT p.symbol, p.trade_date, p.close_price
		FROM data.daily_prices p
		JOIN dates d ON d.trade_date = p.trade_date
		WHERE p.symbol = ANY($1)
		ORDER BY p.trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbols, days)
	if err != nil {
		return nil, fmt.Errorf("%w: query daily_prices: %w", contracts.ErrUpstreamDataUnavailable, err)
	}
	defer rows.Close()

	series := make(map[string][]contracts.PricePoint, len(symbols))
	for rows.Next() {
		var (
			sym string
			p   contracts.PricePoint
		)
		if err := rows.Scan(&sym, &p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("%w: scan daily_prices: %w", contracts.ErrUpstreamDataUnavailable, err)
		}
		series[sym] = append(series[sym], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read daily_prices: %w", contracts.ErrUpstreamDataUnavailable, err)
	}

	table := contracts.AlignSeries(symbols, series)
	s.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"rows":    table.Len(),
	}).Debug("Loaded price history")
	return table, nil
}

// Upsert writes every close in table in one batch (NaN cells are skipped)
func (s *PostgresSource) Upsert(ctx context.Context, table *contracts.PriceTable) (int, error) {
	query := `
		INSERT INTO data.daily_prices (symbol, trade_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`

	batch := &pgx.Batch{}
	for _, sym := range table.Symbols {
		col := table.Series(sym)
		for i, d := range table.Dates {
			if i >= len(col) || !(col[i] > 0) {
				continue
			}
			batch.Queue(query, sym, d, col[i])
		}
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("upsert daily_prices: %w", err)
	}
	return batch.Len(), nil
}
