package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/inout/backend/internal/contracts"
)

// PostgresJournal appends every decision to audit.inout_decisions, tagged
// with the strategy config hash that produced it.
// ⭐ SSOT: 판단 이력 저장은 여기서만
type PostgresJournal struct {
	pool       *pgxpool.Pool
	configHash string
}

// NewPostgresJournal creates a journal
func NewPostgresJournal(pool *pgxpool.Pool, configHash string) *PostgresJournal {
	return &PostgresJournal{pool: pool, configHash: configHash}
}

// Record implements contracts.DecisionJournal
func (j *PostgresJournal) Record(ctx context.Context, d *contracts.Decision) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	query := `
		INSERT INTO audit.inout_decisions (
			kind, as_of, evaluated_at, regime, day_counter,
			breach_count, wait_days, skipped, skip_reason, config_hash, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)
	`

	_, err = j.pool.Exec(ctx, query,
		string(d.Kind), d.AsOf, d.EvaluatedAt, string(d.After.Regime), d.After.DayCounter,
		d.BreachCount, d.WaitDays, d.Skipped, d.SkipReason, j.configHash, payload,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Recent returns the newest decisions, newest first
func (j *PostgresJournal) Recent(ctx context.Context, limit int) ([]contracts.Decision, error) {
	query := `
		SELECT payload
		FROM audit.inout_decisions
		ORDER BY evaluated_at DESC, id DESC
		LIMIT $1
	`

	rows, err := j.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	return scanDecisions(rows)
}

// Since returns decisions evaluated at or after t, oldest first
func (j *PostgresJournal) Since(ctx context.Context, t time.Time) ([]contracts.Decision, error) {
	query := `
		SELECT payload
		FROM audit.inout_decisions
		WHERE evaluated_at >= $1
		ORDER BY evaluated_at ASC, id ASC
	`

	rows, err := j.pool.Query(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	return scanDecisions(rows)
}

func scanDecisions(rows pgx.Rows) ([]contracts.Decision, error) {
	defer rows.Close()

	var out []contracts.Decision
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var d contracts.Decision
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
