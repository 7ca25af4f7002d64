package contracts

import "context"

// PriceSource returns the trailing daily closes for symbols.
// Implementations wrap transport failures in ErrUpstreamDataUnavailable.
// ⭐ SSOT: 가격 이력 수집 인터페이스
type PriceSource interface {
	History(ctx context.Context, symbols []string, days int) (*PriceTable, error)
}

// Executor is the brokerage side: it reports holdings and accepts target weights.
// Quantity, order type and timing are its concern.
type Executor interface {
	Holdings(ctx context.Context) (HoldingSnapshot, error)
	SetTargetWeight(ctx context.Context, symbol string, weight float64) error
}

// Publisher receives every decision, skipped ones included
type Publisher interface {
	Publish(d *Decision)
}

// StateStore persists the engine state between process restarts
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// DecisionJournal keeps an append-only audit trail of decisions
type DecisionJournal interface {
	Record(ctx context.Context, d *Decision) error
}
