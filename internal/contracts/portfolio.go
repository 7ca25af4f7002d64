package contracts

import (
	"sort"
	"time"
)

// WeightMap maps symbol → target fraction of portfolio value.
// Resolved from scratch on every evaluation, never accumulated.
type WeightMap map[string]float64

// Symbols returns the keys in sorted order
func (w WeightMap) Symbols() []string {
	out := make([]string, 0, len(w))
	for sym := range w {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Total returns the sum of all weights
func (w WeightMap) Total() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// HoldingSnapshot is the current quantity held per symbol (read-only input)
type HoldingSnapshot map[string]float64

// Quantity returns the held quantity, 0 when absent
func (h HoldingSnapshot) Quantity(symbol string) float64 {
	return h[symbol]
}

// Instruction asks the execution collaborator to move symbol to Weight
type Instruction struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// EvaluationKind names the scheduler entry point that produced a decision
type EvaluationKind string

const (
	KindDailyOutCheck EvaluationKind = "daily_out_check"
	KindWeeklyInCheck EvaluationKind = "weekly_in_check"
)

// SignalReading is one signal's value against its left-tail threshold
type SignalReading struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Breached  bool    `json:"breached"`
}

// Decision records one evaluation: inputs, state transition and instructions.
// A skipped evaluation carries SkipReason and Before == After.
type Decision struct {
	Kind         EvaluationKind  `json:"kind"`
	AsOf         time.Time       `json:"as_of"`
	EvaluatedAt  time.Time       `json:"evaluated_at"`
	Before       State           `json:"before"`
	After        State           `json:"after"`
	Readings     []SignalReading `json:"readings,omitempty"`
	BreachCount  int             `json:"breach_count"`
	WaitDays     int             `json:"wait_days"`
	Weights      WeightMap       `json:"weights,omitempty"`
	Instructions []Instruction   `json:"instructions,omitempty"`
	Skipped      bool            `json:"skipped"`
	SkipReason   string          `json:"skip_reason,omitempty"`
	Error        string          `json:"error,omitempty"`
}
