package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

// Regime is the engine's binary stance
type Regime string

const (
	RegimeIn  Regime = "IN"  // risk-on
	RegimeOut Regime = "OUT" // defensive
)

// Indicator returns 1 for IN and 0 for OUT (plotted as in_market)
func (r Regime) Indicator() int {
	if r == RegimeIn {
		return 1
	}
	return 0
}

// State is everything the engine carries between evaluations.
// It is treated as a value: evaluations read a copy and commit a new one.
// ⭐ SSOT: 엔진 상태의 직렬화 형식
type State struct {
	Regime     Regime    `json:"regime"`
	DayCounter int       `json:"day_counter"`
	OutDay     int       `json:"out_day"`
	WaitDays   int       `json:"wait_days"`
	LastAsOf   time.Time `json:"last_as_of"` // newest price row already evaluated
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewState returns the start-of-process state
func NewState(initialWait int) State {
	return State{
		Regime:     RegimeIn,
		DayCounter: 0,
		OutDay:     0,
		WaitDays:   initialWait,
	}
}

// Validate rejects a state that could not have been produced by the engine
func (s State) Validate() error {
	if s.Regime != RegimeIn && s.Regime != RegimeOut {
		return fmt.Errorf("invalid regime %q", s.Regime)
	}
	if s.DayCounter < 0 || s.OutDay < 0 || s.WaitDays < 0 {
		return fmt.Errorf("negative counter in state %+v", s)
	}
	if s.OutDay > s.DayCounter {
		return fmt.Errorf("out_day %d is after day_counter %d", s.OutDay, s.DayCounter)
	}
	return nil
}

// MarshalState encodes a state for persistence
func MarshalState(s State) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalState decodes and validates a persisted state
func UnmarshalState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}
