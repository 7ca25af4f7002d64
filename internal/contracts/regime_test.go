package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTrip(t *testing.T) {
	s := State{Regime: RegimeOut, DayCounter: 40, OutDay: 31, WaitDays: 7,
		LastAsOf: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)}

	data, err := MarshalState(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"regime":"OUT"`)
	assert.Contains(t, string(data), `"last_as_of":"2024-03-07T00:00:00Z"`)

	got, err := UnmarshalState(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestUnmarshalState_Rejects(t *testing.T) {
	tests := []string{
		`{"regime":"MAYBE","day_counter":1}`,
		`{"regime":"IN","day_counter":-1}`,
		`{"regime":"OUT","day_counter":3,"out_day":5}`,
		`not json`,
	}
	for _, in := range tests {
		_, err := UnmarshalState([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestNewState(t *testing.T) {
	s := NewState(15)
	assert.Equal(t, RegimeIn, s.Regime)
	assert.Equal(t, 15, s.WaitDays)
	assert.Zero(t, s.DayCounter)
	assert.Equal(t, 1, s.Regime.Indicator())
	assert.Equal(t, 0, RegimeOut.Indicator())
}

func TestSkipReason(t *testing.T) {
	assert.Equal(t, "", SkipReason(nil))
	assert.Equal(t, "insufficient_history", SkipReason(fmt.Errorf("compute: %w", ErrInsufficientHistory)))
	assert.Equal(t, "degenerate_statistic", SkipReason(ErrDegenerateStatistic))
	assert.Equal(t, "upstream_unavailable", SkipReason(fmt.Errorf("x: %w", ErrUpstreamDataUnavailable)))
	assert.Equal(t, "no_new_session", SkipReason(ErrNoNewSession))
	assert.Equal(t, "internal", SkipReason(errors.New("boom")))
}

func TestUnmarshalState_WithoutLastAsOf(t *testing.T) {
	got, err := UnmarshalState([]byte(`{"regime":"IN","day_counter":3,"out_day":1,"wait_days":7}`))
	require.NoError(t, err)
	assert.True(t, got.LastAsOf.IsZero(), "states written before the field existed still load")
}
