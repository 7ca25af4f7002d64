package contracts

import (
	"math"
	"time"
)

// ReturnSample is the signal computer's output: the 8 oriented signal columns
// ("high = bullish") plus the raw per-asset returns the wait-day rule reads.
// Values are NaN on rows without a full smoothing history.
type ReturnSample struct {
	Dates   []time.Time          `json:"dates"`
	Columns []string             `json:"columns"`
	Values  map[string][]float64 `json:"values"`
	Raw     map[string][]float64 `json:"raw"`
}

// Len returns the number of rows
func (s *ReturnSample) Len() int {
	return len(s.Dates)
}

// Column returns the oriented series for a signal
func (s *ReturnSample) Column(name string) []float64 {
	return s.Values[name]
}

// Last returns the newest value of a signal column (NaN if absent)
func (s *ReturnSample) Last(name string) float64 {
	return at(s.Values[name], 1)
}

// RawLast returns the newest raw return of an asset
func (s *ReturnSample) RawLast(symbol string) float64 {
	return at(s.Raw[symbol], 1)
}

// RawPrev returns the raw return of an asset one row before the newest
func (s *ReturnSample) RawPrev(symbol string) float64 {
	return at(s.Raw[symbol], 2)
}

// AsOf returns the date of the newest row
func (s *ReturnSample) AsOf() time.Time {
	if len(s.Dates) == 0 {
		return time.Time{}
	}
	return s.Dates[len(s.Dates)-1]
}

func at(col []float64, fromEnd int) float64 {
	if len(col) < fromEnd {
		return math.NaN()
	}
	return col[len(col)-fromEnd]
}
