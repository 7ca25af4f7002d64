// Package testkit builds synthetic price tables for package tests.
package testkit

import (
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
)

// TradingDays returns n consecutive weekdays starting Monday 2023-01-02
func TradingDays(n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for len(out) < n {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

// Table builds an aligned table from equal-length close columns
func Table(columns map[string][]float64) *contracts.PriceTable {
	n := 0
	symbols := make([]string, 0, len(columns))
	for sym, col := range columns {
		symbols = append(symbols, sym)
		if len(col) > n {
			n = len(col)
		}
	}

	t := &contracts.PriceTable{
		Dates:   TradingDays(n),
		Symbols: symbols,
		Closes:  make(map[string][]float64, len(columns)),
	}
	for sym, col := range columns {
		t.Closes[sym] = append([]float64(nil), col...)
	}
	return t
}

// Flat returns a constant close series of length n
func Flat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

// Linear returns start, start+step, ... of length n
func Linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// FlatUniverse returns a flat table for every symbol
func FlatUniverse(symbols []string, n int, price float64) *contracts.PriceTable {
	cols := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		cols[sym] = Flat(n, price)
	}
	return Table(cols)
}
