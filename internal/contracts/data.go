package contracts

import (
	"math"
	"sort"
	"time"
)

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceTable holds daily closes aligned on a shared, ascending date axis.
// Missing closes are stored as NaN until DropIncomplete removes the row.
// ⭐ SSOT: 가격 이력 입력 형식
type PriceTable struct {
	Dates   []time.Time          `json:"dates"`
	Symbols []string             `json:"symbols"`
	Closes  map[string][]float64 `json:"closes"`
}

// AlignSeries builds a table on the union of all dates found in series.
// Dates are truncated to the day; a symbol absent on a date gets NaN.
func AlignSeries(symbols []string, series map[string][]PricePoint) *PriceTable {
	dateSet := make(map[time.Time]struct{})
	bySymbol := make(map[string]map[time.Time]float64, len(symbols))

	for _, sym := range symbols {
		m := make(map[time.Time]float64, len(series[sym]))
		for _, p := range series[sym] {
			d := truncateDay(p.Date)
			m[d] = p.Close
			dateSet[d] = struct{}{}
		}
		bySymbol[sym] = m
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	t := &PriceTable{
		Dates:   dates,
		Symbols: append([]string(nil), symbols...),
		Closes:  make(map[string][]float64, len(symbols)),
	}
	for _, sym := range symbols {
		col := make([]float64, len(dates))
		for i, d := range dates {
			if v, ok := bySymbol[sym][d]; ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		t.Closes[sym] = col
	}
	return t
}

// Len returns the number of rows
func (t *PriceTable) Len() int {
	return len(t.Dates)
}

// Series returns the close column for symbol (nil if unknown)
func (t *PriceTable) Series(symbol string) []float64 {
	return t.Closes[symbol]
}

// LastDate returns the date of the newest row, zero if empty
func (t *PriceTable) LastDate() time.Time {
	if len(t.Dates) == 0 {
		return time.Time{}
	}
	return t.Dates[len(t.Dates)-1]
}

// DropIncomplete returns a copy keeping only rows where every symbol has a
// finite, positive close.
func (t *PriceTable) DropIncomplete() *PriceTable {
	out := &PriceTable{
		Symbols: append([]string(nil), t.Symbols...),
		Closes:  make(map[string][]float64, len(t.Symbols)),
	}

	for i, d := range t.Dates {
		complete := true
		for _, sym := range t.Symbols {
			col := t.Closes[sym]
			if i >= len(col) || !validClose(col[i]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		out.Dates = append(out.Dates, d)
		for _, sym := range t.Symbols {
			out.Closes[sym] = append(out.Closes[sym], t.Closes[sym][i])
		}
	}
	return out
}

// Tail returns the last n rows (or everything when n >= Len)
func (t *PriceTable) Tail(n int) *PriceTable {
	if n >= t.Len() {
		return t
	}
	start := t.Len() - n
	out := &PriceTable{
		Dates:   t.Dates[start:],
		Symbols: t.Symbols,
		Closes:  make(map[string][]float64, len(t.Symbols)),
	}
	for _, sym := range t.Symbols {
		out.Closes[sym] = t.Closes[sym][start:]
	}
	return out
}

// Through returns the rows dated on or before asOf
func (t *PriceTable) Through(asOf time.Time) *PriceTable {
	n := sort.Search(len(t.Dates), func(i int) bool { return t.Dates[i].After(asOf) })
	out := &PriceTable{
		Dates:   t.Dates[:n],
		Symbols: t.Symbols,
		Closes:  make(map[string][]float64, len(t.Symbols)),
	}
	for _, sym := range t.Symbols {
		out.Closes[sym] = t.Closes[sym][:n]
	}
	return out
}

// Select returns a view restricted to symbols
func (t *PriceTable) Select(symbols []string) *PriceTable {
	out := &PriceTable{
		Dates:   t.Dates,
		Symbols: append([]string(nil), symbols...),
		Closes:  make(map[string][]float64, len(symbols)),
	}
	for _, sym := range symbols {
		col, ok := t.Closes[sym]
		if !ok {
			col = make([]float64, len(t.Dates))
			for i := range col {
				col[i] = math.NaN()
			}
		}
		out.Closes[sym] = col
	}
	return out
}

func validClose(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
