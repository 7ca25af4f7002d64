package pricefeed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
)

// CSVSource serves history from a wide CSV file:
//
//	date,SPY,XLI,...
//	2024-01-02,472.65,113.10,...
//
// Empty cells are missing closes. SetAsOf moves the replay cursor so History
// never sees rows after the simulated day.
type CSVSource struct {
	table *contracts.PriceTable

	mu   sync.RWMutex
	asOf time.Time
}

// OpenCSV loads path into memory
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a wide close table
func ReadCSV(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(header[0], "date") {
		return nil, fmt.Errorf("csv header must start with date, got %v", header)
	}

	symbols := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		symbols = append(symbols, strings.ToUpper(strings.TrimSpace(h)))
	}

	t := &contracts.PriceTable{
		Symbols: symbols,
		Closes:  make(map[string][]float64, len(symbols)),
	}

	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		d, err := time.Parse(time.DateOnly, rec[0])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad date %q", line, rec[0])
		}
		if n := len(t.Dates); n > 0 && !d.After(t.Dates[n-1]) {
			return nil, fmt.Errorf("csv line %d: dates must be strictly ascending", line)
		}
		t.Dates = append(t.Dates, d)

		for i, sym := range symbols {
			v := math.NaN()
			if cell := strings.TrimSpace(rec[i+1]); cell != "" {
				v, err = strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("csv line %d: %s: %w", line, sym, err)
				}
			}
			t.Closes[sym] = append(t.Closes[sym], v)
		}
	}

	return &CSVSource{table: t}, nil
}

// Table returns the full loaded table
func (s *CSVSource) Table() *contracts.PriceTable {
	return s.table
}

// SetAsOf limits History to rows on or before asOf; zero means no limit
func (s *CSVSource) SetAsOf(asOf time.Time) {
	s.mu.Lock()
	s.asOf = asOf
	s.mu.Unlock()
}

// History implements contracts.PriceSource
func (s *CSVSource) History(_ context.Context, symbols []string, days int) (*contracts.PriceTable, error) {
	s.mu.RLock()
	asOf := s.asOf
	s.mu.RUnlock()

	t := s.table
	if !asOf.IsZero() {
		t = t.Through(asOf)
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("%w: no csv rows on or before %s", contracts.ErrUpstreamDataUnavailable, asOf.Format(time.DateOnly))
	}
	return t.Select(symbols).Tail(days), nil
}
