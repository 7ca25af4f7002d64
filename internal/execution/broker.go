package execution

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/wonny/inout/backend/internal/contracts"
)

// Fill is one executed target-weight change
type Fill struct {
	Symbol   string
	Weight   float64
	Price    float64
	Quantity float64 // signed change in quantity
}

// MemoryBroker is an in-memory account that fills target weights instantly at
// the last set price. Quantities are fractional; cash may dip below zero
// between the instructions of one rebalance.
// ⭐ 실제 운영에서는 HTTPBroker 사용
type MemoryBroker struct {
	mu       sync.Mutex
	cash     float64
	prices   map[string]float64
	holdings map[string]float64
	fills    []Fill
}

// NewMemoryBroker creates an account holding only cash
func NewMemoryBroker(cash float64) *MemoryBroker {
	return &MemoryBroker{
		cash:     cash,
		prices:   make(map[string]float64),
		holdings: make(map[string]float64),
	}
}

// SetPrices marks the account to the given closes
func (b *MemoryBroker) SetPrices(prices map[string]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sym, p := range prices {
		if p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0) {
			b.prices[sym] = p
		}
	}
}

// SetHolding seeds a position
func (b *MemoryBroker) SetHolding(symbol string, qty float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if qty == 0 {
		delete(b.holdings, symbol)
		return
	}
	b.holdings[symbol] = qty
}

// Holdings implements contracts.Executor
func (b *MemoryBroker) Holdings(_ context.Context) (contracts.HoldingSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(contracts.HoldingSnapshot, len(b.holdings))
	for sym, q := range b.holdings {
		out[sym] = q
	}
	return out, nil
}

// SetTargetWeight implements contracts.Executor
func (b *MemoryBroker) SetTargetWeight(_ context.Context, symbol string, weight float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	price, ok := b.prices[symbol]
	if !ok {
		return fmt.Errorf("no price for %s", symbol)
	}

	target := weight * b.equityLocked() / price
	delta := target - b.holdings[symbol]
	b.cash -= delta * price

	if target == 0 {
		delete(b.holdings, symbol)
	} else {
		b.holdings[symbol] = target
	}
	b.fills = append(b.fills, Fill{Symbol: symbol, Weight: weight, Price: price, Quantity: delta})
	return nil
}

// Equity returns cash plus marked positions
func (b *MemoryBroker) Equity() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.equityLocked()
}

func (b *MemoryBroker) equityLocked() float64 {
	total := b.cash
	for sym, q := range b.holdings {
		total += q * b.prices[sym]
	}
	return total
}

// Weights returns current position weights by market value
func (b *MemoryBroker) Weights() contracts.WeightMap {
	b.mu.Lock()
	defer b.mu.Unlock()

	eq := b.equityLocked()
	out := make(contracts.WeightMap, len(b.holdings))
	if eq == 0 {
		return out
	}
	for sym, q := range b.holdings {
		out[sym] = q * b.prices[sym] / eq
	}
	return out
}

// Fills returns every fill so far, oldest first
func (b *MemoryBroker) Fills() []Fill {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Fill(nil), b.fills...)
}

// Symbols returns the held symbols, sorted
func (b *MemoryBroker) Symbols() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.holdings))
	for sym := range b.holdings {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
