package contracts

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the fixed part an asset plays in the strategy.
// An asset may hold several roles (XLI is a macro signal and a pair leg).
type Role int

const (
	RoleMarket Role = iota
	RoleGrowthHolding
	RoleDefensiveHoldingA
	RoleDefensiveHoldingB
	RoleMacroSignal
	RolePairLegA // safe leg
	RolePairLegB // risk leg
)

var roleNames = map[Role]string{
	RoleMarket:            "market",
	RoleGrowthHolding:     "growth_holding",
	RoleDefensiveHoldingA: "defensive_holding_a",
	RoleDefensiveHoldingB: "defensive_holding_b",
	RoleMacroSignal:       "macro_signal",
	RolePairLegA:          "pair_leg_a",
	RolePairLegB:          "pair_leg_b",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// IsHolding reports whether the role is ever traded
func (r Role) IsHolding() bool {
	return r == RoleGrowthHolding || r == RoleDefensiveHoldingA || r == RoleDefensiveHoldingB
}

// Asset is a ticker plus the roles it was configured with
type Asset struct {
	Symbol string `json:"symbol"`
	Roles  []Role `json:"roles"`
}

// Has reports whether the asset carries role r
func (a Asset) Has(r Role) bool {
	for _, role := range a.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// RoleTable maps symbol → asset. Built once at startup, never mutated afterwards.
// ⭐ SSOT: 자산-역할 매핑은 여기서만
type RoleTable struct {
	assets map[string]*Asset
}

// NewRoleTable creates an empty table
func NewRoleTable() *RoleTable {
	return &RoleTable{assets: make(map[string]*Asset)}
}

// Assign adds role r to symbol. Assigning the same role twice is a no-op.
func (t *RoleTable) Assign(symbol string, r Role) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	a, ok := t.assets[symbol]
	if !ok {
		a = &Asset{Symbol: symbol}
		t.assets[symbol] = a
	}
	if !a.Has(r) {
		a.Roles = append(a.Roles, r)
	}
}

// Get returns the asset for symbol
func (t *RoleTable) Get(symbol string) (Asset, bool) {
	a, ok := t.assets[symbol]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// WithRole returns the symbols holding role r, sorted
func (t *RoleTable) WithRole(r Role) []string {
	var out []string
	for sym, a := range t.assets {
		if a.Has(r) {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// Symbols returns all configured symbols, sorted
func (t *RoleTable) Symbols() []string {
	out := make([]string, 0, len(t.assets))
	for sym := range t.assets {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// SignalUniverse returns every symbol whose history the signal computer needs:
// market, macro signals and both pair legs.
func (t *RoleTable) SignalUniverse() []string {
	var out []string
	for sym, a := range t.assets {
		if a.Has(RoleMarket) || a.Has(RoleMacroSignal) || a.Has(RolePairLegA) || a.Has(RolePairLegB) {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}
