package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleTable_MultipleRoles(t *testing.T) {
	rt := NewRoleTable()
	rt.Assign("xli", RoleMacroSignal)
	rt.Assign("XLI", RolePairLegB)
	rt.Assign("XLI", RolePairLegB)
	rt.Assign("SPY", RoleMarket)
	rt.Assign("TQQQ", RoleGrowthHolding)

	xli, ok := rt.Get("XLI")
	assert.True(t, ok)
	assert.Equal(t, []Role{RoleMacroSignal, RolePairLegB}, xli.Roles)

	assert.Equal(t, []string{"SPY", "XLI"}, rt.SignalUniverse())
	assert.Equal(t, []string{"TQQQ"}, rt.WithRole(RoleGrowthHolding))
	assert.Equal(t, []string{"SPY", "TQQQ", "XLI"}, rt.Symbols())
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "pair_leg_b", RolePairLegB.String())
	assert.Equal(t, "role(42)", Role(42).String())
	assert.True(t, RoleDefensiveHoldingA.IsHolding())
	assert.False(t, RoleMarket.IsHolding())
}
