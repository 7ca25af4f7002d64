package signals

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/internal/testkit"
	"github.com/wonny/inout/backend/pkg/logger"
)

func newComputer() (*Computer, *strategyconfig.Config) {
	cfg := strategyconfig.Default()
	return NewComputer(cfg, logger.Nop()), cfg
}

func TestCompute_FlatPricesGiveZeroReturns(t *testing.T) {
	c, cfg := newComputer()
	table := testkit.FlatUniverse(cfg.RoleTable().SignalUniverse(), 252, 50)

	sample, err := c.Compute(table)
	require.NoError(t, err)

	assert.Equal(t, cfg.ColumnNames(), sample.Columns)
	assert.Equal(t, 252, sample.Len())
	for _, name := range sample.Columns {
		col := sample.Column(name)
		assert.True(t, math.IsNaN(col[64]), "%s row 64 has no full lag history", name)
		assert.InDelta(t, 0, col[65], 1e-12, name)
		assert.InDelta(t, 0, sample.Last(name), 1e-12, name)
	}
}

func TestCompute_BaselineIsMeanOfLags55To65(t *testing.T) {
	c, cfg := newComputer()
	cols := map[string][]float64{}
	for _, sym := range cfg.RoleTable().SignalUniverse() {
		cols[sym] = testkit.Flat(100, 10)
	}
	// p[i] = 100 + i → baseline(i) = 100 + i - 60
	cols["XLI"] = testkit.Linear(100, 100, 1)
	cols["UUP"] = testkit.Linear(100, 100, 1)

	sample, err := c.Compute(testkit.Table(cols))
	require.NoError(t, err)

	i := 99.0
	want := (100+i)/(100+i-60) - 1
	assert.InDelta(t, want, sample.Last("XLI"), 1e-12)
	assert.InDelta(t, -want, sample.Last("UUP"), 1e-12, "UUP is sign-inverted")
	assert.InDelta(t, want, sample.RawLast("UUP"), 1e-12, "raw return is not inverted")

	// U_I = -(r_XLU - r_XLI) = r_XLI when XLU is flat
	assert.InDelta(t, want, sample.Last("U_I"), 1e-12)
}

func TestCompute_PairDifferentialSign(t *testing.T) {
	c, cfg := newComputer()
	cols := map[string][]float64{}
	for _, sym := range cfg.RoleTable().SignalUniverse() {
		cols[sym] = testkit.Flat(80, 10)
	}
	// gold jumps 10% on the last day → G_S must be bearish (negative)
	cols["GLD"][79] = 11
	// AUD jumps 10% → C_A bullish (positive)
	cols["FXA"][79] = 11

	sample, err := c.Compute(testkit.Table(cols))
	require.NoError(t, err)

	assert.InDelta(t, -0.1, sample.Last("G_S"), 1e-12)
	assert.InDelta(t, 0.1, sample.Last("C_A"), 1e-12)
	assert.InDelta(t, 0.1, sample.RawLast("GLD"), 1e-12)
	assert.InDelta(t, 0, sample.RawPrev("GLD"), 1e-12)
}

func TestCompute_DropsIncompleteRowsBeforeCounting(t *testing.T) {
	c, cfg := newComputer()
	table := testkit.FlatUniverse(cfg.RoleTable().SignalUniverse(), 69, 10)
	table.Closes["GLD"][3] = math.NaN()
	table.Closes["SLV"][10] = math.NaN()
	table.Closes["SPY"][20] = 0

	_, err := c.Compute(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrInsufficientHistory))
	assert.Contains(t, err.Error(), "66 complete rows, need 67")
}

func TestCompute_MissingSymbol(t *testing.T) {
	c, _ := newComputer()
	table := testkit.FlatUniverse([]string{"SPY", "XLI"}, 100, 10)

	_, err := c.Compute(table)
	assert.True(t, errors.Is(err, contracts.ErrInsufficientHistory))
}
