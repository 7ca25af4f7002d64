package contracts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestAlignSeries_UnionOfDates(t *testing.T) {
	table := AlignSeries([]string{"SPY", "GLD"}, map[string][]PricePoint{
		"SPY": {{day(3), 103}, {day(2), 102}, {day(4), 104}},
		"GLD": {{day(2), 52}, {day(4), 54}},
	})

	require.Equal(t, 3, table.Len())
	assert.Equal(t, []time.Time{day(2), day(3), day(4)}, table.Dates)
	assert.Equal(t, []float64{102, 103, 104}, table.Series("SPY"))
	assert.True(t, math.IsNaN(table.Series("GLD")[1]))
	assert.Equal(t, day(4), table.LastDate())
}

func TestDropIncomplete(t *testing.T) {
	table := AlignSeries([]string{"SPY", "GLD"}, map[string][]PricePoint{
		"SPY": {{day(2), 102}, {day(3), 103}, {day(4), 104}, {day(5), 0}},
		"GLD": {{day(2), 52}, {day(4), 54}, {day(5), 55}},
	})

	clean := table.DropIncomplete()
	assert.Equal(t, []time.Time{day(2), day(4)}, clean.Dates)
	assert.Equal(t, []float64{52, 54}, clean.Series("GLD"))
	assert.Equal(t, 4, table.Len(), "source table untouched")
}

func TestTailThroughSelect(t *testing.T) {
	table := AlignSeries([]string{"SPY"}, map[string][]PricePoint{
		"SPY": {{day(1), 1}, {day(2), 2}, {day(3), 3}, {day(4), 4}},
	})

	assert.Equal(t, []float64{3, 4}, table.Tail(2).Series("SPY"))
	assert.Equal(t, 4, table.Tail(10).Len())
	assert.Equal(t, []float64{1, 2}, table.Through(day(2)).Series("SPY"))

	sel := table.Select([]string{"SPY", "QQQ"})
	assert.Len(t, sel.Series("QQQ"), 4)
	assert.Zero(t, sel.DropIncomplete().Len())
}
