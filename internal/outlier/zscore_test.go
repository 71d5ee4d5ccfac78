package outlier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZScoreFilterMildThresholdKeepsEveryRow(t *testing.T) {
	tb := newTable(t, num("gpa", oneToNine(100)...)).WithRowIDs()

	out, bounds, err := ZScoreFilter(tb, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Rows(), "|z| of 100 is below 3, so t=5 must not remove it")
	require.Len(t, bounds, 1)
	assert.InDelta(t, 14.5, (bounds[0].Lower+bounds[0].Upper)/2, 1e-9)
	assert.InDelta(t, 5*math.Sqrt(818.25), bounds[0].Upper-14.5, 1e-9)
}

func TestZScoreFilterTightThresholdRemovesOnlyTheExtreme(t *testing.T) {
	tb := newTable(t, num("gpa", oneToNine(100)...)).WithRowIDs()

	out, _, err := ZScoreFilter(tb, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, out.IDs)
	assert.NotContains(t, out.Column("gpa").Nums, 100.0)
}

func TestZScoreFilterAnyColumnTriggers(t *testing.T) {
	tb := newTable(t,
		num("a", oneToNine(100)...),
		num("b", 100, 1, 2, 3, 4, 5, 6, 7, 8, 9),
	).WithRowIDs()

	out, _, err := ZScoreFilter(tb, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, out.IDs)
	require.Len(t, out.Columns, 2, "all group columns are retained")
}

func TestZScoreFilterZeroVarianceNeverRemoves(t *testing.T) {
	constant := make([]float64, 12)
	for i := range constant {
		constant[i] = 5.0
	}
	tb := newTable(t, num("steady", constant...)).WithRowIDs()
	for _, thr := range []float64{1e-9, 0.5, 1, 5, 100} {
		out, bounds, err := ZScoreFilter(tb, thr)
		require.NoError(t, err)
		assert.Equal(t, 12, out.Rows(), "threshold %v", thr)
		require.Len(t, bounds, 1)
		assert.True(t, bounds[0].Degenerate)
	}
}

func TestZScoreFilterKeepsMissingCells(t *testing.T) {
	tb := newTable(t, num("a", 1, 2, math.NaN(), 3, 2, 1, 2, 3, 2, 40)).WithRowIDs()
	out, _, err := ZScoreFilter(tb, 2)
	require.NoError(t, err)
	assert.Contains(t, out.IDs, 2)
	assert.NotContains(t, out.IDs, 9)
}

func TestZScoreFilterRejectsBadInput(t *testing.T) {
	tb := newTable(t, cat("major", "bio", "phys"))
	_, _, err := ZScoreFilter(tb, 5)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, _, err = ZScoreFilter(newTable(t, num("a", 1, 2)), 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}
