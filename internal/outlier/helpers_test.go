package outlier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabclean/internal/table"
)

func num(name string, vals ...float64) *table.Column {
	return &table.Column{Name: name, Kind: table.KindNumeric, Nums: vals}
}

func cat(name string, vals ...string) *table.Column {
	return &table.Column{Name: name, Kind: table.KindCategorical, Strs: vals}
}

func newTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	tb := &table.Table{Name: "test", Columns: cols}
	require.NoError(t, tb.Validate())
	return tb
}

func withIDs(ids []int, cols ...*table.Column) *table.Table {
	return &table.Table{Name: "test", IDs: ids, Columns: cols}
}

func oneToNine(extra float64) []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, extra}
}
