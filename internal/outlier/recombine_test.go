package outlier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecombineKeepsRowsPresentInEveryInput(t *testing.T) {
	a := withIDs([]int{0, 1, 2, 4}, num("a", 10, 11, 12, 14))
	b := withIDs([]int{1, 2, 3, 4}, num("b", 21, 22, 23, 24))

	out, err := Recombine(nil, a, b)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, out.IDs)
	assert.Equal(t, []string{"a", "b"}, out.Names())
	assert.Equal(t, []float64{11, 12, 14}, out.Column("a").Nums)
	assert.Equal(t, []float64{21, 22, 24}, out.Column("b").Nums)
}

func TestRecombineAlignsUnorderedInputs(t *testing.T) {
	base := withIDs([]int{0, 1, 2, 3}, cat("student", "s0", "s1", "s2", "s3"))
	a := withIDs([]int{3, 1, 0}, num("a", 13, 11, 10))

	out, err := Recombine(base, a)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, out.IDs)
	assert.Equal(t, []string{"student", "a"}, out.Names(), "base columns come first")
	assert.Equal(t, []string{"s0", "s1", "s3"}, out.Column("student").Strs)
	assert.Equal(t, []float64{10, 11, 13}, out.Column("a").Nums)
}

func TestRecombineEmptyBaseKeepsIntersection(t *testing.T) {
	base := withIDs([]int{0, 1, 2, 3, 4})
	a := withIDs([]int{0, 2, 4}, num("a", 1, 2, 3))

	out, err := Recombine(base, a)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, out.IDs)
	assert.Equal(t, []string{"a"}, out.Names())
}

func TestRecombineDisjointInputsYieldNoRows(t *testing.T) {
	a := withIDs([]int{0, 1}, num("a", 1, 2))
	b := withIDs([]int{2, 3}, num("b", 3, 4))

	out, err := Recombine(nil, a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rows())
	assert.Equal(t, []string{"a", "b"}, out.Names())
}

func TestRecombineRejectsBadInputs(t *testing.T) {
	a := withIDs([]int{0, 1}, num("x", 1, 2))
	b := withIDs([]int{0, 1}, num("X", 3, 4))
	_, err := Recombine(nil, a, b)
	assert.ErrorIs(t, err, ErrConfiguration)

	noIDs := withIDs(nil, num("y", 1, 2))
	_, err = Recombine(nil, a, noIDs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no row identifier")

	dup := withIDs([]int{1, 1}, num("z", 1, 2))
	_, err = Recombine(nil, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeated")

	_, err = Recombine(nil)
	assert.Error(t, err)
}
