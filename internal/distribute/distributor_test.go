package distribute

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
)

func pool(n int) []model.Account {
	accounts := make([]model.Account, n)
	for i := range accounts {
		accounts[i] = model.Account{Username: fmt.Sprintf("user%03d", i), Level: 30}
	}
	return accounts
}

// TestSplit_HalfAndHalf checks the floor-then-remainder behavior on an odd
// pool: the first destination gets floor(5*0.5)=2, the last gets the rest.
func TestSplit_HalfAndHalf(t *testing.T) {
	ranges := Split(5, []float64{0.5, 0.5})
	require.Len(t, ranges, 2)

	assert.Equal(t, Range{Start: 0, End: 2}, ranges[0])
	assert.Equal(t, Range{Start: 2, End: 5}, ranges[1])
}

// TestSplit_SingleDestinationTakesAll verifies that a lone destination,
// being last, receives the full pool regardless of its configured ratio.
func TestSplit_SingleDestinationTakesAll(t *testing.T) {
	ranges := Split(10, []float64{0.3})
	require.Len(t, ranges, 1)
	assert.Equal(t, Range{Start: 0, End: 10}, ranges[0])
}

// TestSplit_RatiosApplyToRemainingPool checks that each ratio applies to
// the pool as it stands after prior removals, not the original total.
func TestSplit_RatiosApplyToRemainingPool(t *testing.T) {
	ranges := Split(10, []float64{0.5, 0.5, 0.1})
	require.Len(t, ranges, 3)

	assert.Equal(t, 5, ranges[0].Len(), "floor(10*0.5)")
	assert.Equal(t, 2, ranges[1].Len(), "floor(5*0.5)")
	assert.Equal(t, 3, ranges[2].Len(), "last takes the rest")
}

// TestSplit_NoAccountsLostOrDuplicated is the conservation property: the
// ranges partition [0, total) exactly, for a spread of pool sizes and
// ratio lists.
func TestSplit_NoAccountsLostOrDuplicated(t *testing.T) {
	ratioLists := [][]float64{
		{1},
		{0, 1},
		{0.25, 0.25, 0.25, 0.25},
		{0.9, 0.9},
		{0.33, 0.66, 0.1},
		{0.1, 0.1, 0.1},
	}
	for _, ratios := range ratioLists {
		for _, total := range []int{0, 1, 2, 7, 100, 1001} {
			ranges := Split(total, ratios)
			require.Len(t, ranges, len(ratios))

			sum := 0
			prevEnd := 0
			for _, rg := range ranges {
				assert.Equal(t, prevEnd, rg.Start, "ranges must be contiguous (total=%d ratios=%v)", total, ratios)
				assert.GreaterOrEqual(t, rg.End, rg.Start)
				sum += rg.Len()
				prevEnd = rg.End
			}
			assert.Equal(t, total, sum, "total=%d ratios=%v", total, ratios)
			assert.Equal(t, total, ranges[len(ranges)-1].End)
		}
	}
}

func TestSplit_EmptyRatios(t *testing.T) {
	assert.Nil(t, Split(10, nil))
}

// TestAssign_PreservesPoolOrder verifies that assignment slices the pool
// front to back without reordering.
func TestAssign_PreservesPoolOrder(t *testing.T) {
	accounts := pool(5)
	assigned := Assign(accounts, []float64{0.5, 0.5})
	require.Len(t, assigned, 2)

	assert.Equal(t, accounts[:2], assigned[0])
	assert.Equal(t, accounts[2:], assigned[1])
}

// TestAssign_EmptyPool yields empty assignments for every destination.
func TestAssign_EmptyPool(t *testing.T) {
	assigned := Assign(nil, []float64{0.5, 0.5})
	require.Len(t, assigned, 2)
	assert.Empty(t, assigned[0])
	assert.Empty(t, assigned[1])
}
