// Package distribute partitions matured accounts across an ordered list of
// destinations by proportional ratios.
package distribute

import (
	"math"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
)

// Range is a half-open [Start, End) span of the matured pool assigned to
// the destination at the same position in the ratio list.
type Range struct {
	Start int
	End   int
}

// Len returns the number of accounts in the range.
func (r Range) Len() int { return r.End - r.Start }

// Split partitions total accounts across len(ratios) destinations.
//
// Each destination but the last takes floor(remaining * ratio) accounts
// from the front of the pool as it stands after prior removals; the last
// destination takes everything left regardless of its ratio. Ratios need
// not sum to 1: floor-rounding loss and any unassigned fraction both land
// on the last destination, so every account is assigned exactly once.
func Split(total int, ratios []float64) []Range {
	if len(ratios) == 0 {
		return nil
	}
	ranges := make([]Range, len(ratios))
	start := 0
	for i, ratio := range ratios {
		if i == len(ratios)-1 {
			ranges[i] = Range{Start: start, End: total}
			break
		}
		take := int(math.Floor(float64(total-start) * ratio))
		ranges[i] = Range{Start: start, End: start + take}
		start += take
	}
	return ranges
}

// Assign slices pool into per-destination account lists according to
// Split. The pool's order is preserved front to back; assignments may be
// empty and share the pool's backing array.
func Assign(pool []model.Account, ratios []float64) [][]model.Account {
	ranges := Split(len(pool), ratios)
	assigned := make([][]model.Account, len(ranges))
	for i, rg := range ranges {
		assigned[i] = pool[rg.Start:rg.End]
	}
	return assigned
}
