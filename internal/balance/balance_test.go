package balance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanDecisionTable(t *testing.T) {
	const chunk = 8

	tests := []struct {
		name   string
		lens   []int
		i      int
		action Action
		lo     int
	}{
		{name: "empty container", lens: nil, i: 0, action: ActionNone},
		{name: "single within bounds", lens: []int{16}, i: 0, action: ActionNone},
		{name: "single oversized", lens: []int{17}, i: 0, action: ActionSplitSingle},

		{name: "front pair undersized", lens: []int{3, 4, 12}, i: 0, action: ActionMergePair, lo: 0},
		{name: "front pair oversized", lens: []int{17, 16, 12}, i: 0, action: ActionSplitPairThree, lo: 0},
		{name: "front pair balanced", lens: []int{8, 8, 12}, i: 0, action: ActionNone, lo: 0},
		{name: "front pair lopsided", lens: []int{16, 6, 12}, i: 0, action: ActionRedistributePair, lo: 0},
		{name: "front pair combined too small", lens: []int{5, 6, 12}, i: 0, action: ActionRedistributePair, lo: 0},

		{name: "back pair undersized", lens: []int{12, 4, 3}, i: 2, action: ActionMergePair, lo: 1},
		{name: "back pair oversized", lens: []int{12, 17, 16}, i: 2, action: ActionSplitPairThree, lo: 1},
		{name: "back pair balanced", lens: []int{12, 9, 8}, i: 2, action: ActionNone, lo: 1},
		{name: "back pair lopsided", lens: []int{12, 3, 16}, i: 2, action: ActionRedistributePair, lo: 1},

		{name: "interior trio undersized", lens: []int{12, 4, 3, 4, 12}, i: 2, action: ActionMergeTrioTwo, lo: 1},
		{name: "interior trio oversized", lens: []int{12, 16, 17, 16, 12}, i: 2, action: ActionSplitTrioFour, lo: 1},
		{name: "interior trio balanced", lens: []int{12, 9, 9, 9, 12}, i: 2, action: ActionNone, lo: 1},
		{name: "interior trio lopsided", lens: []int{12, 16, 4, 8, 12}, i: 2, action: ActionRedistributeTrio, lo: 1},
		{name: "interior emptied segment", lens: []int{12, 16, 0, 16, 12}, i: 2, action: ActionRedistributeTrio, lo: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Plan(tc.lens, tc.i, chunk)
			require.Equal(t, tc.action, d.Action)
			if tc.action != ActionNone || len(tc.lens) > 1 {
				require.Equal(t, tc.lo, d.Lo)
			}
		})
	}
}

// The no-op window of the boundary rule requires both segments inside
// (chunk/2, 2*chunk) and the combined size inside (3*chunk/2, 3*chunk).
func TestPlanBoundaryBoundsAreExclusive(t *testing.T) {
	const chunk = 8

	// Sum at exactly 3*chunk falls out of the no-op window.
	d := Plan([]int{12, 12, 20}, 0, chunk)
	require.Equal(t, ActionRedistributePair, d.Action)

	// One segment at exactly chunk/2 falls out of the no-op window.
	d = Plan([]int{4, 10, 20}, 0, chunk)
	require.Equal(t, ActionRedistributePair, d.Action)
}
