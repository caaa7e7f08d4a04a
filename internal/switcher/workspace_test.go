package switcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceID_StartsAtOne(t *testing.T) {
	assert.Equal(t, int32(1), WorkspaceID(0, 0, 0, 1))
	assert.Equal(t, int32(1), WorkspaceID(0, 0, 0, 2))
	assert.Equal(t, int32(2), WorkspaceID(0, 0, 1, 2))
}

func TestWorkspaceID_DistinctPerCellAndMonitor(t *testing.T) {
	const monitors = 2
	seen := make(map[int32][3]int)
	for col := 0; col <= 60; col++ {
		for row := 0; row <= 60; row++ {
			for m := 0; m < monitors; m++ {
				id := WorkspaceID(col, row, m, monitors)
				require.Positive(t, id)
				if prev, dup := seen[id]; dup {
					t.Fatalf("id %d for (%d,%d,%d) collides with %v", id, col, row, m, prev)
				}
				seen[id] = [3]int{col, row, m}
			}
		}
	}
}

func TestWorkspaceID_SaturatesInsteadOfOverflowing(t *testing.T) {
	id := WorkspaceID(100000, 100000, 0, 2)
	assert.Equal(t, int32(math.MaxInt32), id)
	// Still positive near the edge, never wraps negative.
	assert.Positive(t, WorkspaceID(50000, 50000, 1, 3))
}
