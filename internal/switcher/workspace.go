package switcher

import "math"

// WorkspaceID deterministically derives a workspace id from a grid cell
// and a monitor slot. No lookup table is kept: a Cantor pairing of
// (col, row) gives each cell a unique integer, each cell then reserves a
// contiguous block of ids, one per monitor, and ids start at 1.
//
// Ids are stable across restarts for the same grid layout and monitor
// ordering. Changing the monitor count or order changes the mapping;
// that is an accepted limitation (see DESIGN.md).
func WorkspaceID(col, row, monitorIndex, monitorCount int) int32 {
	c, r := int64(col), int64(row)
	idx, count := int64(monitorIndex), int64(monitorCount)

	s := c + r
	pair := s*(s+1)/2 + r

	id := saturatingAdd(saturatingMul(pair, count), idx+1)

	if id > math.MaxInt32 {
		return math.MaxInt32
	}
	if id < math.MinInt32 {
		return math.MinInt32
	}
	return int32(id)
}

func saturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	res := a * b
	if res/b != a {
		if (a > 0) == (b > 0) {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return res
}

func saturatingAdd(a, b int64) int64 {
	res := a + b
	if b > 0 && res < a {
		return math.MaxInt64
	}
	if b < 0 && res > a {
		return math.MinInt64
	}
	return res
}
