// Package grid tracks the bounds of the virtual workspace grid.
//
// The grid manages a dynamic cols × rows surface of workspaces. Rows and
// columns are created on demand when navigation crosses the current edge;
// the grid never shrinks. It is stateless with respect to position: the
// current (col, row) is tracked per monitor by the switcher. Mapping a
// cell to concrete per-monitor workspace ids is also handled by the
// switcher.
package grid

import "github.com/yourusername/gridswitch/internal/command"

// Grid is a dynamic grid of workspaces. It starts at 1×1 and grows as
// navigation moves beyond its bounds; it only tracks dimensions.
type Grid struct {
	cols int
	rows int
}

// New returns a 1×1 grid.
func New() *Grid {
	return &Grid{cols: 1, rows: 1}
}

// Dimensions returns the grid size as (cols, rows).
func (g *Grid) Dimensions() (cols, rows int) {
	return g.cols, g.rows
}

// GrowToContain expands the grid so that (col, row) is inside it. Each
// dimension grows by exactly the amount needed and never decreases;
// calling it again with the same cell is a no-op.
func (g *Grid) GrowToContain(col, row int) {
	if col >= g.cols {
		g.cols = col + 1
	}
	if row >= g.rows {
		g.rows = row + 1
	}
}

// AbsFrom computes the target position one step in dir from (col, row).
//
// Pure, no mutation. The navigation contract is asymmetric: Left and Up
// saturate at coordinate 0 (the step stays in place), while Right and
// Down increment unconditionally since the grid has no far edge. Diagonals
// apply the two single-axis rules independently, so UpLeft at row 0
// still moves left if col > 0.
func AbsFrom(dir command.Direction, col, row int) (int, int) {
	c, r := col, row
	switch dir {
	case command.Left:
		if c > 0 {
			c--
		}
	case command.Right:
		c++
	case command.Up:
		if r > 0 {
			r--
		}
	case command.Down:
		r++
	case command.UpLeft:
		if c > 0 {
			c--
		}
		if r > 0 {
			r--
		}
	case command.UpRight:
		c++
		if r > 0 {
			r--
		}
	case command.DownLeft:
		if c > 0 {
			c--
		}
		r++
	case command.DownRight:
		c++
		r++
	}
	return c, r
}
