package wm

import "github.com/yourusername/gridswitch/internal/command"

// FindMonitorInDirection returns the monitor nearest to the current one
// whose center lies in the given direction, or nil if there is none (or
// the current monitor is unknown).
//
// A candidate qualifies for a cardinal direction when its center is
// strictly inside that half-plane relative to the current monitor's
// center. Diagonal directions require strictly both half-planes. Among
// qualifying candidates the one with the smallest Euclidean
// center-to-center distance wins.
func FindMonitorInDirection(monitors []Monitor, current string, dir command.Direction) *Monitor {
	var cur *Monitor
	for i := range monitors {
		if monitors[i].Name == current {
			cur = &monitors[i]
			break
		}
	}
	if cur == nil {
		return nil
	}
	cx, cy := cur.centerX(), cur.centerY()

	var best *Monitor
	var bestDist float64
	for i := range monitors {
		m := &monitors[i]
		if m.Name == current {
			continue
		}
		if !inDirection(m.centerX()-cx, m.centerY()-cy, dir) {
			continue
		}
		dx := m.centerX() - cx
		dy := m.centerY() - cy
		dist := dx*dx + dy*dy
		if best == nil || dist < bestDist {
			best = m
			bestDist = dist
		}
	}
	return best
}

// inDirection reports whether the center offset (dx, dy) lies in dir's
// half-plane(s). dy grows downward, matching screen coordinates.
func inDirection(dx, dy float64, dir command.Direction) bool {
	switch dir {
	case command.Left:
		return dx < 0
	case command.Right:
		return dx > 0
	case command.Up:
		return dy < 0
	case command.Down:
		return dy > 0
	case command.UpLeft:
		return dx < 0 && dy < 0
	case command.UpRight:
		return dx > 0 && dy < 0
	case command.DownLeft:
		return dx < 0 && dy > 0
	case command.DownRight:
		return dx > 0 && dy > 0
	default:
		return false
	}
}
