// Package gesture holds the pure math that reduces accumulated touchpad
// deltas to grid directions, plus the tuning configuration for it.
package gesture

import (
	"fmt"
	"math"

	"github.com/yourusername/gridswitch/internal/command"
)

// Config tunes gesture recognition.
//
// Sensitivity is the number of pixels of finger travel that correspond to
// one full grid cell (1.0 in normalized space); a higher value makes the
// gesture feel heavier. CommitThreshold is the normalized distance the
// gesture must reach before it switches on finger lift.
// CommitWhileDraggingThreshold, when set, commits as soon as the gesture
// reaches that fraction toward the next cell, without waiting for
// release. NaturalSwiping inverts the gesture sign so swiping right moves
// the perceived content left.
type Config struct {
	Sensitivity                  float64  `json:"sensitivity" yaml:"sensitivity"`
	CommitThreshold              float64  `json:"commit_threshold" yaml:"commit_threshold"`
	CommitWhileDraggingThreshold *float64 `json:"commit_while_dragging_threshold,omitempty" yaml:"commit_while_dragging_threshold,omitempty"`
	SwitchFingers                uint32   `json:"switch_fingers" yaml:"switch_fingers"`
	MoveFingers                  uint32   `json:"move_fingers" yaml:"move_fingers"`
	NaturalSwiping               bool     `json:"natural_swiping" yaml:"natural_swiping"`
}

// DefaultConfig returns the compiled-in gesture defaults.
func DefaultConfig() Config {
	return Config{
		Sensitivity:     200.0,
		CommitThreshold: 0.3,
		SwitchFingers:   3,
		MoveFingers:     4,
		NaturalSwiping:  true,
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Sensitivity <= 0 {
		return fmt.Errorf("gestures: sensitivity must be positive, got %v", c.Sensitivity)
	}
	if c.CommitThreshold < 0 || c.CommitThreshold > 1 {
		return fmt.Errorf("gestures: commit_threshold must be in [0, 1], got %v", c.CommitThreshold)
	}
	if t := c.CommitWhileDraggingThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("gestures: commit_while_dragging_threshold must be in [0, 1], got %v", *t)
	}
	if c.SwitchFingers < 1 {
		return fmt.Errorf("gestures: switch_fingers must be at least 1, got %d", c.SwitchFingers)
	}
	if c.MoveFingers < 1 {
		return fmt.Errorf("gestures: move_fingers must be at least 1, got %d", c.MoveFingers)
	}
	return nil
}

// ClampUnit clamps v to [-1, 1].
func ClampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// NormalizedOffset converts raw accumulated pixel deltas into
// grid-relative units: each axis is divided by sensitivity, clamped to
// [-1, 1], and negated when natural swiping is on. Pure and
// order-independent: only the accumulated sums matter.
func NormalizedOffset(dx, dy, sensitivity float64, natural bool) (nx, ny float64) {
	nx = ClampUnit(dx / sensitivity)
	ny = ClampUnit(dy / sensitivity)
	if natural {
		nx, ny = -nx, -ny
	}
	return nx, ny
}

// DominantDirection classifies a normalized (nx, ny) offset pair into
// one of the eight directions, or reports false if neither axis reached
// threshold.
//
// The threshold comparison is inclusive, and the diagonal test runs
// before the single-axis test: when both axes are at or over threshold
// the result is the diagonal matching the two signs, regardless of which
// axis is larger.
func DominantDirection(nx, ny, threshold float64) (command.Direction, bool) {
	ax, ay := math.Abs(nx), math.Abs(ny)
	overX := ax >= threshold
	overY := ay >= threshold

	switch {
	case overX && overY:
		switch {
		case nx > 0 && ny > 0:
			return command.DownRight, true
		case nx > 0:
			return command.UpRight, true
		case ny > 0:
			return command.DownLeft, true
		default:
			return command.UpLeft, true
		}
	case ax >= ay && overX:
		if nx > 0 {
			return command.Right, true
		}
		return command.Left, true
	case ay > ax && overY:
		if ny > 0 {
			return command.Down, true
		}
		return command.Up, true
	default:
		return 0, false
	}
}
