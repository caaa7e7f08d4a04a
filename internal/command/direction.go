package command

import (
	"fmt"
	"strings"
)

// Direction is one of the eight ways the grid can be navigated.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	UpLeft
	UpRight
	DownLeft
	DownRight
)

// String returns the canonical wire spelling of the direction.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	case UpLeft:
		return "up-left"
	case UpRight:
		return "up-right"
	case DownLeft:
		return "down-left"
	case DownRight:
		return "down-right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses a direction name. Parsing is case-insensitive and
// ignores separators, so "up-left", "up_left", "UpLeft" and "UPLEFT" all
// name the same direction.
func ParseDirection(s string) (Direction, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "upleft":
		return UpLeft, nil
	case "upright":
		return UpRight, nil
	case "downleft":
		return DownLeft, nil
	case "downright":
		return DownRight, nil
	default:
		return 0, fmt.Errorf("unknown direction: %q", s)
	}
}
