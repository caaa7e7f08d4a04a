// Package command defines the vocabulary shared by every part of
// gridswitch: the eight-way Direction, the closed set of Commands the
// switcher can perform, and the wire decoding that turns IPC requests
// into Command values.
package command

import "fmt"

// Command is one action the grid switcher can perform.
//
// Commands are immutable value objects produced by command sources (the
// Unix-socket listener, the Hyprland gesture source, tests) and consumed
// exactly once by the switcher. The set is closed: only the types in this
// package implement the interface.
type Command interface {
	isCommand()
	fmt.Stringer
}

// SwitchTo switches all monitors to the workspace at absolute grid
// position (X, Y), growing the grid if needed.
type SwitchTo struct {
	X int
	Y int
}

// Go moves one cell in the given direction, creating the column/row if
// navigation crosses the current edge.
type Go struct {
	Dir Direction
}

// MoveWindowAndGo moves the focused window one cell in the given
// direction and follows it.
type MoveWindowAndGo struct {
	Dir Direction
}

// MoveWindowToMonitor moves the focused window to the nearest monitor in
// the given direction relative to the monitor it is currently on. If no
// monitor exists in that direction the command is a no-op.
type MoveWindowToMonitor struct {
	Dir Direction
}

// MoveWindowToMonitorIndex moves the focused window to the monitor at
// the given index (0-based, in the order reported by the window
// manager). An out-of-range index is an error.
type MoveWindowToMonitorIndex struct {
	Index int
}

// PrepareMove is a gesture-driven partial move. DX and DY are in
// [-1, 1] and represent how far along each axis the gesture has traveled
// relative to one grid cell. Only the visualization tracks this; the
// grid does not move.
type PrepareMove struct {
	DX float64
	DY float64
}

// CancelMove cancels an in-progress gesture, snapping the visualization
// back to the current cell.
type CancelMove struct{}

// CommitMove commits a gesture that crossed the threshold. Equivalent to
// Go but explicitly marks the end of a gesture sequence.
type CommitMove struct {
	Dir Direction
}

// ToggleVisualizer toggles the overlay in manual mode.
type ToggleVisualizer struct{}

// SwipeBegin reports that a multi-finger touchpad swipe has started.
type SwipeBegin struct {
	Fingers uint32
}

// SwipeUpdate carries incremental finger movement during a swipe. DX and
// DY are raw pixel deltas from the touchpad, not normalized; the
// switcher applies sensitivity scaling internally.
type SwipeUpdate struct {
	Fingers uint32
	DX      float64
	DY      float64
}

// SwipeEnd reports that the fingers lifted, ending the swipe.
type SwipeEnd struct{}

func (SwitchTo) isCommand()                 {}
func (Go) isCommand()                       {}
func (MoveWindowAndGo) isCommand()          {}
func (MoveWindowToMonitor) isCommand()      {}
func (MoveWindowToMonitorIndex) isCommand() {}
func (PrepareMove) isCommand()              {}
func (CancelMove) isCommand()               {}
func (CommitMove) isCommand()               {}
func (ToggleVisualizer) isCommand()         {}
func (SwipeBegin) isCommand()               {}
func (SwipeUpdate) isCommand()              {}
func (SwipeEnd) isCommand()                 {}

func (c SwitchTo) String() string        { return fmt.Sprintf("switchTo(%d, %d)", c.X, c.Y) }
func (c Go) String() string              { return "go " + c.Dir.String() }
func (c MoveWindowAndGo) String() string { return "moveWindowAndGo " + c.Dir.String() }
func (c MoveWindowToMonitor) String() string {
	return "moveWindowToMonitor " + c.Dir.String()
}
func (c MoveWindowToMonitorIndex) String() string {
	return fmt.Sprintf("moveWindowToMonitorIndex(%d)", c.Index)
}
func (c PrepareMove) String() string { return fmt.Sprintf("prepareMove(%.2f, %.2f)", c.DX, c.DY) }
func (CancelMove) String() string    { return "cancelMove" }
func (c CommitMove) String() string  { return "commitMove " + c.Dir.String() }
func (ToggleVisualizer) String() string { return "toggleVisualizer" }
func (c SwipeBegin) String() string     { return fmt.Sprintf("swipeBegin(%d)", c.Fingers) }
func (c SwipeUpdate) String() string {
	return fmt.Sprintf("swipeUpdate(%d, %.1f, %.1f)", c.Fingers, c.DX, c.DY)
}
func (SwipeEnd) String() string { return "swipeEnd" }
