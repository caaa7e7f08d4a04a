// Package visualizer defines the events the switcher pushes to an
// optional overlay. The switcher only emits; the receiver (an external
// overlay process subscribed over IPC, or the debug log sink) owns the
// visibility state machine and all rendering.
package visualizer

import "github.com/yourusername/gridswitch/internal/wm"

// EventKind discriminates visualizer events.
type EventKind string

const (
	// ShowAuto shows (or updates) the overlay during navigation and
	// gesture commands.
	ShowAuto EventKind = "showAuto"
	// ToggleManual toggles the overlay in manual mode; the receiver
	// decides whether that means show or hide.
	ToggleManual EventKind = "toggleManual"
	// Hide requests that an automatically shown overlay go away.
	Hide EventKind = "hide"
)

// Cell is one grid coordinate.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// State is a snapshot of the grid a visualizer needs in order to render.
type State struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
	Col  int `json:"col"`
	Row  int `json:"row"`
	// OffsetX and OffsetY are the gesture offsets, normalized to
	// [-1, 1]. Zero when no gesture is active.
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	// TargetCell is the cell the gesture would commit to at the commit
	// threshold, or nil when the offset has not reached it.
	TargetCell *Cell `json:"targetCell,omitempty"`
}

// Payload carries everything a Show or Toggle event needs.
type Payload struct {
	State         State        `json:"state"`
	ActiveMonitor string       `json:"activeMonitor,omitempty"`
	Monitors      []wm.Monitor `json:"monitors,omitempty"`
}

// Event is one message to the visualizer. Hide carries no payload.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload *Payload  `json:"payload,omitempty"`
}

// TrySend delivers ev without ever blocking. A full or nil channel drops
// the event; command handling must not stall on a slow or absent
// overlay.
func TrySend(ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
