// Package wm defines the window-manager abstraction the switcher talks
// to, plus the monitor geometry helpers built on it. Concrete backends
// (Hyprland IPC, test doubles) implement WindowManager; the switcher
// never depends on a specific compositor.
package wm

// Monitor describes one physical display known to the window manager.
type Monitor struct {
	// Name is the unique identifier the window manager uses, e.g. "DP-1".
	Name string `json:"name"`
	// Width and Height are the resolution in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
	// X and Y are the position on the virtual desktop in pixels.
	X int `json:"x"`
	Y int `json:"y"`
}

// Window is minimal information about the currently focused window.
type Window struct {
	// Address is the window manager's window id.
	Address string `json:"address"`
	Title   string `json:"title"`
	// Monitor is the name of the monitor the window is on.
	Monitor string `json:"monitor"`
}

// WindowManager abstracts workspace switching and window movement.
//
// Every method may fail; callers wrap failures into their own error
// kinds. Implementations are synchronous request/response.
type WindowManager interface {
	// Monitors returns the monitors the window manager knows about, in
	// the backend's stable listing order.
	Monitors() ([]Monitor, error)

	// SwitchWorkspace switches the named monitor to the given workspace
	// id. The id is allocated by the switcher and is an opaque integer
	// to the backend.
	SwitchWorkspace(monitor string, workspaceID int32) error

	// MoveWindowToWorkspace moves the focused window to the workspace
	// and switches the active monitor to it so the user follows.
	MoveWindowToWorkspace(workspaceID int32) error

	// MoveWindowToMonitor moves the focused window to the named monitor,
	// onto whatever workspace that monitor currently shows.
	MoveWindowToMonitor(monitor string) error

	// ActiveMonitor returns the name of the focused monitor, or "" when
	// none is focused.
	ActiveMonitor() (string, error)

	// ActiveWindow returns the focused window, or nil when no window is
	// focused.
	ActiveWindow() (*Window, error)
}

func (m Monitor) centerX() float64 { return float64(m.X) + float64(m.Width)/2 }
func (m Monitor) centerY() float64 { return float64(m.Y) + float64(m.Height)/2 }
