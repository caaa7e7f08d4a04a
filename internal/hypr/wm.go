// Package hypr talks to Hyprland directly over its IPC sockets: the
// command socket for queries and dispatches, and the event socket for
// the touchpad gesture stream. No child processes are spawned.
package hypr

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/gridswitch/internal/wm"
)

// WM implements wm.WindowManager against Hyprland. Each call opens a
// short-lived connection to the command socket, matching hyprctl's
// behavior.
type WM struct{}

func NewWM() *WM {
	return &WM{}
}

// socketDir resolves $XDG_RUNTIME_DIR/hypr/$HYPRLAND_INSTANCE_SIGNATURE,
// where Hyprland 0.40+ keeps its sockets.
func socketDir() (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set (not running under Hyprland?)")
	}
	return filepath.Join(runtimeDir, "hypr", sig), nil
}

// CommandSocketPath returns the .socket.sock path for requests.
func CommandSocketPath() (string, error) {
	dir, err := socketDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".socket.sock"), nil
}

// EventSocketPath returns the .socket2.sock path for the event stream.
func EventSocketPath() (string, error) {
	dir, err := socketDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".socket2.sock"), nil
}

// ipcRequest sends one raw command and returns the full response.
func ipcRequest(command string) (string, error) {
	path, err := CommandSocketPath()
	if err != nil {
		return "", err
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", path, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(command)); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	resp, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	return string(resp), nil
}

// ipcJSON sends a j/ data query and decodes the JSON reply into v.
func ipcJSON(dataCommand string, v interface{}) error {
	resp, err := ipcRequest("j/" + dataCommand)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(resp), v); err != nil {
		return fmt.Errorf("parse %s reply: %w", dataCommand, err)
	}
	return nil
}

// ipcDispatch sends a dispatch and checks for Hyprland's "ok".
func ipcDispatch(args string) error {
	resp, err := ipcRequest("/dispatch " + args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(resp) != "ok" {
		return fmt.Errorf("dispatch %s: %s", args, strings.TrimSpace(resp))
	}
	return nil
}

// monitorJSON is the subset of j/monitors output we care about.
type monitorJSON struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Focused bool   `json:"focused"`
}

// activeWindowJSON is the subset of j/activewindow output we care about.
type activeWindowJSON struct {
	Address string `json:"address"`
	Title   string `json:"title"`
	Monitor int64  `json:"monitor"`
}

func fetchMonitors() ([]monitorJSON, error) {
	var monitors []monitorJSON
	if err := ipcJSON("monitors", &monitors); err != nil {
		return nil, err
	}
	return monitors, nil
}

func (h *WM) Monitors() ([]wm.Monitor, error) {
	raw, err := fetchMonitors()
	if err != nil {
		return nil, err
	}
	monitors := make([]wm.Monitor, len(raw))
	for i, m := range raw {
		monitors[i] = wm.Monitor{Name: m.Name, Width: m.Width, Height: m.Height, X: m.X, Y: m.Y}
	}
	return monitors, nil
}

// SwitchWorkspace focuses the monitor first: Hyprland's workspace
// dispatch is global and acts on whichever monitor is focused.
func (h *WM) SwitchWorkspace(monitor string, workspaceID int32) error {
	if err := ipcDispatch(fmt.Sprintf("focusmonitor %s", monitor)); err != nil {
		return err
	}
	return ipcDispatch(fmt.Sprintf("workspace %d", workspaceID))
}

func (h *WM) MoveWindowToWorkspace(workspaceID int32) error {
	return ipcDispatch(fmt.Sprintf("movetoworkspace %d", workspaceID))
}

func (h *WM) MoveWindowToMonitor(monitor string) error {
	return ipcDispatch(fmt.Sprintf("movewindow mon:%s", monitor))
}

func (h *WM) ActiveMonitor() (string, error) {
	raw, err := fetchMonitors()
	if err != nil {
		return "", err
	}
	for _, m := range raw {
		if m.Focused {
			return m.Name, nil
		}
	}
	return "", nil
}

func (h *WM) ActiveWindow() (*wm.Window, error) {
	resp, err := ipcRequest("j/activewindow")
	if err != nil {
		return nil, err
	}
	// Hyprland answers with an empty object when nothing is focused.
	if strings.TrimSpace(resp) == "{}" {
		return nil, nil
	}
	var w activeWindowJSON
	if err := json.Unmarshal([]byte(resp), &w); err != nil {
		return nil, fmt.Errorf("parse activewindow reply: %w", err)
	}

	raw, err := fetchMonitors()
	if err != nil {
		return nil, err
	}
	for _, m := range raw {
		if m.ID == w.Monitor {
			return &wm.Window{Address: w.Address, Title: w.Title, Monitor: m.Name}, nil
		}
	}
	return nil, fmt.Errorf("active window on unknown monitor id %d", w.Monitor)
}
