package switcher

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridswitch/internal/command"
	"github.com/yourusername/gridswitch/internal/gesture"
	"github.com/yourusername/gridswitch/internal/visualizer"
	"github.com/yourusername/gridswitch/internal/wm"
)

// recorderWM records every call made to it. switchWorkspace focuses the
// target monitor, modelling Hyprland's focus-follows-switch behavior.
type recorderWM struct {
	switches     []switchCall
	moves        []int32
	monitorMoves []string
	focused      string
	window       *wm.Window
	noWindow     bool
	failSwitch   bool
}

type switchCall struct {
	monitor string
	ws      int32
}

func (r *recorderWM) Monitors() ([]wm.Monitor, error) {
	return []wm.Monitor{
		{Name: "DP-1", Width: 2560, Height: 1440, X: 0, Y: 0},
		{Name: "HDMI-A-1", Width: 1920, Height: 1080, X: 2560, Y: 0},
	}, nil
}

func (r *recorderWM) SwitchWorkspace(monitor string, ws int32) error {
	if r.failSwitch {
		return fmt.Errorf("compositor said no")
	}
	r.switches = append(r.switches, switchCall{monitor, ws})
	r.focused = monitor
	return nil
}

func (r *recorderWM) MoveWindowToWorkspace(ws int32) error {
	r.moves = append(r.moves, ws)
	return nil
}

func (r *recorderWM) MoveWindowToMonitor(monitor string) error {
	r.monitorMoves = append(r.monitorMoves, monitor)
	return nil
}

func (r *recorderWM) ActiveMonitor() (string, error) {
	if r.focused == "" {
		return "DP-1", nil
	}
	return r.focused, nil
}

func (r *recorderWM) ActiveWindow() (*wm.Window, error) {
	if r.noWindow {
		return nil, nil
	}
	if r.window != nil {
		return r.window, nil
	}
	monitor := r.focused
	if monitor == "" {
		monitor = "DP-1"
	}
	return &wm.Window{Address: "0xbeef", Title: "test", Monitor: monitor}, nil
}

func makeSwitcher() (*Switcher, *recorderWM) {
	backend := &recorderWM{}
	return New(backend, []string{"DP-1", "HDMI-A-1"}), backend
}

func TestGoRight_SwitchesBothMonitorsWithDistinctIDs(t *testing.T) {
	s, backend := makeSwitcher()
	require.NoError(t, s.Handle(command.Go{Dir: command.Right}))

	col, row := s.Position()
	assert.Equal(t, 1, col)
	assert.Equal(t, 0, row)
	cols, rows := s.Dimensions()
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1, rows)

	require.Len(t, backend.switches, 2)
	assert.NotEqual(t, backend.switches[0].ws, backend.switches[1].ws)
}

func TestGo_ActiveMonitorSwitchedLast(t *testing.T) {
	s, backend := makeSwitcher()
	backend.focused = "HDMI-A-1"
	require.NoError(t, s.Handle(command.Go{Dir: command.Right}))

	require.Len(t, backend.switches, 2)
	assert.Equal(t, "HDMI-A-1", backend.switches[1].monitor,
		"the focused monitor must be switched last so focus stays put")
	assert.Equal(t, "HDMI-A-1", backend.focused)
}

func TestSwitchTo_Absolute(t *testing.T) {
	s, _ := makeSwitcher()
	require.NoError(t, s.Handle(command.SwitchTo{X: 2, Y: 1}))
	col, row := s.Position()
	assert.Equal(t, 2, col)
	assert.Equal(t, 1, row)
	cols, rows := s.Dimensions()
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, rows)
}

func TestSwitchTo_AlreadyThereSkipsBackend(t *testing.T) {
	s, backend := makeSwitcher()
	require.NoError(t, s.Handle(command.SwitchTo{X: 0, Y: 0}))
	assert.Empty(t, backend.switches)
}

func TestSwitchTo_BackendFailureKeepsLocalState(t *testing.T) {
	s, backend := makeSwitcher()
	backend.failSwitch = true
	// Optimistic policy: the failure is logged, the grid still moves.
	require.NoError(t, s.Handle(command.SwitchTo{X: 1, Y: 0}))
	col, row := s.Position()
	assert.Equal(t, 1, col)
	assert.Equal(t, 0, row)
}

func TestGo_BackendFailureSurfacedAsWindowManagerError(t *testing.T) {
	s, backend := makeSwitcher()
	backend.failSwitch = true
	err := s.Handle(command.Go{Dir: command.Right})
	require.Error(t, err)
	var wmErr *WindowManagerError
	assert.True(t, errors.As(err, &wmErr))
	// Local state already advanced.
	col, _ := s.Position()
	assert.Equal(t, 1, col)
}

func TestCommitMove_AdvancesLikeGo(t *testing.T) {
	s, _ := makeSwitcher()
	require.NoError(t, s.Handle(command.CommitMove{Dir: command.Down}))
	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 1, row)
}

func TestFullNavigationSequence(t *testing.T) {
	s, _ := makeSwitcher()
	for _, dir := range []command.Direction{command.Right, command.Down, command.Left, command.Up} {
		require.NoError(t, s.Handle(command.Go{Dir: dir}))
	}
	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
	cols, rows := s.Dimensions()
	assert.Equal(t, 2, cols)
	assert.Equal(t, 2, rows)
}

func TestDiagonalNavigation(t *testing.T) {
	s, _ := makeSwitcher()
	require.NoError(t, s.Handle(command.Go{Dir: command.DownRight}))
	col, row := s.Position()
	assert.Equal(t, 1, col)
	assert.Equal(t, 1, row)
	cols, rows := s.Dimensions()
	assert.Equal(t, 2, cols)
	assert.Equal(t, 2, rows)

	// UpLeft at the origin after moving back clamps both axes.
	require.NoError(t, s.Handle(command.Go{Dir: command.UpLeft}))
	require.NoError(t, s.Handle(command.Go{Dir: command.UpLeft}))
	col, row = s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
}

func TestPrepareMove_DoesNotChangeGrid(t *testing.T) {
	s, _ := makeSwitcher()
	require.NoError(t, s.Handle(command.PrepareMove{DX: 0.5, DY: 0}))
	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
	cols, rows := s.Dimensions()
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)
}

func TestCancelMove_ReconvergesWithoutMoving(t *testing.T) {
	s, backend := makeSwitcher()
	require.NoError(t, s.Handle(command.CancelMove{}))
	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
	assert.Empty(t, backend.switches, "already at the target cell")
}

//  MoveWindowAndGo

func TestMoveWindowAndGo_MovesWindowThenFollows(t *testing.T) {
	s, backend := makeSwitcher()
	require.NoError(t, s.Handle(command.MoveWindowAndGo{Dir: command.Right}))

	require.Len(t, backend.moves, 1)
	col, row := s.Position()
	assert.Equal(t, 1, col)
	assert.Equal(t, 0, row)
	// The window went to the target cell's workspace for the active
	// monitor (DP-1, index 0): cell (1,0) with 2 monitors.
	assert.Equal(t, WorkspaceID(1, 0, 0, 2), backend.moves[0])
}

// orderCheckingWM fails the window move unless the active monitor was
// queried first. MoveWindowAndGo must resolve which monitor is focused
// before choosing a workspace id; moving first can file the window under
// the wrong monitor's id.
type orderCheckingWM struct {
	recorderWM
	activeQueried bool
}

func (o *orderCheckingWM) ActiveMonitor() (string, error) {
	o.activeQueried = true
	return "DP-1", nil
}

func (o *orderCheckingWM) MoveWindowToWorkspace(ws int32) error {
	if !o.activeQueried {
		return fmt.Errorf("window moved before the active monitor was resolved")
	}
	return o.recorderWM.MoveWindowToWorkspace(ws)
}

func TestMoveWindowAndGo_QueriesActiveMonitorBeforeMoving(t *testing.T) {
	backend := &orderCheckingWM{}
	s := New(backend, []string{"DP-1", "HDMI-A-1"})
	require.NoError(t, s.Handle(command.MoveWindowAndGo{Dir: command.Right}))
	assert.Len(t, backend.moves, 1)
}

//  MoveWindowToMonitor

func TestMoveWindowToMonitor_Right(t *testing.T) {
	s, backend := makeSwitcher()
	require.NoError(t, s.Handle(command.MoveWindowToMonitor{Dir: command.Right}))
	require.Len(t, backend.monitorMoves, 1)
	assert.Equal(t, "HDMI-A-1", backend.monitorMoves[0])
}

func TestMoveWindowToMonitor_NoCandidateIsNoop(t *testing.T) {
	s, backend := makeSwitcher()
	require.NoError(t, s.Handle(command.MoveWindowToMonitor{Dir: command.Left}))
	assert.Empty(t, backend.monitorMoves)
}

func TestMoveWindowToMonitor_NoActiveWindowIsNoop(t *testing.T) {
	s, backend := makeSwitcher()
	backend.noWindow = true
	require.NoError(t, s.Handle(command.MoveWindowToMonitor{Dir: command.Right}))
	assert.Empty(t, backend.monitorMoves)
}

func TestMoveWindowToMonitor_DoesNotChangeGrid(t *testing.T) {
	s, _ := makeSwitcher()
	require.NoError(t, s.Handle(command.MoveWindowToMonitor{Dir: command.Right}))
	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
}

//  MoveWindowToMonitorIndex

func TestMoveWindowToMonitorIndex_Valid(t *testing.T) {
	s, backend := makeSwitcher()
	require.NoError(t, s.Handle(command.MoveWindowToMonitorIndex{Index: 1}))
	require.Len(t, backend.monitorMoves, 1)
	assert.Equal(t, "HDMI-A-1", backend.monitorMoves[0])
}

func TestMoveWindowToMonitorIndex_OutOfRange(t *testing.T) {
	s, backend := makeSwitcher()
	err := s.Handle(command.MoveWindowToMonitorIndex{Index: 5})
	require.Error(t, err)
	assert.Empty(t, backend.monitorMoves, "no side effect on error")
	assert.Empty(t, backend.moves)
	assert.Empty(t, backend.switches)
}

//  Visualizer events

func collectEvents(t *testing.T, cmd command.Command) []visualizer.Event {
	t.Helper()
	s, _ := makeSwitcher()
	ch := make(chan visualizer.Event, 64)
	s.SetVisualizer(ch)
	require.NoError(t, s.Handle(cmd))
	close(ch)
	var events []visualizer.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestGo_EmitsShowThenHide(t *testing.T) {
	events := collectEvents(t, command.Go{Dir: command.Right})
	require.Len(t, events, 2)
	assert.Equal(t, visualizer.ShowAuto, events[0].Kind)
	assert.Equal(t, visualizer.Hide, events[1].Kind)
	require.NotNil(t, events[0].Payload)
	assert.Equal(t, 1, events[0].Payload.State.Col)
	assert.Equal(t, 2, events[0].Payload.State.Cols)
}

func TestSwitchTo_BackendFailureStillFlashesVisualizer(t *testing.T) {
	s, backend := makeSwitcher()
	backend.failSwitch = true
	ch := make(chan visualizer.Event, 8)
	s.SetVisualizer(ch)
	require.NoError(t, s.Handle(command.SwitchTo{X: 1, Y: 0}))
	close(ch)
	var kinds []visualizer.EventKind
	for ev := range ch {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []visualizer.EventKind{visualizer.ShowAuto, visualizer.Hide}, kinds)
}

func TestToggleVisualizer_EmitsSingleManualToggle(t *testing.T) {
	events := collectEvents(t, command.ToggleVisualizer{})
	require.Len(t, events, 1)
	assert.Equal(t, visualizer.ToggleManual, events[0].Kind)
	require.NotNil(t, events[0].Payload)
	assert.Equal(t, 1, events[0].Payload.State.Cols)
}

func TestPrepareMove_EmitsShowWithOffsetsAndTarget(t *testing.T) {
	events := collectEvents(t, command.PrepareMove{DX: 0.5, DY: 0})
	require.Len(t, events, 1)
	assert.Equal(t, visualizer.ShowAuto, events[0].Kind)
	p := events[0].Payload
	require.NotNil(t, p)
	assert.Equal(t, 0.5, p.State.OffsetX)
	// 0.5 is over the default 0.3 commit threshold, so the payload
	// previews the commit target.
	require.NotNil(t, p.State.TargetCell)
	assert.Equal(t, visualizer.Cell{Col: 1, Row: 0}, *p.State.TargetCell)
}

func TestPrepareMove_BelowThresholdHasNoTarget(t *testing.T) {
	events := collectEvents(t, command.PrepareMove{DX: 0.1, DY: 0})
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Payload.State.TargetCell)
}

//  Swipe gestures

func swipeSwitcher(t *testing.T, cfg gesture.Config) (*Switcher, *recorderWM, chan visualizer.Event) {
	t.Helper()
	s, backend := makeSwitcher()
	require.NoError(t, cfg.Validate())
	s.SetGestureConfig(cfg)
	ch := make(chan visualizer.Event, 64)
	s.SetVisualizer(ch)
	return s, backend, ch
}

func drainEvents(ch chan visualizer.Event) []visualizer.Event {
	var events []visualizer.Event
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestSwipe_TenUpdatesThenCommitRight(t *testing.T) {
	cfg := gesture.DefaultConfig()
	cfg.NaturalSwiping = false
	s, backend, ch := swipeSwitcher(t, cfg)

	require.NoError(t, s.Handle(command.SwipeBegin{Fingers: 3}))
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 3, DX: 25.0, DY: 2.0}))
	}
	previews := drainEvents(ch)
	require.Len(t, previews, 10)
	for _, ev := range previews {
		assert.Equal(t, visualizer.ShowAuto, ev.Kind)
	}
	// Accumulated dx = 250 px at sensitivity 200 clamps to 1.0.
	last := previews[9].Payload.State
	assert.Equal(t, 1.0, last.OffsetX)
	assert.Equal(t, 0.1, last.OffsetY)

	require.NoError(t, s.Handle(command.SwipeEnd{}))
	col, row := s.Position()
	assert.Equal(t, 1, col)
	assert.Equal(t, 0, row)
	assert.Len(t, backend.switches, 2, "one switch per monitor")
}

func TestSwipe_NaturalSwipingInvertsCommitDirection(t *testing.T) {
	cfg := gesture.DefaultConfig() // natural swiping on
	s, _, _ := swipeSwitcher(t, cfg)

	require.NoError(t, s.Handle(command.SwipeBegin{Fingers: 3}))
	require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 3, DX: 250, DY: 0}))
	require.NoError(t, s.Handle(command.SwipeEnd{}))

	// A rightward drag commits Left under natural swiping; Left at the
	// origin clamps, so the position does not change.
	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
}

func TestSwipe_BelowThresholdCancels(t *testing.T) {
	cfg := gesture.DefaultConfig()
	cfg.NaturalSwiping = false
	s, backend, ch := swipeSwitcher(t, cfg)

	require.NoError(t, s.Handle(command.SwipeBegin{Fingers: 3}))
	require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 3, DX: 10, DY: 0}))
	drainEvents(ch)
	require.NoError(t, s.Handle(command.SwipeEnd{}))

	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
	assert.Empty(t, backend.switches, "cancel at the current cell issues no switches")

	// The cancel path still finalizes the overlay.
	events := drainEvents(ch)
	require.Len(t, events, 2)
	assert.Equal(t, visualizer.ShowAuto, events[0].Kind)
	assert.Equal(t, visualizer.Hide, events[1].Kind)
}

func TestSwipe_MoveFingersCarriesWindow(t *testing.T) {
	cfg := gesture.DefaultConfig()
	cfg.NaturalSwiping = false
	s, backend, _ := swipeSwitcher(t, cfg)

	require.NoError(t, s.Handle(command.SwipeBegin{Fingers: 4}))
	require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 4, DX: 250, DY: 0}))
	require.NoError(t, s.Handle(command.SwipeEnd{}))

	require.Len(t, backend.moves, 1, "four-finger swipe moves the window along")
	col, _ := s.Position()
	assert.Equal(t, 1, col)
}

func TestSwipe_EarlyCommitWhileDragging(t *testing.T) {
	cfg := gesture.DefaultConfig()
	cfg.NaturalSwiping = false
	early := 0.8
	cfg.CommitWhileDraggingThreshold = &early
	s, backend, _ := swipeSwitcher(t, cfg)

	require.NoError(t, s.Handle(command.SwipeBegin{Fingers: 3}))
	require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 3, DX: 170, DY: 0}))

	// 170/200 = 0.85 >= 0.8: committed without finger lift.
	col, _ := s.Position()
	assert.Equal(t, 1, col)
	assert.Len(t, backend.switches, 2)

	// The accumulator is gone; further updates and the lift are no-ops.
	require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 3, DX: 170, DY: 0}))
	require.NoError(t, s.Handle(command.SwipeEnd{}))
	col, _ = s.Position()
	assert.Equal(t, 1, col)
}

func TestSwipe_UnconfiguredFingerCountIgnored(t *testing.T) {
	cfg := gesture.DefaultConfig()
	cfg.NaturalSwiping = false
	s, backend, ch := swipeSwitcher(t, cfg)

	require.NoError(t, s.Handle(command.SwipeBegin{Fingers: 2}))
	require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 2, DX: 250, DY: 0}))
	require.NoError(t, s.Handle(command.SwipeEnd{}))

	col, row := s.Position()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
	assert.Empty(t, backend.switches)
	assert.Empty(t, drainEvents(ch))
}

func TestSwipeUpdate_WithoutBeginIsNoop(t *testing.T) {
	s, backend, ch := swipeSwitcher(t, gesture.DefaultConfig())
	require.NoError(t, s.Handle(command.SwipeUpdate{Fingers: 3, DX: 250, DY: 0}))
	require.NoError(t, s.Handle(command.SwipeEnd{}))
	assert.Empty(t, backend.switches)
	assert.Empty(t, drainEvents(ch))
}

//  Lock-step invariant

func TestAllMonitorPositionsMoveInLockStep(t *testing.T) {
	s, _ := makeSwitcher()
	cmds := []command.Command{
		command.Go{Dir: command.Right},
		command.SwitchTo{X: 3, Y: 2},
		command.CommitMove{Dir: command.UpLeft},
	}
	for _, cmd := range cmds {
		require.NoError(t, s.Handle(cmd))
		first := s.monitors[0]
		for _, p := range s.monitors[1:] {
			assert.Equal(t, first.Col, p.Col, "after %v", cmd)
			assert.Equal(t, first.Row, p.Row, "after %v", cmd)
		}
	}
}

//  Status snapshot

func TestSnapshot(t *testing.T) {
	s, backend := makeSwitcher()
	backend.focused = "HDMI-A-1"
	require.NoError(t, s.Handle(command.SwitchTo{X: 2, Y: 1}))

	st := s.Snapshot()
	assert.Equal(t, 3, st.Cols)
	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, 2, st.Col)
	assert.Equal(t, 1, st.Row)
	assert.Len(t, st.Monitors, 2)
	assert.Equal(t, "HDMI-A-1", st.ActiveMonitor)
}
