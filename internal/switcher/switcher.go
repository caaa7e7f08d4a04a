// Package switcher contains the orchestrator that ties the grid, the
// window manager, and the visualizer together.
//
// The Switcher owns the Grid and one grid position per participating
// monitor, reacts to Commands by updating that state, and issues the
// window-manager calls that make the backend agree. It is optimistic:
// local state advances first and backend calls are best-effort, so a
// backend failure never leaves the grid partially updated.
package switcher

import (
	"github.com/rs/zerolog"

	"github.com/yourusername/gridswitch/internal/command"
	"github.com/yourusername/gridswitch/internal/gesture"
	"github.com/yourusername/gridswitch/internal/grid"
	"github.com/yourusername/gridswitch/internal/logging"
	"github.com/yourusername/gridswitch/internal/visualizer"
	"github.com/yourusername/gridswitch/internal/wm"
)

// MonitorGridPosition is one monitor's position in the shared grid.
// Every navigation operation moves all entries in lock-step; after any
// successful Handle they all hold the same (col, row).
type MonitorGridPosition struct {
	Name string
	Col  int
	Row  int
}

// activeSwipe accumulates raw touchpad deltas between SwipeBegin and
// SwipeEnd (or an early commit).
type activeSwipe struct {
	fingers uint32
	dx      float64
	dy      float64
}

// Status is a snapshot of the switcher for the IPC status method.
type Status struct {
	Cols          int          `json:"cols"`
	Rows          int          `json:"rows"`
	Col           int          `json:"col"`
	Row           int          `json:"row"`
	ActiveMonitor string       `json:"activeMonitor,omitempty"`
	Monitors      []wm.Monitor `json:"monitors,omitempty"`
}

// Switcher orchestrates grid navigation and window-manager calls.
//
// Handle is the single entry point and must be invoked sequentially; it
// is not safe to call from two goroutines at once. The daemon funnels
// all command sources into one channel and runs Handle on one consumer
// goroutine.
type Switcher struct {
	wm       wm.WindowManager
	grid     *grid.Grid
	monitors []MonitorGridPosition
	events   chan<- visualizer.Event
	gestures gesture.Config
	swipe    *activeSwipe
	log      zerolog.Logger
}

// New creates a switcher for the named monitors, which will switch in
// unison. The grid starts 1×1 with every monitor at (0, 0).
func New(backend wm.WindowManager, monitors []string) *Switcher {
	positions := make([]MonitorGridPosition, len(monitors))
	for i, name := range monitors {
		positions[i] = MonitorGridPosition{Name: name}
	}
	return &Switcher{
		wm:       backend,
		grid:     grid.New(),
		monitors: positions,
		gestures: gesture.DefaultConfig(),
		log:      logging.Logger.With().Str("component", "switcher").Logger(),
	}
}

// SetGestureConfig replaces the gesture tuning. It only affects the
// processing of raw SwipeBegin/SwipeUpdate/SwipeEnd commands.
func (s *Switcher) SetGestureConfig(cfg gesture.Config) {
	s.gestures = cfg
}

// SetVisualizer attaches an outgoing event channel. Sends are
// fire-and-forget: a full or absent channel never blocks or fails
// command handling.
func (s *Switcher) SetVisualizer(ch chan<- visualizer.Event) {
	s.events = ch
}

// Position returns the current grid position. All monitors share it.
func (s *Switcher) Position() (col, row int) {
	if len(s.monitors) == 0 {
		return 0, 0
	}
	return s.monitors[0].Col, s.monitors[0].Row
}

// Dimensions returns the current grid size as (cols, rows).
func (s *Switcher) Dimensions() (cols, rows int) {
	return s.grid.Dimensions()
}

// Snapshot collects the current state plus best-effort monitor info for
// the status method.
func (s *Switcher) Snapshot() Status {
	cols, rows := s.grid.Dimensions()
	col, row := s.Position()
	st := Status{Cols: cols, Rows: rows, Col: col, Row: row}
	if active, err := s.wm.ActiveMonitor(); err == nil {
		st.ActiveMonitor = active
	}
	if mons, err := s.wm.Monitors(); err == nil {
		st.Monitors = mons
	}
	return st
}

// Handle processes a single command.
//
// On success the grid, every monitor position, and the backend agree on
// the new cell. If the window manager fails the local state has already
// been updated; retry or recovery is the caller's responsibility.
func (s *Switcher) Handle(cmd command.Command) error {
	switch c := cmd.(type) {
	case command.SwitchTo:
		return s.switchTo(c.X, c.Y)

	case command.Go:
		s.log.Info().Stringer("direction", c.Dir).Msg("go")
		return s.step(c.Dir)

	case command.CommitMove:
		s.log.Info().Stringer("direction", c.Dir).Msg("commit move")
		return s.step(c.Dir)

	case command.MoveWindowAndGo:
		s.log.Info().Stringer("direction", c.Dir).Msg("move window and go")
		return s.moveWindowAndGo(c.Dir)

	case command.MoveWindowToMonitor:
		s.log.Info().Stringer("direction", c.Dir).Msg("move window to monitor")
		return s.moveWindowToMonitor(c.Dir)

	case command.MoveWindowToMonitorIndex:
		s.log.Info().Int("index", c.Index).Msg("move window to monitor index")
		return s.moveWindowToMonitorIndex(c.Index)

	case command.PrepareMove:
		s.log.Debug().Float64("dx", c.DX).Float64("dy", c.DY).Msg("prepare move")
		s.showVisualizer(c.DX, c.DY)
		return nil

	case command.CancelMove:
		s.log.Debug().Msg("cancel move, re-converge on current cell")
		col, row := s.Position()
		return s.switchTo(col, row)

	case command.ToggleVisualizer:
		s.log.Debug().Msg("toggle visualizer")
		s.emit(visualizer.Event{Kind: visualizer.ToggleManual, Payload: s.payload(0, 0)})
		return nil

	case command.SwipeBegin:
		if c.Fingers == s.gestures.SwitchFingers || c.Fingers == s.gestures.MoveFingers {
			s.log.Debug().Uint32("fingers", c.Fingers).Msg("swipe begin")
			s.swipe = &activeSwipe{fingers: c.Fingers}
		}
		return nil

	case command.SwipeUpdate:
		return s.swipeUpdate(c.DX, c.DY)

	case command.SwipeEnd:
		return s.swipeEnd()

	default:
		// The command set is closed; new variants must be handled here.
		s.log.Warn().Stringer("command", cmd).Msg("unhandled command")
		return nil
	}
}

// switchTo jumps every monitor to the absolute cell (x, y), growing the
// grid as needed. The visualizer is always flashed and hidden so the UI
// finalizes on the attempted state, even if the backend call fails.
func (s *Switcher) switchTo(x, y int) error {
	s.log.Info().Int("x", x).Int("y", y).Msg("switch to")
	curCol, curRow := s.Position()
	alreadyThere := curCol == x && curRow == y

	s.grid.GrowToContain(x, y)
	for i := range s.monitors {
		s.monitors[i].Col = x
		s.monitors[i].Row = y
	}

	if !alreadyThere {
		if err := s.applyCurrentWorkspace(); err != nil {
			s.log.Warn().Err(err).Msg("switch failed; finalizing visualizer anyway")
		}
	}
	s.showVisualizer(0, 0)
	s.hideVisualizer()
	return nil
}

// step performs a discrete one-cell move: step, grow, move every monitor,
// flash the visualizer, then switch the backend workspaces.
func (s *Switcher) step(dir command.Direction) error {
	col, row := s.Position()
	col, row = grid.AbsFrom(dir, col, row)
	s.grid.GrowToContain(col, row)
	for i := range s.monitors {
		s.monitors[i].Col = col
		s.monitors[i].Row = row
	}
	s.showVisualizer(0, 0)
	s.hideVisualizer()
	return s.applyCurrentWorkspace()
}

// moveWindowAndGo moves the focused window to the target cell's
// workspace on the active monitor, then performs the same move as Go.
//
// The active monitor is resolved strictly before the window move: the
// workspace id depends on which monitor the user is on, and moving
// first would file the window under the wrong monitor's id.
func (s *Switcher) moveWindowAndGo(dir command.Direction) error {
	col, row := s.Position()
	targetCol, targetRow := grid.AbsFrom(dir, col, row)

	activeIndex, err := s.activeMonitorIndex()
	if err != nil {
		return err
	}

	targetWs := WorkspaceID(targetCol, targetRow, activeIndex, len(s.monitors))
	if err := s.wm.MoveWindowToWorkspace(targetWs); err != nil {
		return wmError(err)
	}

	return s.step(dir)
}

func (s *Switcher) moveWindowToMonitor(dir command.Direction) error {
	monitors, err := s.wm.Monitors()
	if err != nil {
		return wmError(err)
	}
	win, err := s.wm.ActiveWindow()
	if err != nil {
		return wmError(err)
	}
	if win == nil {
		s.log.Debug().Msg("no active window, nothing to move")
		return nil
	}
	target := wm.FindMonitorInDirection(monitors, win.Monitor, dir)
	if target == nil {
		s.log.Warn().Stringer("direction", dir).Str("monitor", win.Monitor).Msg("no monitor in direction")
		return nil
	}
	s.log.Info().Str("target", target.Name).Msg("moving window to monitor")
	if err := s.wm.MoveWindowToMonitor(target.Name); err != nil {
		return wmError(err)
	}
	return nil
}

func (s *Switcher) moveWindowToMonitorIndex(idx int) error {
	monitors, err := s.wm.Monitors()
	if err != nil {
		return wmError(err)
	}
	if idx < 0 || idx >= len(monitors) {
		return wmErrorf("monitor index %d out of range (have %d)", idx, len(monitors))
	}
	if err := s.wm.MoveWindowToMonitor(monitors[idx].Name); err != nil {
		return wmError(err)
	}
	return nil
}

//  Swipe handling

func (s *Switcher) swipeUpdate(dx, dy float64) error {
	if s.swipe == nil {
		return nil
	}
	s.swipe.dx += dx
	s.swipe.dy += dy

	nx, ny := gesture.NormalizedOffset(s.swipe.dx, s.swipe.dy, s.gestures.Sensitivity, s.gestures.NaturalSwiping)
	s.log.Debug().Float64("dx", nx).Float64("dy", ny).Msg("swipe update")
	s.showVisualizer(nx, ny)

	// Early commit: with the threshold configured, a decisive drag
	// switches without waiting for finger lift.
	if t := s.gestures.CommitWhileDraggingThreshold; t != nil {
		if dir, ok := gesture.DominantDirection(nx, ny, *t); ok {
			moveWindow := s.swipe.fingers == s.gestures.MoveFingers
			s.swipe = nil
			if err := s.commitSwipe(dir, moveWindow); err != nil {
				// The gesture already ended from the user's point of
				// view; surface the failure in the log only.
				s.log.Warn().Err(err).Msg("swipe commit while dragging failed")
			}
		}
	}
	return nil
}

func (s *Switcher) swipeEnd() error {
	if s.swipe == nil {
		return nil
	}
	swipe := s.swipe
	s.swipe = nil

	nx, ny := gesture.NormalizedOffset(swipe.dx, swipe.dy, s.gestures.Sensitivity, s.gestures.NaturalSwiping)
	if dir, ok := gesture.DominantDirection(nx, ny, s.gestures.CommitThreshold); ok {
		return s.commitSwipe(dir, swipe.fingers == s.gestures.MoveFingers)
	}

	s.log.Debug().Msg("swipe below threshold, snap back")
	col, row := s.Position()
	return s.switchTo(col, row)
}

// commitSwipe is the single commit path shared by the early-commit and
// finger-lift decisions.
func (s *Switcher) commitSwipe(dir command.Direction, moveWindow bool) error {
	if moveWindow {
		s.log.Info().Stringer("direction", dir).Msg("swipe commit: move window and go")
		return s.moveWindowAndGo(dir)
	}
	s.log.Info().Stringer("direction", dir).Msg("swipe commit: go")
	return s.step(dir)
}

//  Backend helpers

// activeMonitorIndex resolves the focused monitor to its slot in the
// position list.
func (s *Switcher) activeMonitorIndex() (int, error) {
	active, err := s.wm.ActiveMonitor()
	if err != nil {
		return 0, wmError(err)
	}
	if active == "" {
		return 0, wmErrorf("no active monitor")
	}
	for i, p := range s.monitors {
		if p.Name == active {
			return i, nil
		}
	}
	return 0, wmErrorf("active monitor %s has no grid mapping", active)
}

// applyCurrentWorkspace switches every monitor to the workspace id
// derived from the current cell. The active monitor is switched last so
// the backend's focus-follows-switch behavior leaves the user's monitor
// focused.
func (s *Switcher) applyCurrentWorkspace() error {
	col, row := s.Position()

	active, err := s.wm.ActiveMonitor()
	if err != nil {
		return wmError(err)
	}
	if active == "" {
		return wmErrorf("no active monitor")
	}

	type entry struct {
		monitor string
		ws      int32
	}
	entries := make([]entry, 0, len(s.monitors))
	var last *entry
	for i, p := range s.monitors {
		e := entry{monitor: p.Name, ws: WorkspaceID(col, row, i, len(s.monitors))}
		if p.Name == active {
			last = &e
			continue
		}
		entries = append(entries, e)
	}
	if last != nil {
		entries = append(entries, *last)
	}

	for _, e := range entries {
		s.log.Debug().Str("monitor", e.monitor).Int32("workspace", e.ws).Msg("switch workspace")
		if err := s.wm.SwitchWorkspace(e.monitor, e.ws); err != nil {
			return wmError(err)
		}
	}
	return nil
}

//  Visualizer helpers

func (s *Switcher) emit(ev visualizer.Event) {
	visualizer.TrySend(s.events, ev)
}

func (s *Switcher) showVisualizer(offsetX, offsetY float64) {
	if s.events == nil {
		return
	}
	s.emit(visualizer.Event{Kind: visualizer.ShowAuto, Payload: s.payload(offsetX, offsetY)})
}

func (s *Switcher) hideVisualizer() {
	s.emit(visualizer.Event{Kind: visualizer.Hide})
}

// payload builds a show payload with the current state plus best-effort
// monitor info. TargetCell previews the cell the gesture would commit to
// at the commit threshold.
func (s *Switcher) payload(offsetX, offsetY float64) *visualizer.Payload {
	cols, rows := s.grid.Dimensions()
	col, row := s.Position()
	state := visualizer.State{
		Cols: cols, Rows: rows,
		Col: col, Row: row,
		OffsetX: offsetX, OffsetY: offsetY,
	}
	if dir, ok := gesture.DominantDirection(offsetX, offsetY, s.gestures.CommitThreshold); ok {
		tc, tr := grid.AbsFrom(dir, col, row)
		state.TargetCell = &visualizer.Cell{Col: tc, Row: tr}
	}
	p := &visualizer.Payload{State: state}
	if active, err := s.wm.ActiveMonitor(); err == nil {
		p.ActiveMonitor = active
	}
	if mons, err := s.wm.Monitors(); err == nil {
		p.Monitors = mons
	}
	return p
}
