package command

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownMethod marks a method name outside the command set, so the
// IPC layer can distinguish "no such method" from a malformed request.
var ErrUnknownMethod = errors.New("unknown command method")

// Decode turns an IPC request (method name plus JSON-decoded params) into
// a Command. Malformed requests are rejected here so the switcher never
// sees an invalid command.
func Decode(method string, params map[string]interface{}) (Command, error) {
	switch method {
	case "switchTo":
		x, err := intParam(params, "x")
		if err != nil {
			return nil, err
		}
		y, err := intParam(params, "y")
		if err != nil {
			return nil, err
		}
		if x < 0 || y < 0 {
			return nil, fmt.Errorf("switchTo: coordinates must be non-negative, got (%d, %d)", x, y)
		}
		return SwitchTo{X: x, Y: y}, nil

	case "go":
		dir, err := dirParam(params)
		if err != nil {
			return nil, err
		}
		return Go{Dir: dir}, nil

	case "moveWindowAndGo":
		dir, err := dirParam(params)
		if err != nil {
			return nil, err
		}
		return MoveWindowAndGo{Dir: dir}, nil

	case "moveWindowToMonitor":
		dir, err := dirParam(params)
		if err != nil {
			return nil, err
		}
		return MoveWindowToMonitor{Dir: dir}, nil

	case "moveWindowToMonitorIndex":
		idx, err := intParam(params, "index")
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, fmt.Errorf("moveWindowToMonitorIndex: index must be non-negative, got %d", idx)
		}
		return MoveWindowToMonitorIndex{Index: idx}, nil

	case "prepareMove":
		dx, err := floatParam(params, "dx")
		if err != nil {
			return nil, err
		}
		dy, err := floatParam(params, "dy")
		if err != nil {
			return nil, err
		}
		if math.Abs(dx) > 1 || math.Abs(dy) > 1 {
			return nil, fmt.Errorf("prepareMove: offsets must be in [-1, 1], got (%v, %v)", dx, dy)
		}
		return PrepareMove{DX: dx, DY: dy}, nil

	case "cancelMove":
		return CancelMove{}, nil

	case "commitMove":
		dir, err := dirParam(params)
		if err != nil {
			return nil, err
		}
		return CommitMove{Dir: dir}, nil

	case "toggleVisualizer":
		return ToggleVisualizer{}, nil

	case "swipeBegin":
		fingers, err := uintParam(params, "fingers")
		if err != nil {
			return nil, err
		}
		return SwipeBegin{Fingers: fingers}, nil

	case "swipeUpdate":
		fingers, err := uintParam(params, "fingers")
		if err != nil {
			return nil, err
		}
		dx, err := floatParam(params, "dx")
		if err != nil {
			return nil, err
		}
		dy, err := floatParam(params, "dy")
		if err != nil {
			return nil, err
		}
		return SwipeUpdate{Fingers: fingers, DX: dx, DY: dy}, nil

	case "swipeEnd":
		return SwipeEnd{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

func floatParam(params map[string]interface{}, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("parameter %q: expected number, got %T", key, v)
	}
	return f, nil
}

func intParam(params map[string]interface{}, key string) (int, error) {
	f, err := floatParam(params, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("parameter %q: expected integer, got %v", key, f)
	}
	return int(f), nil
}

func uintParam(params map[string]interface{}, key string) (uint32, error) {
	n, err := intParam(params, key)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("parameter %q: out of range: %d", key, n)
	}
	return uint32(n), nil
}

func dirParam(params map[string]interface{}) (Direction, error) {
	v, ok := params["direction"]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", "direction")
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("parameter %q: expected string, got %T", "direction", v)
	}
	return ParseDirection(s)
}
