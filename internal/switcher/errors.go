package switcher

import "fmt"

// WindowManagerError wraps a failure reported by the window-manager
// backend (or a missing precondition such as no focused monitor). The
// grid state may already have advanced when this is returned; the
// switcher is optimistic and never rolls back.
type WindowManagerError struct {
	Reason string
}

func (e *WindowManagerError) Error() string {
	return "window manager error: " + e.Reason
}

func wmError(err error) error {
	return &WindowManagerError{Reason: err.Error()}
}

func wmErrorf(format string, args ...interface{}) error {
	return &WindowManagerError{Reason: fmt.Sprintf(format, args...)}
}
