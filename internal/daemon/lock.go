package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// InstanceLock guards against two daemons fighting over the same socket
// and compositor. The lock is advisory and released by the kernel when
// the process exits, so a crashed daemon never wedges the next start.
type InstanceLock struct {
	file *os.File
}

// AcquireInstanceLock takes an exclusive flock on a lock file next to
// the control socket. It fails fast when another instance holds it.
func AcquireInstanceLock(socketPath string) (*InstanceLock, error) {
	lockPath := socketPath + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime dir: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, fmt.Errorf("another instance is already running (lock %s held)", lockPath)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	return &InstanceLock{file: f}, nil
}

// Release drops the lock.
func (l *InstanceLock) Release() {
	if l.file != nil {
		unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		l.file.Close()
		l.file = nil
	}
}
