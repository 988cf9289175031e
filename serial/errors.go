package serial

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error matches exactly one of these with errors.Is.
var (
	ErrDeviceOpen    = errors.New("device open failed")
	ErrExclusiveLock = errors.New("exclusive lock failed")
	ErrTermios       = errors.New("termios configuration failed")
	ErrWrite         = errors.New("write failed")
)

// Error describes a failed operation on a serial device.
type Error struct {
	Kind   error  // one of the Err* kinds above
	Op     string // syscall or step that failed, e.g. "ioctl(TIOCEXCL)"
	Device string
	Err    error // underlying OS error, usually a syscall.Errno
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Device, e.Err)
}

// Unwrap exposes both the kind and the underlying OS error so errors.Is works
// against either.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
