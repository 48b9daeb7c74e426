// Package serialport wraps the go.bug.st/serial driver behind the small set of
// operations the capture and playback tools need: open with a baud rate and
// read timeout, read, write, close and an open check.
package serialport

import (
	"errors"
	"io"
	"time"
)

// ErrPortClosed is returned by operations on a port that has been closed.
var ErrPortClosed = errors.New("serial port closed")

// Port is the handle returned by a Factory. Reads return zero bytes and a nil
// error when the read timeout elapses with nothing received.
type Port interface {
	io.ReadWriter
	io.Closer
	// IsOpen reports whether Close has not yet been called successfully.
	IsOpen() bool
}

// TimeoutPort is implemented by ports that support changing the read timeout
// after they have been opened.
type TimeoutPort interface {
	Port
	SetReadTimeout(timeout time.Duration) error
}

// Factory opens serial ports. The real implementation talks to the OS driver;
// tests inject MockFactory.
type Factory interface {
	Open(name string, opts PortOptions) (Port, error)
}
