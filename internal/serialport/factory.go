package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// RealFactory opens ports through the go.bug.st/serial driver.
type RealFactory struct{}

// NewRealFactory returns a Factory backed by the OS serial driver.
func NewRealFactory() *RealFactory {
	return &RealFactory{}
}

// Open opens the named port with the given options and applies the read
// timeout before returning. The port is closed again if the timeout cannot be
// set.
func (RealFactory) Open(name string, opts PortOptions) (Port, error) {
	normalized, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	mode, err := normalized.SerialMode()
	if err != nil {
		return nil, err
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := p.SetReadTimeout(normalized.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}

	return &handle{Port: p, name: name, open: true}, nil
}

// handle tracks whether the underlying driver port is still open, which
// go.bug.st/serial does not expose.
type handle struct {
	serial.Port
	name string
	open bool
}

func (h *handle) Read(p []byte) (int, error) {
	if !h.open {
		return 0, ErrPortClosed
	}
	return h.Port.Read(p)
}

func (h *handle) Write(p []byte) (int, error) {
	if !h.open {
		return 0, ErrPortClosed
	}
	return h.Port.Write(p)
}

func (h *handle) SetReadTimeout(timeout time.Duration) error {
	if !h.open {
		return ErrPortClosed
	}
	return h.Port.SetReadTimeout(timeout)
}

func (h *handle) IsOpen() bool { return h.open }

func (h *handle) Close() error {
	if !h.open {
		return ErrPortClosed
	}
	if err := h.Port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", h.name, err)
	}
	h.open = false
	return nil
}

