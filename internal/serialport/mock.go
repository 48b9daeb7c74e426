package serialport

import (
	"bytes"
	"sync"
	"time"
)

// TestablePort implements TimeoutPort with configurable behaviour for testing.
// It provides fine-grained control over reads, writes, errors and the number
// of empty (timed out) reads returned before data is delivered.
type TestablePort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// EmptyReads is the number of Read calls that return zero bytes, as a
	// driver timeout would, before ReadBuffer is consulted.
	EmptyReads int

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// ShortWrite, when positive, caps the byte count reported by Write.
	ShortWrite int

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called successfully
	Closed bool

	// ReadCalls records the number of Read calls
	ReadCalls int

	// WriteCalls records the number of Write calls
	WriteCalls int

	// CloseCalls records the number of Close calls
	CloseCalls int

	// ReadSizes records the buffer length passed to each Read call
	ReadSizes []int

	// ReadTimeout is the current read timeout
	ReadTimeout time.Duration
}

// NewTestablePort creates a new TestablePort holding data for reading.
func NewTestablePort(data []byte) *TestablePort {
	return &TestablePort{
		ReadBuffer:  bytes.NewBuffer(data),
		WriteBuffer: bytes.NewBuffer(nil),
	}
}

// Read returns zero bytes while EmptyReads remain, then drains ReadBuffer.
// An exhausted buffer also reads as zero bytes, never io.EOF, matching a
// serial line with nothing on it.
func (t *TestablePort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadCalls++
	t.ReadSizes = append(t.ReadSizes, len(p))

	if t.Closed {
		return 0, ErrPortClosed
	}

	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}

	if t.EmptyReads > 0 {
		t.EmptyReads--
		return 0, nil
	}

	if t.ReadBuffer.Len() == 0 {
		return 0, nil
	}
	return t.ReadBuffer.Read(p)
}

// Write writes to the write buffer, optionally simulating errors.
func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++

	if t.Closed {
		return 0, ErrPortClosed
	}

	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}

	if t.ShortWrite > 0 && t.ShortWrite < len(p) {
		p = p[:t.ShortWrite]
	}
	return t.WriteBuffer.Write(p)
}

// Close marks the port as closed unless CloseError is set.
func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.CloseCalls++
	if t.Closed {
		return ErrPortClosed
	}
	if t.CloseError != nil {
		return t.CloseError
	}
	t.Closed = true
	return nil
}

// IsOpen reports whether the port has not been closed.
func (t *TestablePort) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.Closed
}

// SetReadTimeout implements TimeoutPort.
func (t *TestablePort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadTimeout = timeout
	return nil
}

// Written returns all data written to the port.
func (t *TestablePort) Written() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]byte(nil), t.WriteBuffer.Bytes()...)
}

// MockFactory implements Factory for testing.
type MockFactory struct {
	mu sync.Mutex

	// Port is the port to return from Open
	Port Port

	// Error is returned by Open if set
	Error error

	// OpenCalls records all Open calls
	OpenCalls []MockOpenCall
}

// MockOpenCall records details of an Open call.
type MockOpenCall struct {
	Name    string
	Options PortOptions
}

// NewMockFactory creates a new MockFactory returning port.
func NewMockFactory(port Port) *MockFactory {
	return &MockFactory{Port: port}
}

// Open records the call and returns the configured port or error. Options are
// normalized first so that invalid options fail the way the real driver does.
func (f *MockFactory) Open(name string, opts PortOptions) (Port, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.OpenCalls = append(f.OpenCalls, MockOpenCall{Name: name, Options: opts})

	if f.Error != nil {
		return nil, f.Error
	}
	if _, err := opts.Normalize(); err != nil {
		return nil, err
	}
	if tp, ok := f.Port.(TimeoutPort); ok && opts.ReadTimeout > 0 {
		if err := tp.SetReadTimeout(opts.ReadTimeout); err != nil {
			return nil, err
		}
	}
	return f.Port, nil
}
