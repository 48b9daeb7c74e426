// Package fsutil provides the filesystem operations the tools use, behind an
// interface so tests can run against memory instead of the working directory.
package fsutil

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrClosed is returned when writing to or flushing a closed AppendWriter.
var ErrClosed = errors.New("file already closed")

// AppendWriter appends to a file opened in append mode. Written data reaches
// the file when Flush or Close is called.
type AppendWriter interface {
	io.Writer
	Flush() error
	Close() error
}

// FileSystem abstracts filesystem operations for testability.
// Use OSFileSystem for production; MemoryFileSystem for testing.
type FileSystem interface {
	// OpenAppend opens the named file for appending, creating it if needed.
	// Existing content is never truncated.
	OpenAppend(name string) (AppendWriter, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// OSFileSystem implements FileSystem using the os package.
type OSFileSystem struct{}

// OpenAppend opens the named file with O_APPEND.
func (OSFileSystem) OpenAppend(name string) (AppendWriter, error) {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &osAppender{f: f, w: bufio.NewWriter(f)}, nil
}

// ReadFile reads the named file.
func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile writes data to the named file.
func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

type osAppender struct {
	f      *os.File
	w      *bufio.Writer
	closed bool
}

func (a *osAppender) Write(p []byte) (int, error) {
	if a.closed {
		return 0, ErrClosed
	}
	return a.w.Write(p)
}

func (a *osAppender) Flush() error {
	if a.closed {
		return ErrClosed
	}
	return a.w.Flush()
}

func (a *osAppender) Close() error {
	if a.closed {
		return ErrClosed
	}
	a.closed = true
	flushErr := a.w.Flush()
	closeErr := a.f.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// MemoryFileSystem provides an in-memory filesystem for testing.
type MemoryFileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	openErrs map[string]error
}

// NewMemoryFileSystem creates a new in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files:    make(map[string][]byte),
		openErrs: make(map[string]error),
	}
}

// FailOpen makes OpenAppend return err for name.
func (m *MemoryFileSystem) FailOpen(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErrs[filepath.Clean(name)] = err
}

// OpenAppend opens a file for appending, creating it empty if missing.
func (m *MemoryFileSystem) OpenAppend(name string) (AppendWriter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if err := m.openErrs[name]; err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if _, ok := m.files[name]; !ok {
		m.files[name] = []byte{}
	}
	return &memAppender{fs: m, name: name}, nil
}

// ReadFile reads a file's contents.
func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile writes data to a file, replacing any previous content.
func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[filepath.Clean(name)] = append([]byte(nil), data...)
	return nil
}

// memAppender buffers writes until Flush, like the bufio-backed OS appender.
type memAppender struct {
	fs     *MemoryFileSystem
	name   string
	buf    []byte
	closed bool
}

func (a *memAppender) Write(p []byte) (int, error) {
	if a.closed {
		return 0, ErrClosed
	}
	a.buf = append(a.buf, p...)
	return len(p), nil
}

func (a *memAppender) Flush() error {
	if a.closed {
		return ErrClosed
	}
	a.fs.mu.Lock()
	defer a.fs.mu.Unlock()
	a.fs.files[a.name] = append(a.fs.files[a.name], a.buf...)
	a.buf = nil
	return nil
}

func (a *memAppender) Close() error {
	if a.closed {
		return ErrClosed
	}
	err := a.Flush()
	a.closed = true
	return err
}
