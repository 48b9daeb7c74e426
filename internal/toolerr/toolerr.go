// Package toolerr classifies the failures both tools report to the user.
// Every error is reported once by the tool's top-level handler and then
// swallowed; none of them change the process exit code.
package toolerr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/banshee-data/hexlink/internal/hexframe"
)

// Kind identifies the class of a tool failure.
type Kind int

const (
	Unclassified Kind = iota
	PortOpen
	HexDecode
	FileNotFound
)

func (k Kind) String() string {
	switch k {
	case PortOpen:
		return "port_open"
	case HexDecode:
		return "hex_decode"
	case FileNotFound:
		return "file_not_found"
	default:
		return "unclassified"
	}
}

// Error attaches a Kind and the failing operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New wraps err with kind and op. It returns nil when err is nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err. Errors without an explicit Kind are
// classified from their cause where possible.
func KindOf(err error) Kind {
	if err == nil {
		return Unclassified
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return FileNotFound
	case errors.Is(err, hexframe.ErrOddLength), errors.Is(err, hexframe.ErrInvalidByte):
		return HexDecode
	default:
		return Unclassified
	}
}

// Message returns the human-readable report line for err.
func Message(err error) string {
	switch KindOf(err) {
	case PortOpen:
		return fmt.Sprintf("Error opening serial port: %v", err)
	case HexDecode:
		return fmt.Sprintf("Hexadecimal data format error: %v", err)
	case FileNotFound:
		return fmt.Sprintf("File not found: %v", err)
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}

// Report writes the report line for err to w. A nil error writes nothing.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, Message(err))
}
