package toolerr

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hexlink/internal/hexframe"
)

func TestNew_Nil(t *testing.T) {
	assert.NoError(t, New(PortOpen, "open", nil))
}

func TestKindOf(t *testing.T) {
	_, statErr := os.Stat(filepath.Join(t.TempDir(), "missing.txt"))
	_, decodeErr := hexframe.Decode("abc")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Unclassified},
		{"explicit port open", New(PortOpen, "open COM3", errors.New("access denied")), PortOpen},
		{"wrapped explicit", fmt.Errorf("run: %w", New(HexDecode, "decode", errors.New("x"))), HexDecode},
		{"explicit beats cause", New(Unclassified, "read", fs.ErrNotExist), Unclassified},
		{"missing file", statErr, FileNotFound},
		{"hex decode", decodeErr, HexDecode},
		{"anything else", errors.New("boom"), Unclassified},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestError_Format(t *testing.T) {
	cause := errors.New("no such device")
	err := New(PortOpen, "open COM7", cause)
	assert.EqualError(t, err, "open COM7: no such device")
	assert.ErrorIs(t, err, cause)

	bare := New(HexDecode, "", cause)
	assert.EqualError(t, bare, "no such device")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "port_open", PortOpen.String())
	assert.Equal(t, "hex_decode", HexDecode.String())
	assert.Equal(t, "file_not_found", FileNotFound.String())
	assert.Equal(t, "unclassified", Unclassified.String())
	assert.Equal(t, "unclassified", Kind(42).String())
}

func TestReport(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{New(PortOpen, "open COM3", errors.New("busy")), "Error opening serial port: open COM3: busy\n"},
		{New(HexDecode, "decode", errors.New("odd")), "Hexadecimal data format error: decode: odd\n"},
		{New(FileNotFound, "read data.txt", fs.ErrNotExist), "File not found: read data.txt: file does not exist\n"},
		{errors.New("boom"), "An error occurred: boom\n"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		Report(&buf, tc.err)
		assert.Equal(t, tc.want, buf.String())
	}

	var buf bytes.Buffer
	Report(&buf, nil)
	require.Empty(t, buf.String())
}
