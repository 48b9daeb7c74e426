package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hexlink/internal/fsutil"
	"github.com/banshee-data/hexlink/internal/hexframe"
	"github.com/banshee-data/hexlink/internal/monitoring"
	"github.com/banshee-data/hexlink/internal/serialport"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestRun_Capture(t *testing.T) {
	port := serialport.NewTestablePort([]byte{0x01, 0x02})
	port.EmptyReads = 5
	factory := serialport.NewMockFactory(port)
	mfs := fsutil.NewMemoryFileSystem()
	var out bytes.Buffer

	run(context.Background(), strings.NewReader("COM3\n 9600 \nlog.txt\n"), &out, "/work", factory, mfs)

	require.Len(t, factory.OpenCalls, 1)
	assert.Equal(t, "COM3", factory.OpenCalls[0].Name)
	assert.Equal(t, 9600, factory.OpenCalls[0].Options.BaudRate)

	data, err := mfs.ReadFile(filepath.Join("/work", "EC_log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "7e397000100102", string(data))

	data, err = mfs.ReadFile(filepath.Join("/work", "log.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)

	got := out.String()
	assert.Contains(t, got, "Please enter the COM port name (e.g., COM3): ")
	assert.Contains(t, got, "Please enter the baud rate (e.g., 9600): ")
	assert.Contains(t, got, "Please enter the name of the file to save data (e.g., data.txt): ")
	assert.Contains(t, got, "Current working directory: /work\n")
	assert.Contains(t, got, "Successfully opened COM port COM3\n")
	assert.Contains(t, got, "Data will be saved to: "+filepath.Join("/work", "log.txt")+" and "+filepath.Join("/work", "EC_log.txt")+"\n")
	assert.Contains(t, got, "Waiting to receive data...\n")
	assert.Contains(t, got, "Raw received data (hexadecimal): 0102\n")
	assert.Contains(t, got, "Data with prefix added: 7e397000100102\n")
	assert.True(t, strings.HasSuffix(got, "Serial port closed.\n"))
	assert.True(t, port.Closed)
}

func TestRun_CaptureTrimmed(t *testing.T) {
	chunk, err := hexframe.Decode("aabbccdd" + hexframe.UnwantedPrefix + "cafe" + "eeff")
	require.NoError(t, err)
	port := serialport.NewTestablePort(chunk)
	mfs := fsutil.NewMemoryFileSystem()
	var out bytes.Buffer

	run(context.Background(), strings.NewReader("COM3\n9600\nlog.txt\n"), &out, "/work", serialport.NewMockFactory(port), mfs)

	data, err := mfs.ReadFile(filepath.Join("/work", "log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "cafe", string(data))

	got := out.String()
	assert.Contains(t, got, "Processed data: "+hexframe.UnwantedPrefix+"cafe\n")
	assert.Contains(t, got, "Data after removing unwanted prefix: cafe\n")
	assert.Contains(t, got, "Data has been saved, program will terminate.\nSerial port closed.\n")
}

func TestRun_InvalidBaud(t *testing.T) {
	factory := serialport.NewMockFactory(serialport.NewTestablePort(nil))
	var out bytes.Buffer

	run(context.Background(), strings.NewReader("COM3\nfast\nlog.txt\n"), &out, "/work", factory, fsutil.NewMemoryFileSystem())

	assert.Contains(t, out.String(), "An error occurred: invalid integer")
	assert.Empty(t, factory.OpenCalls)
}

func TestRun_PortOpenError(t *testing.T) {
	factory := serialport.NewMockFactory(nil)
	factory.Error = errors.New("no such device")
	var out bytes.Buffer

	run(context.Background(), strings.NewReader("COM9\n9600\nlog.txt\n"), &out, "/work", factory, fsutil.NewMemoryFileSystem())

	assert.Contains(t, out.String(), "Error opening serial port: open COM9: no such device")
	assert.NotContains(t, out.String(), "Successfully opened")
	assert.NotContains(t, out.String(), "Serial port closed.")
}

func TestRun_NoInput(t *testing.T) {
	var out bytes.Buffer
	run(context.Background(), strings.NewReader(""), &out, "/work", serialport.NewMockFactory(nil), fsutil.NewMemoryFileSystem())
	assert.Contains(t, out.String(), "An error occurred: EOF")
}
