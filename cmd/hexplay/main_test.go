package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hexlink/internal/fsutil"
	"github.com/banshee-data/hexlink/internal/monitoring"
	"github.com/banshee-data/hexlink/internal/serialport"
)

const finalPrompt = "Program completed. Press any key to exit..."

func init() {
	monitoring.SetLogger(nil)
}

func TestRun_Playback(t *testing.T) {
	port := serialport.NewTestablePort(nil)
	factory := serialport.NewMockFactory(port)
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile(`C:\path\file.txt`, []byte("deadbeef\n"), 0644))
	var out bytes.Buffer

	input := "COM4\n9600\n\"C:\\path\\file.txt\"\n\n"
	run(context.Background(), strings.NewReader(input), &out, factory, mfs)

	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, port.Written())

	got := out.String()
	assert.Contains(t, got, "Enter the COM port name (e.g., COM3): ")
	assert.Contains(t, got, "Enter the baud rate (e.g., 9600): ")
	assert.Contains(t, got, "Enter the file path containing hexadecimal data")
	assert.Contains(t, got,
		"Successfully opened COM port COM4\n"+
			"Written 4 bytes to COM4\n"+
			"Data sent (hex): deadbeef\n"+
			"Serial port closed.\n"+
			finalPrompt)
	assert.True(t, strings.HasSuffix(got, finalPrompt))
}

func TestRun_ReportsErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		path     string
		openErr  bool
		want     string
	}{
		{"missing file", "", "missing.txt", false, "File not found"},
		{"bad hex", "xyz1", "frame.txt", false, "Hexadecimal data format error"},
		{"port open", "00ff", "frame.txt", true, "Error opening serial port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mfs := fsutil.NewMemoryFileSystem()
			require.NoError(t, mfs.WriteFile("frame.txt", []byte(tc.contents), 0644))
			factory := serialport.NewMockFactory(serialport.NewTestablePort(nil))
			if tc.openErr {
				factory.Error = assert.AnError
			}
			var out bytes.Buffer

			run(context.Background(), strings.NewReader("COM4\n9600\n"+tc.path+"\n"), &out, factory, mfs)

			assert.Contains(t, out.String(), tc.want)
			assert.NotContains(t, out.String(), "Data sent")
			assert.True(t, strings.HasSuffix(out.String(), finalPrompt), "final prompt is shown after errors too")
		})
	}
}
