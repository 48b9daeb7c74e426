// Package playback writes the bytes encoded in a hex text file to a serial
// port in a single write.
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/banshee-data/hexlink/internal/config"
	"github.com/banshee-data/hexlink/internal/fsutil"
	"github.com/banshee-data/hexlink/internal/hexframe"
	"github.com/banshee-data/hexlink/internal/lifecycle"
	"github.com/banshee-data/hexlink/internal/monitoring"
	"github.com/banshee-data/hexlink/internal/serialport"
	"github.com/banshee-data/hexlink/internal/toolerr"
)

// Options configures a single playback run.
type Options struct {
	PortName string
	BaudRate int
	FilePath string

	// Out receives the progress lines shown to the user. Nil discards them.
	Out io.Writer

	Factory serialport.Factory
	FS      fsutil.FileSystem
	Config  *config.Config
	// RunID tags diagnostic lines; a new one is generated when empty.
	RunID string
}

// Result describes what a playback run sent.
type Result struct {
	RunID        string
	PortName     string
	FilePath     string
	Payload      []byte
	BytesWritten int
	// States is the lifecycle history, ending in lifecycle.Exit.
	States []lifecycle.State
}

// Run loads and decodes the file, then opens the port and writes the payload.
// The port is only opened once the payload is known to be valid, and it is
// always closed again before Run returns.
func Run(ctx context.Context, opts Options) (res Result, err error) {
	if opts.Factory == nil {
		opts.Factory = serialport.NewRealFactory()
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}
	if opts.Config == nil {
		opts.Config = config.MustDefaults()
	}
	if opts.RunID == "" {
		opts.RunID = monitoring.NewRunID()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	logf := monitoring.RunLogger(opts.RunID)
	out := opts.Out

	res = Result{RunID: opts.RunID, PortName: opts.PortName, FilePath: opts.FilePath}

	tr := lifecycle.NewTracker("playback " + opts.RunID)
	var port serialport.Port
	defer func() {
		if err != nil {
			tr.Fail()
		}
		tr.BeginCleanup()
		if port != nil && port.IsOpen() {
			if cerr := port.Close(); cerr != nil {
				logf("failed to close serial port: %v", cerr)
			} else {
				fmt.Fprintln(out, "Serial port closed.")
			}
		}
		tr.Finish()
		res.States = tr.History()
	}()

	payload, err := LoadFile(opts.FS, opts.FilePath)
	if err != nil {
		return res, err
	}
	res.Payload = payload
	logf("decoded %d bytes from %s", len(payload), opts.FilePath)

	if err := ctx.Err(); err != nil {
		return res, toolerr.New(toolerr.Unclassified, "playback", err)
	}

	portOpts := opts.Config.PortOptions(opts.BaudRate)
	port, err = opts.Factory.Open(opts.PortName, portOpts)
	if err != nil {
		return res, toolerr.New(toolerr.PortOpen, "open "+opts.PortName, err)
	}
	if err := tr.To(lifecycle.PortOpen); err != nil {
		return res, err
	}
	fmt.Fprintf(out, "Successfully opened COM port %s\n", opts.PortName)
	if mode, err := portOpts.Normalize(); err == nil {
		logf("opened %s at %s", opts.PortName, mode)
	}
	if err := tr.To(lifecycle.Working); err != nil {
		return res, err
	}

	n, err := port.Write(payload)
	res.BytesWritten = n
	if err != nil {
		return res, toolerr.New(toolerr.Unclassified, "write "+opts.PortName, err)
	}
	if n != len(payload) {
		logf("short write: %d of %d bytes", n, len(payload))
	}
	fmt.Fprintf(out, "Written %d bytes to %s\n", n, opts.PortName)
	fmt.Fprintf(out, "Data sent (hex): %s\n", hexframe.Encode(payload[:n]))

	return res, tr.To(lifecycle.Done)
}

// LoadFile reads path, trims surrounding whitespace and decodes the hex text.
// Errors are classified as FileNotFound, HexDecode or Unclassified.
func LoadFile(fsys fsutil.FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, toolerr.New(toolerr.FileNotFound, "read "+path, err)
		}
		return nil, toolerr.New(toolerr.Unclassified, "read "+path, err)
	}

	payload, err := hexframe.Decode(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, toolerr.New(toolerr.HexDecode, "decode "+path, err)
	}
	return payload, nil
}
