// Package capture reads one chunk of bytes from a serial port and appends it
// as hex text to an output file pair: the raw entry to the EC file and the
// trimmed record to the main file.
package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/hexlink/internal/config"
	"github.com/banshee-data/hexlink/internal/fsutil"
	"github.com/banshee-data/hexlink/internal/hexframe"
	"github.com/banshee-data/hexlink/internal/lifecycle"
	"github.com/banshee-data/hexlink/internal/monitoring"
	"github.com/banshee-data/hexlink/internal/serialport"
	"github.com/banshee-data/hexlink/internal/toolerr"
)

// Options configures a single capture run.
type Options struct {
	PortName   string
	BaudRate   int
	OutputFile string

	// WorkDir is joined onto OutputFile and its EC pair. When empty the
	// names are used as given, relative to the process working directory.
	WorkDir string
	// Out receives the progress lines shown to the user. Nil discards them.
	Out io.Writer

	Factory serialport.Factory
	FS      fsutil.FileSystem
	Config  *config.Config
	// RunID tags diagnostic lines; a new one is generated when empty.
	RunID string
}

// Result describes what a capture run received and wrote.
type Result struct {
	RunID      string
	MainFile   string
	ECFile     string
	Received   bool
	ChunkSize  int
	EmptyReads int
	Record     hexframe.Record
	// States is the lifecycle history, ending in lifecycle.Exit.
	States []lifecycle.State
}

// ECFileName returns the name of the EC file paired with output.
func ECFileName(cfg *config.Config, output string) string {
	return cfg.GetECFilePrefix() + output
}

// Run opens the port, waits for the first non-empty read and appends it to
// both output files. Empty reads are retried immediately and without limit;
// only ctx cancellation or an error ends the wait early. The port and files
// are always released before Run returns.
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

	res = Result{
		RunID:    opts.RunID,
		MainFile: opts.OutputFile,
		ECFile:   ECFileName(opts.Config, opts.OutputFile),
	}
	if opts.WorkDir != "" {
		res.MainFile = filepath.Join(opts.WorkDir, res.MainFile)
		res.ECFile = filepath.Join(opts.WorkDir, res.ECFile)
	}

	tr := lifecycle.NewTracker("capture " + opts.RunID)
	var cleanups []func()
	defer func() {
		if err != nil {
			tr.Fail()
		}
		tr.BeginCleanup()
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		tr.Finish()
		res.States = tr.History()
	}()

	fmt.Fprintf(out, "Current working directory: %s\n", workDir(opts.WorkDir))

	portOpts := opts.Config.PortOptions(opts.BaudRate)
	port, err := opts.Factory.Open(opts.PortName, portOpts)
	if err != nil {
		return res, toolerr.New(toolerr.PortOpen, "open "+opts.PortName, err)
	}
	cleanups = append(cleanups, func() { closePort(port, out, logf) })
	if err := tr.To(lifecycle.PortOpen); err != nil {
		return res, err
	}
	fmt.Fprintf(out, "Successfully opened COM port %s\n", opts.PortName)
	if mode, err := portOpts.Normalize(); err == nil {
		logf("opened %s at %s", opts.PortName, mode)
	}

	mainFile, err := opts.FS.OpenAppend(res.MainFile)
	if err != nil {
		return res, toolerr.New(toolerr.Unclassified, "open output file", err)
	}
	cleanups = append(cleanups, func() { closeFile(mainFile, res.MainFile, logf) })

	ecFile, err := opts.FS.OpenAppend(res.ECFile)
	if err != nil {
		return res, toolerr.New(toolerr.Unclassified, "open EC file", err)
	}
	cleanups = append(cleanups, func() { closeFile(ecFile, res.ECFile, logf) })

	if err := tr.To(lifecycle.Working); err != nil {
		return res, err
	}
	fmt.Fprintf(out, "Data will be saved to: %s and %s\n", res.MainFile, res.ECFile)
	fmt.Fprintln(out, "Waiting to receive data...")

	chunk, empty, err := readChunk(ctx, port, opts.Config.GetReadSize())
	res.EmptyReads = empty
	if err != nil {
		return res, toolerr.New(toolerr.Unclassified, "read "+opts.PortName, err)
	}
	res.Received = true
	res.ChunkSize = len(chunk)
	res.Record = hexframe.NewRecord(chunk)
	logf("received %d bytes after %d empty reads", len(chunk), empty)
	fmt.Fprintf(out, "Raw received data (hexadecimal): %s\n", hexframe.Encode(chunk))
	fmt.Fprintf(out, "Data with prefix added: %s\n", res.Record.Raw)

	if err := appendEntry(ecFile, res.Record.Raw); err != nil {
		return res, toolerr.New(toolerr.Unclassified, "write "+res.ECFile, err)
	}
	if !res.Record.HasTrimmed {
		logf("entry of %d characters is too short to trim, %s left unchanged", len(res.Record.Raw), res.MainFile)
		return res, tr.To(lifecycle.Done)
	}

	fmt.Fprintf(out, "Processed data: %s\n", res.Record.Cut)
	if res.Record.Stripped() {
		fmt.Fprintf(out, "Data after removing unwanted prefix: %s\n", res.Record.Trimmed)
	}
	if err := appendEntry(mainFile, res.Record.Trimmed); err != nil {
		return res, toolerr.New(toolerr.Unclassified, "write "+res.MainFile, err)
	}
	fmt.Fprintln(out, "Data has been saved, program will terminate.")

	return res, tr.To(lifecycle.Done)
}

func workDir(dir string) string {
	if dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// readChunk reads until the port returns at least one byte. It reports the
// number of empty reads that preceded the data.
func readChunk(ctx context.Context, r io.Reader, size int) ([]byte, int, error) {
	buf := make([]byte, size)
	empty := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, empty, err
		}
		n, err := r.Read(buf)
		if err != nil {
			return nil, empty, err
		}
		if n > 0 {
			return buf[:n], empty, nil
		}
		empty++
	}
}

func appendEntry(w fsutil.AppendWriter, entry string) error {
	if _, err := io.WriteString(w, entry); err != nil {
		return err
	}
	return w.Flush()
}

func closePort(port serialport.Port, out io.Writer, logf func(string, ...interface{})) {
	if port == nil || !port.IsOpen() {
		return
	}
	if err := port.Close(); err != nil {
		logf("failed to close serial port: %v", err)
		return
	}
	fmt.Fprintln(out, "Serial port closed.")
}

func closeFile(f fsutil.AppendWriter, name string, logf func(string, ...interface{})) {
	if err := f.Close(); err != nil {
		logf("failed to close %s: %v", name, err)
	}
}
