// Command hexcap waits for one chunk of data on a serial port and appends it
// as hex text to <output file> and EC_<output file> in the working directory.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/hexlink/internal/capture"
	"github.com/banshee-data/hexlink/internal/config"
	"github.com/banshee-data/hexlink/internal/fsutil"
	"github.com/banshee-data/hexlink/internal/monitoring"
	"github.com/banshee-data/hexlink/internal/prompt"
	"github.com/banshee-data/hexlink/internal/serialport"
	"github.com/banshee-data/hexlink/internal/toolerr"
	"github.com/banshee-data/hexlink/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wd, err := os.Getwd()
	if err != nil {
		log.Printf("working directory: %v", err)
	}
	run(ctx, os.Stdin, os.Stdout, wd, serialport.NewRealFactory(), fsutil.OSFileSystem{})
}

// run prompts for the port, baud rate and output file, performs one capture
// into workDir and reports the outcome on out. Errors are reported, never
// returned, so the process always exits normally.
func run(ctx context.Context, in io.Reader, out io.Writer, workDir string, factory serialport.Factory, fsys fsutil.FileSystem) {
	fmt.Fprintln(out, version.Banner("hexcap"))

	p := prompt.New(in, out)
	portName, err := p.Line("Please enter the COM port name (e.g., COM3): ")
	if err != nil {
		toolerr.Report(out, err)
		return
	}
	baud, err := p.Int("Please enter the baud rate (e.g., 9600): ")
	if err != nil {
		toolerr.Report(out, err)
		return
	}
	outputFile, err := p.Line("Please enter the name of the file to save data (e.g., data.txt): ")
	if err != nil {
		toolerr.Report(out, err)
		return
	}

	cfg := config.MustDefaults()
	runID := monitoring.NewRunID()
	monitoring.RunLogger(runID)("capture from %s at %d baud into %s", portName, baud, outputFile)

	res, err := capture.Run(ctx, capture.Options{
		PortName:   portName,
		BaudRate:   baud,
		OutputFile: outputFile,
		WorkDir:    workDir,
		Out:        out,
		Factory:    factory,
		FS:         fsys,
		Config:     cfg,
		RunID:      runID,
	})
	if err != nil {
		toolerr.Report(out, err)
		return
	}
	if !res.Record.HasTrimmed {
		monitoring.Logf("run %s: %d byte chunk only saved to %s", runID, res.ChunkSize, res.ECFile)
	}
}
