// Command hexplay reads hex text from a file and writes the decoded bytes to
// a serial port, then waits for Enter before exiting.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/hexlink/internal/config"
	"github.com/banshee-data/hexlink/internal/fsutil"
	"github.com/banshee-data/hexlink/internal/monitoring"
	"github.com/banshee-data/hexlink/internal/playback"
	"github.com/banshee-data/hexlink/internal/prompt"
	"github.com/banshee-data/hexlink/internal/serialport"
	"github.com/banshee-data/hexlink/internal/toolerr"
	"github.com/banshee-data/hexlink/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run(ctx, os.Stdin, os.Stdout, serialport.NewRealFactory(), fsutil.OSFileSystem{})
}

func run(ctx context.Context, in io.Reader, out io.Writer, factory serialport.Factory, fsys fsutil.FileSystem) {
	fmt.Fprintln(out, version.Banner("hexplay"))

	p := prompt.New(in, out)
	defer func() {
		if err := p.Pause("Program completed. Press any key to exit..."); err != nil {
			monitoring.Logf("final prompt: %v", err)
		}
	}()

	portName, err := p.Line("Enter the COM port name (e.g., COM3): ")
	if err != nil {
		toolerr.Report(out, err)
		return
	}
	baud, err := p.Int("Enter the baud rate (e.g., 9600): ")
	if err != nil {
		toolerr.Report(out, err)
		return
	}
	path, err := p.Path("Enter the file path containing hexadecimal data: ")
	if err != nil {
		toolerr.Report(out, err)
		return
	}

	_, err = playback.Run(ctx, playback.Options{
		PortName: portName,
		BaudRate: baud,
		FilePath: path,
		Out:      out,
		Factory:  factory,
		FS:       fsys,
		Config:   config.MustDefaults(),
	})
	if err != nil {
		toolerr.Report(out, err)
	}
}
