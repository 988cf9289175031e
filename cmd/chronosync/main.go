//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/luhtfiimanal/chronosync"
	"github.com/luhtfiimanal/chronosync/serial"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr, chronosync.SystemClock{}))
}

func run(args []string, stdout, stderr io.Writer, clock chronosync.Clock) int {
	name := filepath.Base(args[0])

	var (
		debug = false
		speed = serial.DefaultBaudRate
	)

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&debug, "debug", "d", debug, "trace clock samples and serial traffic to stdout")
	fs.IntVarP(&speed, "speed", "s", speed, "serial speed")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [-d] [-s serial speed] <serial device>\n", name)
	}

	if err := fs.Parse(args[1:]); err != nil {
		// pflag has already printed the usage for -h.
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			fs.Usage()
		}
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	logLevel := slog.LevelWarn
	if debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	var trace io.Writer
	if debug {
		trace = stdout
	}

	if err := syncDevice(fs.Arg(0), speed, trace, clock, logger); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

func syncDevice(device string, speed int, trace io.Writer, clock chronosync.Clock, logger *slog.Logger) error {
	port, err := serial.Open(serial.Config{
		Device:   device,
		BaudRate: speed,
		Trace:    trace,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer port.Close()

	s := &chronosync.Syncer{
		Port:   port,
		Clock:  clock,
		Trace:  trace,
		Logger: logger,
	}

	// No signal handling: an interrupt while waiting kills the process.
	if _, err := s.Run(context.Background()); err != nil {
		return errors.Wrapf(err, "sync %s", device)
	}
	return nil
}
