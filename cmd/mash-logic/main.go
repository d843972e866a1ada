// Command mash-logic runs an automation plant: a set of devices wired
// together by the connections of a YAML configuration file.
//
// Usage:
//
//	mash-logic -config plant.yaml [flags]
//
// Flags:
//
//	-config string      Configuration file path (required)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-log-format string  Log format: text, json (default "text")
//	-trace-log          Also log every exchange trace event at debug level
//	-interactive        Start the interactive console
//	-check              Validate the configuration, build the plant and exit
//	-version            Print the configuration format version and exit
//
// Examples:
//
//	# Run a plant
//	mash-logic -config /etc/mash/plant.yaml
//
//	# Poke at a simulated plant by hand
//	mash-logic -config configs/stairwell.yaml -interactive
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mash-protocol/mash-logic/cmd/mash-logic/interactive"
	"github.com/mash-protocol/mash-logic/pkg/config"
	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/log"
	"github.com/mash-protocol/mash-logic/pkg/runtime"
	"github.com/mash-protocol/mash-logic/pkg/version"
)

// Flags holds the command-line settings.
type Flags struct {
	ConfigFile  string
	LogLevel    string
	LogFormat   string
	TraceLog    bool
	Interactive bool
	Check       bool
	Version     bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path (required)")
	flag.StringVar(&flags.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.LogFormat, "log-format", "text", "Log format: text, json")
	flag.BoolVar(&flags.TraceLog, "trace-log", false, "Also log every exchange trace event at debug level")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Start the interactive console")
	flag.BoolVar(&flags.Check, "check", false, "Validate the configuration, build the plant and exit")
	flag.BoolVar(&flags.Version, "version", false, "Print the configuration format version and exit")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if flags.Version {
		fmt.Printf("mash-logic (config format %s)\n", version.Current)
		return 0
	}
	if flags.ConfigFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	var console *interactive.Console
	var logOut io.Writer = os.Stderr
	if flags.Interactive {
		history := ""
		if cfg.Runtime.DataDir != "" {
			history = filepath.Join(cfg.Runtime.DataDir, ".mash-logic_history")
		}
		console, err = interactive.NewReadline(history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		logOut = console.Stdout()
	}

	logger, err := newLogger(logOut, flags.LogLevel, flags.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	opts := runtime.Options{Logger: logger}
	if flags.TraceLog {
		opts.Tracer = log.NewSlogAdapter(logger.With("component", "trace"))
	}

	rt, err := runtime.Build(cfg, opts)
	if err != nil {
		logger.Error("building plant failed", "error", err)
		return 1
	}
	if flags.Check {
		fmt.Printf("%s: %d devices, %d connections\n", flags.ConfigFile, rt.Set().Len(), rt.Running().Len())
		if err := rt.Close(); err != nil {
			logger.Error("releasing plant failed", "error", err)
			return 1
		}
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if console != nil {
		console.Attach(rt)
		go console.Run(ctx, cancel)
	}

	err = rt.Run(ctx)
	var shutdownErr *device.ShutdownError
	switch {
	case errors.As(err, &shutdownErr):
		logger.Error("devices did not stop in time", "pending", shutdownErr.Pending)
		return 1
	case err != nil:
		logger.Error("plant failed", "error", err)
		return 1
	}
	logger.Info("stopped")
	return 0
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (must be text or json)", format)
	}
}
