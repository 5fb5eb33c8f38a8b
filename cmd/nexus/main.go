// Command nexus uploads TFT files to Nextion displays using upload protocol v1.2.
//
// Usage:
//
//	nexus -l
//	nexus -i display.tft [-p /dev/ttyUSB0] [-c 115200] [-u 921600]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/moffa90/go-nexus/tft"
	"github.com/moffa90/go-nexus/transport"
	"github.com/moffa90/go-nexus/uploader"
)

var (
	list        = kingpin.Flag("list", "List all available serial ports.").Short('l').Bool()
	input       = kingpin.Flag("input", "Path to the TFT file.").Short('i').PlaceHolder("TFT_FILE").String()
	port        = kingpin.Flag("port", "Serial port to try first. By default every port is scanned.").Short('p').PlaceHolder("PORT").String()
	connectBaud = kingpin.Flag("connect", "Baud rate to try first when connecting. The default rates are tried afterwards.").Short('c').PlaceHolder("BAUDRATE").Int()
	uploadBaud  = kingpin.Flag("upload", "Baud rate for the upload. Defaults to the rate the connection was made at (can be slow).").Short('u').PlaceHolder("BAUDRATE").Int()
	configPath  = kingpin.Flag("config", "Optional TOML configuration file.").ExistingFile()
	logLevel    = kingpin.Flag("log-level", "Log level (debug, info, warn, error).").String()
)

func main() {
	os.Exit(realMain())
}

// realMain runs the command and returns the process exit code, so deferred
// cleanup runs before the process exits.
func realMain() int {
	kingpin.CommandLine.Help = "Upload TFT files to Nextion displays using the faster upload protocol v1.2."
	kingpin.Parse()

	if *list == (*input != "") {
		kingpin.Fatalf("exactly one of --list or --input is required")
	}

	if *list {
		if err := printPorts(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	cfg := defaultSettings()
	if *configPath != "" {
		var err error
		if cfg, err = loadSettings(*configPath); err != nil {
			kingpin.Fatalf("%v", err)
		}
	}
	cfg.override(*port, *connectBaud, *uploadBaud, *logLevel)
	if err := cfg.validate(); err != nil {
		kingpin.Fatalf("%v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		kingpin.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	available, err := transport.PortNames()
	if err != nil {
		return report(logger, os.Stderr, fmt.Errorf("list serial ports: %w", err))
	}

	return report(logger, os.Stderr,
		run(ctx, cfg, *input, transport.SerialOpener{}, available, logger, os.Stdout))
}

// report logs a failed run and returns the matching exit code.
func report(logger *zap.Logger, stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	logger.Error("upload failed", zap.Error(err))
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

// printPorts writes the available serial ports, one per line.
func printPorts(w io.Writer) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "List of available serial ports:")
	if len(ports) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range ports {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}

// run discovers a display among available and uploads the file at path to it.
func run(ctx context.Context, cfg settings, path string, opener transport.Opener, available []string, logger *zap.Logger, out io.Writer) error {
	file, err := tft.Open(path)
	if err != nil {
		return &uploader.ConfigurationError{Field: "input", Value: path, Reason: err.Error()}
	}
	defer file.Close()

	endpoints, err := candidatePorts(available, cfg.Port)
	if err != nil {
		return err
	}

	logger.Info("uploading",
		zap.String("file", file.Path()),
		zap.Uint32("size", file.PayloadSize()),
		zap.Strings("ports", endpoints),
	)

	bar := progressbar.NewOptions64(int64(file.PayloadSize()),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out, "\nUpload completed successfully!") }),
	)

	up := uploader.New(opener,
		uploader.WithLogger(zapLogger{s: logger.Sugar()}),
		uploader.WithConnectSpeed(cfg.ConnectBaud),
		uploader.WithUploadSpeed(cfg.UploadBaud),
		uploader.WithFirstBlockTimeout(cfg.FirstBlockTimeout),
		uploader.WithUploadTimeout(cfg.UploadTimeout),
		uploader.WithScanCallback(func(a uploader.ScanAttempt) {
			status := "Success."
			if a.Err != nil {
				status = "Failed."
			}
			fmt.Fprintf(out, "Scanning %s at %d baud... %s\n", a.Endpoint, a.Speed, status)
		}),
		uploader.WithSkipCallback(func(s uploader.Skip) {
			fmt.Fprintf(out, "Skipped resources: resuming at offset %d, %d blocks left.\n", s.To, s.RemainingBlocks)
		}),
		uploader.WithProgressCallback(func(p uploader.Progress) {
			_ = bar.Set64(p.BytesSent)
		}),
	)

	conn, err := up.Discover(ctx, endpoints)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Fprintf(out, "Connected to %s (%s, firmware %d, flash %d bytes) on %s at %d baud.\n",
		conn.Device.Model, touchLabel(conn.Device.Touch), conn.Device.FirmwareVersion,
		conn.Device.FlashSize, conn.Endpoint, conn.ConnectSpeed)
	fmt.Fprintf(out, "Initiating upload at %d baud...\n", conn.UploadSpeed)

	if err := up.Upload(ctx, conn, file); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("upload interrupted: %w", err)
		}
		return err
	}
	return bar.Finish()
}

// candidatePorts returns every available port, preferred first.
func candidatePorts(available []string, preferred string) ([]string, error) {
	if len(available) == 0 {
		return nil, &uploader.ConfigurationError{Field: "port", Value: preferred, Reason: "no serial ports available"}
	}
	return uploader.OrderEndpoints(available, strings.TrimSpace(preferred))
}

func touchLabel(touch bool) string {
	if touch {
		return "touch"
	}
	return "no touch"
}
