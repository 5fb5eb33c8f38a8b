package uploader

import (
	"time"

	"github.com/moffa90/go-nexus/protocol"
)

// Config holds the uploader configuration.
type Config struct {
	// ProgressCallback is called when the upload percentage changes (optional)
	ProgressCallback ProgressCallback

	// ScanCallback is called after every discovery attempt (optional)
	ScanCallback ScanCallback

	// SkipCallback is called when the display skips resources it already has (optional)
	SkipCallback SkipCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ConnectSpeed is tried first during discovery (0 = scan defaults only)
	ConnectSpeed int

	// UploadSpeed is the baud rate for the block transfer (0 = connect speed)
	UploadSpeed int

	// UploadTimeout is the read timeout at upload speed
	UploadTimeout time.Duration

	// FirstBlockTimeout is the read timeout for the first-block response
	FirstBlockTimeout time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		UploadTimeout:     protocol.UploadTimeout,
		FirstBlockTimeout: protocol.FirstBlockTimeout,
	}
}

// Option is a functional option for configuring the Uploader.
type Option func(*Config)

// WithProgressCallback sets a callback function to track upload progress.
//
// Example:
//
//	up := uploader.New(opener,
//	    uploader.WithProgressCallback(func(p uploader.Progress) {
//	        fmt.Printf("%d%%\r", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithScanCallback sets a callback reporting each endpoint/speed tried by Discover.
func WithScanCallback(callback ScanCallback) Option {
	return func(c *Config) {
		c.ScanCallback = callback
	}
}

// WithSkipCallback sets a callback reporting device-requested forward seeks.
func WithSkipCallback(callback SkipCallback) Option {
	return func(c *Config) {
		c.SkipCallback = callback
	}
}

// WithLogger sets a logger for the uploader operations.
//
// Example:
//
//	up := uploader.New(opener, uploader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithConnectSpeed sets the baud rate tried first during discovery.
// Rates outside the default list are tried as well.
//
// Example:
//
//	up := uploader.New(opener, uploader.WithConnectSpeed(115200))
func WithConnectSpeed(speed int) Option {
	return func(c *Config) {
		if speed > 0 {
			c.ConnectSpeed = speed
		}
	}
}

// WithUploadSpeed sets the baud rate used for the block transfer.
// By default the upload runs at the speed discovery connected at, which can be slow.
//
// Example:
//
//	up := uploader.New(opener, uploader.WithUploadSpeed(921600))
func WithUploadSpeed(speed int) Option {
	return func(c *Config) {
		if speed > 0 {
			c.UploadSpeed = speed
		}
	}
}

// WithUploadTimeout sets the read timeout used at upload speed.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.UploadTimeout = timeout
		}
	}
}

// WithFirstBlockTimeout sets the read timeout for the first-block response.
func WithFirstBlockTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.FirstBlockTimeout = timeout
		}
	}
}
