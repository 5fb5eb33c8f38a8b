package uploader

import "time"

// Progress contains information about the upload progress.
// Passed to ProgressCallback only when Percentage changes.
type Progress struct {
	// Percentage is 100*BytesSent/TotalBytes, rounded down (0 to 100)
	Percentage int

	// BytesSent is the payload offset reached so far, skipped bytes included
	BytesSent int64

	// TotalBytes is the payload size from the file header
	TotalBytes int64

	// BlocksSent is the number of blocks written so far
	BlocksSent int

	// RemainingBlocks is the number of blocks still to send
	RemainingBlocks int64

	// ElapsedTime is the time elapsed since the upload started
	ElapsedTime time.Duration
}

// ProgressCallback is called during the upload to report progress.
// Implementations should return quickly to avoid stalling the transfer.
//
// Example:
//
//	up := uploader.New(opener,
//	    uploader.WithProgressCallback(func(p uploader.Progress) {
//	        fmt.Printf("%d%% (%d/%d bytes)\r", p.Percentage, p.BytesSent, p.TotalBytes)
//	    }),
//	)
type ProgressCallback func(Progress)

// ScanAttempt describes one endpoint/speed combination tried by Discover.
type ScanAttempt struct {
	Endpoint string
	Speed    int

	// Err is nil for the attempt that found the display
	Err error
}

// ScanCallback is called after every discovery attempt.
type ScanCallback func(ScanAttempt)

// Skip describes a forward seek requested by the display after the first block.
type Skip struct {
	// From is the payload offset after the first block
	From int64

	// To is the offset the upload resumes from
	To int64

	// RemainingBlocks is the recomputed number of blocks to send
	RemainingBlocks int64
}

// SkipCallback is called when the display skips resources it already holds.
type SkipCallback func(Skip)

// Logger is an optional logging interface that can be provided to the uploader.
// This allows integration with any logging framework.
//
// Example with zap:
//
//	type ZapLogger struct{ s *zap.SugaredLogger }
//	func (l ZapLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
//	func (l ZapLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
//	func (l ZapLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
//
//	up := uploader.New(opener, uploader.WithLogger(ZapLogger{s: logger.Sugar()}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
