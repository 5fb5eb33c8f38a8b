package uploader

import "github.com/moffa90/go-nexus/transport"

// Uploader discovers Nextion displays and uploads TFT files to them.
// Operations are strictly sequential; an Uploader must not be used by
// several goroutines at once.
type Uploader struct {
	opener transport.Opener
	config Config
}

// New creates a new Uploader that opens ports through opener.
//
// Example:
//
//	up := uploader.New(transport.SerialOpener{},
//	    uploader.WithUploadSpeed(921600),
//	    uploader.WithProgressCallback(progressFunc),
//	)
func New(opener transport.Opener, opts ...Option) *Uploader {
	if opener == nil {
		panic("opener cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Uploader{
		opener: opener,
		config: cfg,
	}
}

// reportProgress calls the progress callback if configured.
func (u *Uploader) reportProgress(progress Progress) {
	if u.config.ProgressCallback != nil {
		u.config.ProgressCallback(progress)
	}
}

// reportScan calls the scan callback if configured.
func (u *Uploader) reportScan(attempt ScanAttempt) {
	if u.config.ScanCallback != nil {
		u.config.ScanCallback(attempt)
	}
}

// reportSkip calls the skip callback if configured.
func (u *Uploader) reportSkip(skip Skip) {
	if u.config.SkipCallback != nil {
		u.config.SkipCallback(skip)
	}
}

// logDebug logs a debug message if a logger is configured.
func (u *Uploader) logDebug(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (u *Uploader) logInfo(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (u *Uploader) logError(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Error(msg, keysAndValues...)
	}
}
