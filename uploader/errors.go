package uploader

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation needs a successful handshake first.
	ErrNotConnected = errors.New("not connected to a display")

	// ErrDeviceNotFound matches a *DiscoveryExhaustedError via errors.Is.
	ErrDeviceNotFound = errors.New("no display found")

	// ErrNoReply marks a discovery attempt that got no comok reply.
	ErrNoReply = errors.New("no handshake reply")
)

// ConfigurationError indicates invalid caller input detected before any I/O.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// DiscoveryExhaustedError indicates that no endpoint/speed combination answered the handshake.
type DiscoveryExhaustedError struct {
	Endpoints []string
	Speeds    []int
	Attempts  int
}

func (e *DiscoveryExhaustedError) Error() string {
	return fmt.Sprintf("no display found on %v after %d attempts at %d baud rates; check wiring and power",
		e.Endpoints, e.Attempts, len(e.Speeds))
}

// Is reports whether target is ErrDeviceNotFound.
func (e *DiscoveryExhaustedError) Is(target error) bool {
	return target == ErrDeviceNotFound
}

// TransportError indicates that the channel itself failed (open, read or write).
type TransportError struct {
	Op       string
	Endpoint string
	Speed    int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s at %d baud: %v", e.Op, e.Endpoint, e.Speed, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
