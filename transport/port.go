package transport

import (
	"bytes"
	"io"
	"time"
)

// Port is an open, timeout-bounded duplex byte channel.
// go.bug.st/serial.Port satisfies it.
type Port interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds every subsequent Read. A Read that times out
	// returns 0 bytes and a nil error.
	SetReadTimeout(t time.Duration) error

	// ResetInputBuffer discards any unread input.
	ResetInputBuffer() error
}

// Opener opens an endpoint at a baud rate with an initial read timeout.
type Opener interface {
	Open(endpoint string, speed int, timeout time.Duration) (Port, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(endpoint string, speed int, timeout time.Duration) (Port, error)

// Open calls f.
func (f OpenerFunc) Open(endpoint string, speed int, timeout time.Duration) (Port, error) {
	return f(endpoint, speed, timeout)
}

// Status tags the outcome of a bounded read.
type Status int

const (
	// StatusComplete means the read got what it was waiting for
	StatusComplete Status = iota

	// StatusShort means the read timed out first
	StatusShort
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusShort:
		return "short"
	default:
		return "unknown"
	}
}

// Result is the data collected by a bounded read and whether it completed.
type Result struct {
	Data   []byte
	Status Status
}

// Complete reports whether the read got the expected bytes.
func (r Result) Complete() bool {
	return r.Status == StatusComplete
}

// ReadFull reads exactly n bytes unless a read times out first.
// A timeout yields StatusShort with the bytes gathered so far.
func ReadFull(p Port, n int) (Result, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		m, err := p.Read(buf[got:])
		got += m
		if err != nil {
			return Result{Data: buf[:got], Status: StatusShort}, err
		}
		if m == 0 {
			return Result{Data: buf[:got], Status: StatusShort}, nil
		}
	}
	return Result{Data: buf, Status: StatusComplete}, nil
}

// ReadUntil reads one byte at a time until the data ends with delim.
// It stops with StatusShort when a read times out or limit bytes were read
// without seeing delim. Bytes before delim are returned as well.
func ReadUntil(p Port, delim []byte, limit int) (Result, error) {
	var data []byte
	var b [1]byte
	for len(data) < limit {
		m, err := p.Read(b[:])
		if m > 0 {
			data = append(data, b[0])
		}
		if err != nil {
			return Result{Data: data, Status: StatusShort}, err
		}
		if m == 0 {
			break
		}
		if len(delim) > 0 && bytes.HasSuffix(data, delim) {
			return Result{Data: data, Status: StatusComplete}, nil
		}
	}
	return Result{Data: data, Status: StatusShort}, nil
}
