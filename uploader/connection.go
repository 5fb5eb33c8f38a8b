package uploader

import (
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/transport"
)

// Connection is the state established by a successful handshake.
// It exclusively owns the open port until Close.
type Connection struct {
	// Endpoint is the port the display answered on
	Endpoint string

	// ConnectSpeed is the baud rate the handshake succeeded at
	ConnectSpeed int

	// UploadSpeed is the baud rate for the block transfer (defaults to ConnectSpeed)
	UploadSpeed int

	// Device is the identity reported by the display
	Device protocol.DeviceInfo

	opener    transport.Opener
	port      transport.Port
	speed     int
	connected bool
}

// Connected reports whether the handshake succeeded and the port is still open.
func (c *Connection) Connected() bool {
	return c != nil && c.connected && c.port != nil
}

// Speed returns the baud rate the port is currently open at.
func (c *Connection) Speed() int {
	return c.speed
}

// SendCommand writes a text command, prefixed with the device address when it is non-zero.
//
// Example:
//
//	err := conn.SendCommand("dims", 50)     // "dims 50"
//	err := conn.SendCommand("page 0")
func (c *Connection) SendCommand(name string, args ...int) error {
	if !c.Connected() {
		return ErrNotConnected
	}
	return c.write("write command", protocol.BuildCommand(c.Device.Address, name, args...))
}

// Close closes the port. The connection cannot be used afterwards.
func (c *Connection) Close() error {
	c.connected = false
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}

func (c *Connection) write(op string, data []byte) error {
	n, err := c.port.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return c.transportError(op, err)
	}
	return nil
}

// reopen closes the port and opens it again at speed.
// A live port is never reconfigured in place.
func (c *Connection) reopen(speed int, timeout time.Duration) error {
	if c.port != nil {
		_ = c.port.Close()
		c.port = nil
	}

	port, err := c.opener.Open(c.Endpoint, speed, timeout)
	if err != nil {
		c.connected = false
		return &TransportError{
			Op:       "reopen",
			Endpoint: c.Endpoint,
			Speed:    speed,
			Err:      fmt.Errorf("cannot reopen port at upload baud rate: %w", err),
		}
	}

	c.port = port
	c.speed = speed
	return nil
}

func (c *Connection) setReadTimeout(timeout time.Duration) error {
	if err := c.port.SetReadTimeout(timeout); err != nil {
		return c.transportError("set read timeout", err)
	}
	return nil
}

func (c *Connection) transportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Endpoint: c.Endpoint, Speed: c.speed, Err: err}
}
