// Package simulator provides an in-memory Nextion display for tests and examples.
//
// A Display implements transport.Opener. It answers the connect handshake only
// on its endpoint and at its baud rate, accepts whmi-wris, acknowledges the
// reopen at the requested upload rate and then acknowledges payload blocks.
// Every Write to an uploading port is treated as one block.
//
// Reads never block: an empty receive queue reads as a timeout (0, nil).
package simulator

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/transport"
)

// ErrPortBusy is returned when a port is opened while a previous handle is still open.
var ErrPortBusy = errors.New("port busy")

// ErrClosed is returned by I/O on a closed port.
var ErrClosed = errors.New("port closed")

type state int

const (
	stateIdle state = iota
	stateHandshook
	stateConnected
	stateAwaitReopen
	stateUploading
	stateDone
)

// OpenCall records one Open.
type OpenCall struct {
	Endpoint string
	Speed    int
	Timeout  time.Duration
}

// Block records one payload block as received.
type Block struct {
	Offset int64
	Len    int
}

// Display is a simulated display attached to one endpoint.
type Display struct {
	// Endpoint the display is attached to ("" = every endpoint)
	Endpoint string

	// Baud is the rate the display answers the handshake at
	Baud int

	// Info is reported in the comok reply
	Info protocol.DeviceInfo

	// Reserved is the value before '-' in the address field
	Reserved int

	// SkipTo, when non-zero, is returned as NEXT_POS after the first block
	SkipTo uint32

	// Fault injection
	FailOpenAt        map[int]bool // Open fails at these speeds
	RejectSpeedSwitch bool         // no Ack after reopening at upload speed
	FirstBlockReply   []byte       // overrides the first-block reply
	NoAckAfterBlock   int          // block index (>0) left unacknowledged; 0 = ack all
	ReplyOverride     []byte       // replaces the comok reply

	// Observations
	Opens        []OpenCall
	Commands     []string
	Blocks       []Block
	UploadSize   uint32
	UploadBaud   int
	ReadTimeouts []time.Duration
	Flushes      int

	state      state
	rx         []byte
	payload    []byte
	nextOffset int64
	open       *Port
}

// NewDisplay returns a touch display with a fixed identity on endpoint at baud.
func NewDisplay(endpoint string, baud int) *Display {
	return &Display{
		Endpoint: endpoint,
		Baud:     baud,
		Reserved: 30601,
		Info: protocol.DeviceInfo{
			Touch:           true,
			Model:           "NX4024T032_011R",
			FirmwareVersion: 163,
			MCUCode:         61488,
			SerialNumber:    "DE6064B7E70C6421",
			FlashSize:       4194304,
		},
	}
}

// HandshakeReply returns the comok reply the display sends for a connect command.
func (d *Display) HandshakeReply() []byte {
	if d.ReplyOverride != nil {
		return d.ReplyOverride
	}
	touch := 0
	if d.Info.Touch {
		touch = 1
	}
	reply := fmt.Sprintf("%s %d,%d-%d,%s,%d,%d,%s,%d",
		protocol.HandshakePrefix, touch, d.Reserved, d.Info.Address, d.Info.Model,
		d.Info.FirmwareVersion, d.Info.MCUCode, d.Info.SerialNumber, d.Info.FlashSize)
	return []byte(reply + protocol.EOL)
}

// Received returns the payload bytes stored so far, indexed by offset.
func (d *Display) Received() []byte {
	return d.payload
}

// Done reports whether the display received the whole payload.
func (d *Display) Done() bool {
	return d.state == stateDone
}

// Open implements transport.Opener.
func (d *Display) Open(endpoint string, speed int, timeout time.Duration) (transport.Port, error) {
	d.Opens = append(d.Opens, OpenCall{Endpoint: endpoint, Speed: speed, Timeout: timeout})

	if d.FailOpenAt[speed] {
		return nil, fmt.Errorf("open %s: device not configured", endpoint)
	}

	if d.Endpoint != "" && endpoint != d.Endpoint {
		return &Port{speed: speed, timeout: timeout}, nil
	}

	if d.open != nil {
		return nil, ErrPortBusy
	}

	p := &Port{display: d, speed: speed, timeout: timeout}
	d.open = p
	d.ReadTimeouts = append(d.ReadTimeouts, timeout)

	if d.state == stateAwaitReopen {
		if speed == d.UploadBaud && !d.RejectSpeedSwitch {
			d.state = stateUploading
			d.nextOffset = 0
			if d.UploadSize == 0 {
				d.state = stateDone
			}
			p.queue([]byte{protocol.Ack})
		} else {
			d.state = stateIdle
		}
	}

	return p, nil
}

func (d *Display) receive(p *Port, data []byte) {
	switch d.state {
	case stateUploading:
		d.receiveBlock(p, data)
	case stateAwaitReopen, stateDone:
		// Ignored until the port is reopened.
	default:
		if p.speed != d.Baud {
			return
		}
		d.rx = append(d.rx, data...)
		for {
			i := bytes.Index(d.rx, []byte(protocol.EOL))
			if i < 0 {
				return
			}
			frame := d.rx[:i]
			d.rx = d.rx[i+len(protocol.EOL):]
			d.handleFrame(p, frame)
		}
	}
}

func (d *Display) handleFrame(p *Port, frame []byte) {
	if d.state == stateConnected && d.Info.Address != 0 {
		if len(frame) < 2 || binary.LittleEndian.Uint16(frame) != d.Info.Address {
			return
		}
		frame = frame[2:]
	} else {
		frame = bytes.TrimLeft(frame, "\xff")
	}

	cmd := string(frame)
	switch {
	case cmd == "connect":
		d.state = stateHandshook
		p.queue(d.HandshakeReply())
	case cmd == "" && d.state == stateHandshook:
		d.state = stateConnected
		p.queue(bytes.Repeat([]byte{'c'}, protocol.ConfirmationSize))
	case d.state == stateConnected && strings.HasPrefix(cmd, protocol.CmdUpload+" "):
		d.Commands = append(d.Commands, cmd)
		d.startUpload(p, strings.TrimPrefix(cmd, protocol.CmdUpload+" "))
	case d.state == stateConnected:
		d.Commands = append(d.Commands, cmd)
	default:
		p.queue([]byte{protocol.RetInvalidVariable, 0xFF, 0xFF, 0xFF})
	}
}

func (d *Display) startUpload(p *Port, args string) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		p.queue([]byte{protocol.RetInvalidParamCount, 0xFF, 0xFF, 0xFF})
		return
	}
	size, err1 := strconv.ParseUint(parts[0], 10, 32)
	baud, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || parts[2] != "1" {
		p.queue([]byte{protocol.RetInvalidInstruction, 0xFF, 0xFF, 0xFF})
		return
	}

	d.UploadSize = uint32(size)
	d.UploadBaud = baud
	d.payload = make([]byte, size)
	d.state = stateAwaitReopen
}

func (d *Display) receiveBlock(p *Port, data []byte) {
	if p.speed != d.UploadBaud {
		return
	}

	index := len(d.Blocks)
	d.Blocks = append(d.Blocks, Block{Offset: d.nextOffset, Len: len(data)})
	copy(d.payload[min(d.nextOffset, int64(len(d.payload))):], data)
	d.nextOffset += int64(len(data))

	if index == 0 {
		reply := d.FirstBlockReply
		if reply == nil {
			reply = []byte(protocol.AllAccepted)
			if d.SkipTo != 0 {
				reply = make([]byte, protocol.FirstBlockResponseSize)
				reply[0] = protocol.FirstBlockAck
				binary.LittleEndian.PutUint32(reply[1:], d.SkipTo)
				d.nextOffset = int64(d.SkipTo)
			}
		}
		p.queue(reply)
	} else if index != d.NoAckAfterBlock {
		p.queue([]byte{protocol.Ack})
	}

	if d.nextOffset >= int64(d.UploadSize) {
		d.state = stateDone
	}
}

// Port is an open handle on a Display.
type Port struct {
	display *Display
	speed   int
	timeout time.Duration
	queued  []byte
	closed  bool
	written []byte
}

// Written returns every byte written to this handle.
func (p *Port) Written() []byte {
	return p.written
}

func (p *Port) queue(b []byte) {
	p.queued = append(p.queued, b...)
}

// Read implements transport.Port.
func (p *Port) Read(b []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	n := copy(b, p.queued)
	p.queued = p.queued[n:]
	return n, nil
}

// Write implements transport.Port.
func (p *Port) Write(b []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	p.written = append(p.written, b...)
	if p.display != nil {
		p.display.receive(p, b)
	}
	return len(b), nil
}

// SetReadTimeout implements transport.Port.
func (p *Port) SetReadTimeout(t time.Duration) error {
	if p.closed {
		return ErrClosed
	}
	p.timeout = t
	if p.display != nil {
		p.display.ReadTimeouts = append(p.display.ReadTimeouts, t)
	}
	return nil
}

// ResetInputBuffer implements transport.Port.
func (p *Port) ResetInputBuffer() error {
	if p.closed {
		return ErrClosed
	}
	p.queued = nil
	if p.display != nil {
		p.display.Flushes++
	}
	return nil
}

// Close implements transport.Port.
func (p *Port) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	if p.display != nil && p.display.open == p {
		p.display.open = nil
	}
	return nil
}
