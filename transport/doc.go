// Package transport defines the byte channel used to talk to a display.
//
// The uploader only needs an ordered, timeout-bounded duplex channel that can
// be opened at a given baud rate. Port and Opener capture exactly that, so
// the protocol logic can run against a real serial port or an in-memory fake.
//
// # Reads
//
// A Port read that times out returns 0 bytes and a nil error. ReadFull and
// ReadUntil turn that convention into an explicit Result, so callers never
// mistake a timeout for success:
//
//	res, err := transport.ReadUntil(port, []byte{protocol.Ack}, 64)
//	if err != nil {
//	    return err // the channel itself failed
//	}
//	if !res.Complete() {
//	    // timed out before the acknowledgment arrived
//	}
//
// # Serial Ports
//
// SerialOpener opens ports with go.bug.st/serial. ListPorts reports the
// available ports with USB metadata when the platform provides it.
package transport
