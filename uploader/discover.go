package uploader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/transport"
)

// maxReplyFrames bounds the number of frames collected for one handshake reply.
const maxReplyFrames = 8

// Discover scans endpoints at every candidate baud rate until a display
// answers the connect handshake:
//  1. Order the baud rates, preferred connect speed first
//  2. For each endpoint and rate, open the port with a rate-dependent timeout
//  3. Flush stale input and send the wake sequence
//  4. Collect the reply and check for the comok prefix
//  5. Acknowledge, drain the confirmation and decode the device fields
//
// Open failures and missing replies move on to the next rate. A comok reply
// with malformed fields aborts the scan with a *protocol.ProtocolError.
// When every combination fails, a *DiscoveryExhaustedError is returned.
//
// The returned Connection owns the open port; Close it when done.
//
// Example:
//
//	ports, _ := transport.PortNames()
//	conn, err := up.Discover(ctx, ports)
//	if errors.Is(err, uploader.ErrDeviceNotFound) {
//	    log.Fatal("no display found")
//	}
//	defer conn.Close()
func (u *Uploader) Discover(ctx context.Context, endpoints []string) (*Connection, error) {
	if len(endpoints) == 0 {
		return nil, &ConfigurationError{Field: "endpoints", Reason: "no candidate endpoints"}
	}

	speeds := protocol.SpeedOrder(u.config.ConnectSpeed)
	attempts := 0

	for _, endpoint := range endpoints {
		u.logInfo("scanning port", "port", endpoint)

		for _, speed := range speeds {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("cancelled: %w", err)
			}

			attempts++
			conn, err := u.handshake(endpoint, speed)
			u.reportScan(ScanAttempt{Endpoint: endpoint, Speed: speed, Err: err})

			if err == nil {
				u.logInfo("connected",
					"port", endpoint,
					"baud", speed,
					"model", conn.Device.Model,
					"firmware", conn.Device.FirmwareVersion,
					"mcu", conn.Device.MCUCode,
					"serial", conn.Device.SerialNumber,
					"flash_size", conn.Device.FlashSize,
					"touch", conn.Device.Touch,
					"address", conn.Device.Address,
				)
				return conn, nil
			}

			if protocol.IsProtocolError(err) {
				u.logError("invalid handshake reply", "port", endpoint, "baud", speed, "error", err)
				return nil, fmt.Errorf("discover %s at %d baud: %w", endpoint, speed, err)
			}

			u.logDebug("no display", "port", endpoint, "baud", speed, "error", err)
		}
	}

	return nil, &DiscoveryExhaustedError{
		Endpoints: endpoints,
		Speeds:    speeds,
		Attempts:  attempts,
	}
}

// handshake performs one connect attempt. On success the port stays open
// and is owned by the returned Connection; otherwise it is closed.
func (u *Uploader) handshake(endpoint string, speed int) (*Connection, error) {
	port, err := u.opener.Open(endpoint, speed, protocol.HandshakeTimeout(speed))
	if err != nil {
		return nil, &TransportError{Op: "open", Endpoint: endpoint, Speed: speed, Err: err}
	}

	conn := &Connection{
		Endpoint:     endpoint,
		ConnectSpeed: speed,
		opener:       u.opener,
		port:         port,
		speed:        speed,
	}
	ok := false
	defer func() {
		if !ok {
			_ = conn.Close()
		}
	}()

	if err := port.ResetInputBuffer(); err != nil {
		return nil, conn.transportError("flush input", err)
	}

	if err := conn.write("write wake sequence", []byte(protocol.WakeSequence)); err != nil {
		return nil, err
	}

	reply, err := readReply(port)
	if err != nil {
		return nil, conn.transportError("read handshake", err)
	}

	if !bytes.HasPrefix(reply, []byte(protocol.HandshakePrefix)) {
		return nil, fmt.Errorf("%w: got [% X]", ErrNoReply, reply)
	}

	if err := conn.write("acknowledge handshake", []byte(protocol.EOL)); err != nil {
		return nil, err
	}

	// The confirmation carries nothing we need; a short drain is fine.
	if _, err := transport.ReadFull(port, protocol.ConfirmationSize); err != nil {
		return nil, conn.transportError("drain confirmation", err)
	}

	info, err := protocol.ParseHandshake(reply)
	if err != nil {
		return nil, err
	}

	conn.Device = *info
	conn.UploadSpeed = u.config.UploadSpeed
	if conn.UploadSpeed == 0 {
		conn.UploadSpeed = conn.ConnectSpeed
	}
	conn.connected = true
	ok = true

	return conn, nil
}

// readReply collects EOL-terminated frames and returns the last one received.
// The display answers the attention string with an error code before the
// connect reply, so only the last frame matters. An empty read (one full
// read timeout without data) marks the end of the burst; a successful scan
// therefore always waits one timeout after the reply.
func readReply(port transport.Port) ([]byte, error) {
	var last []byte
	for i := 0; i < maxReplyFrames; i++ {
		res, err := transport.ReadUntil(port, []byte(protocol.EOL), protocol.MaxReplySize)
		if err != nil {
			return nil, err
		}
		if len(res.Data) == 0 {
			break
		}
		last = res.Data
		if !res.Complete() {
			break
		}
	}
	return last, nil
}

// OrderEndpoints returns available with preferred moved to the front.
// An empty preferred leaves the order unchanged; a preferred endpoint that
// is not available is a *ConfigurationError.
func OrderEndpoints(available []string, preferred string) ([]string, error) {
	ordered := make([]string, 0, len(available))
	if preferred == "" {
		return append(ordered, available...), nil
	}

	found := false
	ordered = append(ordered, preferred)
	for _, ep := range available {
		if ep == preferred {
			found = true
			continue
		}
		ordered = append(ordered, ep)
	}

	if !found {
		return nil, &ConfigurationError{
			Field:  "port",
			Value:  preferred,
			Reason: fmt.Sprintf("not among the available ports %v", available),
		}
	}
	return ordered, nil
}
