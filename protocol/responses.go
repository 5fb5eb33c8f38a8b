package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// ParseHandshake decodes a connect reply into DeviceInfo.
//
// Reply format:
//
//	comok <touch>,<reserved>-<address>,<model>,<fw>,<mcu>,<serial>,<flash>[0xFF][0xFF][0xFF]
//
// Every field is validated; a malformed reply or an empty model returns a *ProtocolError.
func ParseHandshake(resp []byte) (*DeviceInfo, error) {
	prefix := []byte(HandshakePrefix + " ")
	if !bytes.HasPrefix(resp, prefix) {
		return nil, handshakeError("missing comok prefix", resp)
	}

	body := resp[len(prefix):]
	for len(body) > 0 && body[len(body)-1] == EOL[0] {
		body = body[:len(body)-1]
	}
	fields := strings.Split(string(body), ",")
	if len(fields) != HandshakeFields {
		return nil, handshakeError(
			fmt.Sprintf("got %d fields, expected %d", len(fields), HandshakeFields), resp)
	}

	info := &DeviceInfo{}

	switch fields[0] {
	case "0":
		info.Touch = false
	case "1":
		info.Touch = true
	default:
		return nil, handshakeError(fmt.Sprintf("invalid touch flag %q", fields[0]), resp)
	}

	_, addr, ok := strings.Cut(fields[1], "-")
	if !ok {
		return nil, handshakeError(fmt.Sprintf("invalid address field %q", fields[1]), resp)
	}
	address, err := strconv.ParseUint(addr, 10, 16)
	if err != nil {
		return nil, handshakeError(fmt.Sprintf("invalid address %q", addr), resp)
	}
	info.Address = uint16(address)

	info.Model = fields[2]
	if info.Model == "" {
		return nil, handshakeError("empty model", resp)
	}

	if info.FirmwareVersion, err = strconv.Atoi(fields[3]); err != nil {
		return nil, handshakeError(fmt.Sprintf("invalid firmware version %q", fields[3]), resp)
	}

	if info.MCUCode, err = strconv.Atoi(fields[4]); err != nil {
		return nil, handshakeError(fmt.Sprintf("invalid MCU code %q", fields[4]), resp)
	}

	info.SerialNumber = fields[5]

	if info.FlashSize, err = strconv.ParseInt(fields[6], 10, 64); err != nil {
		return nil, handshakeError(fmt.Sprintf("invalid flash size %q", fields[6]), resp)
	}

	return info, nil
}

func handshakeError(reason string, got []byte) *ProtocolError {
	return &ProtocolError{
		Operation: "handshake",
		Reason:    reason,
		Got:       got,
	}
}

// ParseFirstBlockResponse decodes the reply to the first payload block.
//
// Data format (FirstBlockResponseSize bytes):
//
//	[0x08][NEXT_POS(4), little-endian]
//
// A reply equal to AllAccepted means the upload continues sequentially.
// Any other NEXT_POS asks the sender to seek forward to that offset.
func ParseFirstBlockResponse(resp []byte) (FirstBlockResult, error) {
	if len(resp) != FirstBlockResponseSize || resp[0] != FirstBlockAck {
		return FirstBlockResult{}, &ProtocolError{
			Operation: "first block",
			Reason:    "first block acknowledge not received",
			Expected:  []byte{FirstBlockAck, 0x00, 0x00, 0x00, 0x00},
			Got:       resp,
		}
	}

	if string(resp) == AllAccepted {
		return FirstBlockResult{}, nil
	}

	return FirstBlockResult{
		Skip:    true,
		NextPos: binary.LittleEndian.Uint32(resp[1:]),
	}, nil
}
