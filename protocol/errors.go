package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ProtocolError represents an unexpected reply from the device.
// It carries the bytes that were expected and the bytes actually received.
type ProtocolError struct {
	// Operation is the exchange that failed
	Operation string

	// Reason describes what was wrong with the reply
	Reason string

	// Expected is the byte pattern the exchange was waiting for (optional)
	Expected []byte

	// Got is what the device actually sent
	Got []byte
}

func (e *ProtocolError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s failed: %s", e.Operation, e.Reason)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&sb, ": expected [% X], got [% X]", e.Expected, e.Got)
	} else {
		fmt.Fprintf(&sb, ": got [% X]", e.Got)
	}
	if code, ok := ReturnCode(e.Got); ok {
		fmt.Fprintf(&sb, " (device returned %s)", getReturnCodeName(code))
	}
	return sb.String()
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// ReturnCode extracts the device return code from a [CODE][0xFF][0xFF][0xFF] reply.
func ReturnCode(reply []byte) (byte, bool) {
	if len(reply) != 1+len(EOL) || string(reply[1:]) != EOL {
		return 0, false
	}
	return reply[0], true
}

// getReturnCodeName returns a human-readable name for a device return code.
func getReturnCodeName(code byte) string {
	switch code {
	case RetInvalidInstruction:
		return "invalid instruction (0x00)"
	case RetSuccess:
		return "success (0x01)"
	case RetInvalidComponent:
		return "invalid component ID (0x02)"
	case RetInvalidPage:
		return "invalid page ID (0x03)"
	case RetInvalidPicture:
		return "invalid picture ID (0x04)"
	case RetInvalidFont:
		return "invalid font ID (0x05)"
	case RetInvalidFileOp:
		return "invalid file operation (0x06)"
	case RetInvalidCRC:
		return "invalid CRC (0x09)"
	case RetInvalidBaudRate:
		return "invalid baud rate setting (0x11)"
	case RetInvalidWaveform:
		return "invalid waveform ID or channel (0x12)"
	case RetInvalidVariable:
		return "invalid variable name or attribute (0x1A)"
	case RetInvalidVariableOp:
		return "invalid variable operation (0x1B)"
	case RetAssignmentFailed:
		return "assignment failed (0x1C)"
	case RetEEPROMFailed:
		return "EEPROM operation failed (0x1D)"
	case RetInvalidParamCount:
		return "invalid quantity of parameters (0x1E)"
	case RetIOFailed:
		return "IO operation failed (0x1F)"
	case RetInvalidEscape:
		return "invalid escape character (0x20)"
	case RetVariableNameTooLong:
		return "variable name too long (0x23)"
	case RetBufferOverflow:
		return "serial buffer overflow (0x24)"
	default:
		return fmt.Sprintf("unknown return code 0x%02X", code)
	}
}
