package protocol

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

// BuildCommand constructs a text command frame.
//
// Frame structure:
//
//	[ADDR_L][ADDR_H]<name> <arg1>,<arg2>,...[0xFF][0xFF][0xFF]
//
// The two address bytes are only present when address is non-zero.
// Arguments are rendered as decimal integers.
func BuildCommand(address uint16, name string, args ...int) []byte {
	var sb strings.Builder
	sb.WriteString(name)
	if len(args) > 0 {
		sb.WriteByte(' ')
		for i, arg := range args {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(arg))
		}
	}
	sb.WriteString(EOL)

	frame := make([]byte, 0, 2+sb.Len())
	if address != 0 {
		frame = binary.LittleEndian.AppendUint16(frame, address)
	}
	return append(frame, sb.String()...)
}

// BuildUploadCommand constructs the whmi-wris command that starts an upload
// of size bytes at the given baud rate.
func BuildUploadCommand(address uint16, size uint32, speed int) []byte {
	return BuildCommand(address, CmdUpload, int(size), speed, 1)
}

// SpeedOrder returns the discovery baud rates with preferred moved to the front.
// A preferred rate missing from the defaults is inserted. The relative order
// of the other rates is preserved. preferred <= 0 returns the defaults.
func SpeedOrder(preferred int) []int {
	defaults := DefaultSpeeds()
	if preferred <= 0 {
		return defaults
	}

	speeds := make([]int, 0, len(defaults)+1)
	speeds = append(speeds, preferred)
	for _, s := range defaults {
		if s != preferred {
			speeds = append(speeds, s)
		}
	}
	return speeds
}

// HandshakeTimeout returns the read timeout used while scanning at speed.
// Slow rates need proportionally longer for the same reply: 1000/speed
// seconds plus a fixed 30ms margin.
func HandshakeTimeout(speed int) time.Duration {
	if speed <= 0 {
		return FirstBlockTimeout
	}
	return time.Duration(int64(time.Second)*1000/int64(speed)) + 30*time.Millisecond
}
