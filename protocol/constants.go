package protocol

import "time"

// ProtocolVersion is the Nextion upload protocol version implemented by this library.
const ProtocolVersion = "1.2"

// Framing constants.
const (
	// EOL terminates every command and every device reply (0xFF 0xFF 0xFF)
	EOL = "\xff\xff\xff"

	// Ack is the single-byte acknowledgment sent by the device (0x05)
	Ack = 0x05

	// FirstBlockAck is the leading byte of the first-block response (0x08)
	FirstBlockAck = 0x08

	// AllAccepted is the first-block response meaning "no resources skipped"
	AllAccepted = "\x08\x00\x00\x00\x00"

	// HandshakePrefix starts every successful connect reply
	HandshakePrefix = "comok"
)

// WakeSequence is written after opening a port to wake the display and request
// its identity. The attention string is deliberately invalid so that any
// half-received command in the device buffer gets terminated; the stray 0xFF
// bytes before the second connect are intentional as well.
const WakeSequence = "DRAKJHSUYDGBNCJHGJKSHBDN" + EOL +
	"connect" + EOL +
	"\xff\xff" + "connect" + EOL

// Command names used by the upload sequence.
const (
	// CmdUpload starts a v1.2 upload: whmi-wris <size>,<baud>,1
	CmdUpload = "whmi-wris"

	// CmdBacklightSleep, CmdDim and CmdSleep are the warm-up commands sent
	// before the upload. The device drops the first command after connect.
	CmdBacklightSleep = "bs=42"
	CmdDim            = "dims=100"
	CmdSleep          = "sleep=0"
)

// Sizes of the fixed-length parts of the exchange.
const (
	// ConfirmationSize is the number of bytes drained after acknowledging the handshake
	ConfirmationSize = 42

	// BlockSize is the payload block size in bytes
	BlockSize = 4096

	// FirstBlockResponseSize is the size of the reply to the first block (5 bytes)
	FirstBlockResponseSize = 5

	// SizeOffset is the offset of the little-endian payload length in a TFT file header
	SizeOffset = 0x3C

	// HandshakeFields is the number of comma-separated fields in a connect reply
	HandshakeFields = 7

	// MaxReplySize bounds any single EOL-terminated reply read from the device
	MaxReplySize = 256
)

// Timeouts used after the speed switch.
const (
	// UploadTimeout is the read timeout at upload speed
	UploadTimeout = 500 * time.Millisecond

	// FirstBlockTimeout is the read timeout for the first-block response.
	// Processing the first block takes the device close to a second.
	FirstBlockTimeout = 2 * time.Second
)

// defaultSpeeds is copied by DefaultSpeeds and never handed out directly.
var defaultSpeeds = [...]int{
	2400, 4800, 9600, 19200, 31250, 38400, 57600, 74880,
	115200, 230400, 250000, 256000, 460800, 500000, 512000, 921600,
}

// DefaultSpeeds returns the baud rates scanned during discovery, slowest first.
func DefaultSpeeds() []int {
	speeds := make([]int, len(defaultSpeeds))
	copy(speeds, defaultSpeeds[:])
	return speeds
}

// Device return codes from the Nextion instruction set.
// The device answers an invalid instruction with [CODE][0xFF][0xFF][0xFF].
const (
	RetInvalidInstruction  = 0x00
	RetSuccess             = 0x01
	RetInvalidComponent    = 0x02
	RetInvalidPage         = 0x03
	RetInvalidPicture      = 0x04
	RetInvalidFont         = 0x05
	RetInvalidFileOp       = 0x06
	RetInvalidCRC          = 0x09
	RetInvalidBaudRate     = 0x11
	RetInvalidWaveform     = 0x12
	RetInvalidVariable     = 0x1A
	RetInvalidVariableOp   = 0x1B
	RetAssignmentFailed    = 0x1C
	RetEEPROMFailed        = 0x1D
	RetInvalidParamCount   = 0x1E
	RetIOFailed            = 0x1F
	RetInvalidEscape       = 0x20
	RetVariableNameTooLong = 0x23
	RetBufferOverflow      = 0x24
)
