package protocol

// DeviceInfo contains the display identification returned by the connect handshake.
type DeviceInfo struct {
	// Touch reports whether the display has a touch panel
	Touch bool

	// Address is the device address; 0 means commands carry no address prefix
	Address uint16

	// Model is the display model name, e.g. "NX4024T032_011R"
	Model string

	// FirmwareVersion is the display firmware version
	FirmwareVersion int

	// MCUCode identifies the display controller
	MCUCode int

	// SerialNumber is the device serial number
	SerialNumber string

	// FlashSize is the flash size in bytes
	FlashSize int64
}

// FirstBlockResult is the decoded reply to the first payload block.
type FirstBlockResult struct {
	// Skip is true when the device asked to resume from NextPos
	Skip bool

	// NextPos is the payload offset the device wants next (valid if Skip)
	NextPos uint32
}
