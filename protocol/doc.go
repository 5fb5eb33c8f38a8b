// Package protocol implements the wire format of the Nextion upload protocol v1.2.
//
// This package builds command frames and decodes device replies. It does not
// perform any I/O; see the uploader package for the exchange itself.
//
// # Protocol Overview
//
// Commands are ASCII text terminated by three 0xFF bytes:
//
//	Command:  [ADDR_L][ADDR_H]<name> <arg>,<arg>,...[0xFF][0xFF][0xFF]
//	Reply:    <text or code>[0xFF][0xFF][0xFF]
//
// Where:
//   - ADDR is the 16-bit device address (little-endian), omitted when 0
//   - arguments are decimal integers joined by ','
//
// During the block transfer the device answers with raw bytes instead:
//   - Ack (0x05) after the speed switch and after every block but the first
//   - [0x08][NEXT_POS(4)] after the first block
//
// # Command Builders
//
//	frame := protocol.BuildCommand(addr, "dims=100")
//	frame := protocol.BuildUploadCommand(addr, size, 921600)
//
// # Reply Parsers
//
//	info, err := protocol.ParseHandshake(reply)
//	res, err := protocol.ParseFirstBlockResponse(reply)
//	if res.Skip {
//	    // seek to res.NextPos
//	}
//
// # Error Handling
//
// Malformed or unexpected replies are reported as *ProtocolError, which shows
// the expected and received bytes in hex:
//
//	// "first block failed: first block acknowledge not received:
//	//  expected [08 00 00 00 00], got [1A FF FF FF] (device returned invalid variable name or attribute (0x1A))"
package protocol
