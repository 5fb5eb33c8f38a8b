// Package uploader provides a high-level API for uploading TFT files to Nextion displays.
//
// # Overview
//
// This package orchestrates the complete upload sequence of protocol v1.2:
//   - Scanning serial ports and baud rates for a display (Discover)
//   - Decoding the display identity from the connect handshake
//   - Switching to the upload baud rate
//   - Streaming the payload in 4096-byte blocks with acknowledgments
//   - Skipping resources the display already holds
//
// # Basic Usage
//
//	ports, err := transport.PortNames()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	up := uploader.New(transport.SerialOpener{},
//	    uploader.WithUploadSpeed(921600),
//	)
//
//	conn, err := up.Discover(context.Background(), ports)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	f, err := tft.Open("display.tft")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	if err := up.Upload(context.Background(), conn, f); err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
// The progress callback fires only when the integer percentage changes:
//
//	up := uploader.New(opener,
//	    uploader.WithProgressCallback(func(p uploader.Progress) {
//	        fmt.Printf("%d%%\r", p.Percentage)
//	    }),
//	    uploader.WithSkipCallback(func(s uploader.Skip) {
//	        fmt.Printf("skipped resources up to offset %d\n", s.To)
//	    }),
//	)
//
// # Baud Rates
//
// Discover tries the default rates from 2400 to 921600 baud. WithConnectSpeed
// moves a rate to the front of that list. The upload runs at the connect rate
// unless WithUploadSpeed is given. Every rate change closes and reopens the
// port; a port is never reconfigured while open.
//
// # Error Handling
//
// The package provides structured error types:
//   - ConfigurationError: invalid input detected before any I/O
//   - DiscoveryExhaustedError: no display answered (errors.Is ErrDeviceNotFound)
//   - TransportError: the port failed to open, read or write
//   - protocol.ProtocolError: the display sent something unexpected
//
// During discovery, transport errors only skip to the next baud rate. During
// upload every error is fatal and nothing is retried automatically.
//
// A Connection serves a single upload. Once the upload command has been sent
// it reports ErrNotConnected, and the display must be rediscovered.
//
// # Hardware Independence
//
// Ports are opened through the transport.Opener interface. transport.SerialOpener
// uses real serial ports; tests use an in-memory display.
package uploader
