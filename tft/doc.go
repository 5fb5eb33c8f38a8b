// Package tft provides access to Nextion .tft firmware files as an upload payload.
//
// # TFT File Format
//
// Only the header length field is interpreted. The payload length is stored
// as a little-endian uint32 at offset 0x3C:
//
//	offset 0x00 ... 0x3B  header (opaque)
//	offset 0x3C ... 0x3F  payload size in bytes (little-endian)
//	offset 0x40 ...       rest of the file (opaque)
//
// The upload sends the first <payload size> bytes of the file, header included.
//
// # Usage
//
//	f, err := tft.Open("display.tft")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	fmt.Printf("Payload: %d bytes, %d blocks\n",
//	    f.PayloadSize(), tft.RemainingBlocks(int64(f.PayloadSize()), 0))
//
// Read the size from any io.ReadSeeker:
//
//	size, err := tft.ReadPayloadSize(bytes.NewReader(data))
//
// # Error Handling
//
// A file shorter than MinFileSize, or one whose declared size exceeds the
// file length, is rejected with *HeaderError before anything is sent.
// A declared size of 0 is valid and produces an upload without blocks.
package tft
