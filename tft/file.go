package tft

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-nexus/protocol"
)

// MinFileSize is the smallest file that contains the payload size field.
const MinFileSize = protocol.SizeOffset + 4

// HeaderError indicates that a file cannot be used as an upload payload.
type HeaderError struct {
	Path   string
	Reason string
}

func (e *HeaderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid tft header: %s", e.Reason)
	}
	return fmt.Sprintf("invalid tft file %s: %s", e.Path, e.Reason)
}

// File is an opened TFT file positioned at the start of the payload.
type File struct {
	f    *os.File
	path string
	size uint32
}

// Open opens a TFT file and validates its header.
//
// Example:
//
//	f, err := tft.Open("display.tft")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	tf, err := newFile(f, path)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return tf, nil
}

func newFile(f *os.File, path string) (*File, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if st.IsDir() {
		return nil, &HeaderError{Path: path, Reason: "is a directory"}
	}
	if st.Size() < MinFileSize {
		return nil, &HeaderError{
			Path:   path,
			Reason: fmt.Sprintf("file is %d bytes, minimum is %d", st.Size(), MinFileSize),
		}
	}

	size, err := ReadPayloadSize(f)
	if err != nil {
		var he *HeaderError
		if errors.As(err, &he) {
			he.Path = path
		}
		return nil, err
	}

	if int64(size) > st.Size() {
		return nil, &HeaderError{
			Path:   path,
			Reason: fmt.Sprintf("declared payload size %d exceeds file size %d", size, st.Size()),
		}
	}

	return &File{f: f, path: path, size: size}, nil
}

// ReadPayloadSize reads the little-endian payload size at protocol.SizeOffset
// and rewinds r to offset 0.
func ReadPayloadSize(r io.ReadSeeker) (uint32, error) {
	if _, err := r.Seek(protocol.SizeOffset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to size field: %w", err)
	}

	var raw [4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, &HeaderError{Reason: fmt.Sprintf("file shorter than %d bytes", MinFileSize)}
		}
		return 0, fmt.Errorf("read size field: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind: %w", err)
	}

	return binary.LittleEndian.Uint32(raw[:]), nil
}

// ReadBlock reads up to len(buf) bytes. A short final block is returned
// without error; io.EOF is only returned when nothing was read.
func ReadBlock(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	return n, err
}

// RemainingBlocks returns ceil((size - cursor) / protocol.BlockSize), never negative.
func RemainingBlocks(size, cursor int64) int64 {
	if cursor >= size {
		return 0
	}
	return (size - cursor + protocol.BlockSize - 1) / protocol.BlockSize
}

// Read implements io.Reader.
func (t *File) Read(p []byte) (int, error) {
	return t.f.Read(p)
}

// Seek implements io.Seeker.
func (t *File) Seek(offset int64, whence int) (int64, error) {
	return t.f.Seek(offset, whence)
}

// Tell returns the current read offset.
func (t *File) Tell() (int64, error) {
	return t.f.Seek(0, io.SeekCurrent)
}

// Close closes the underlying file.
func (t *File) Close() error {
	return t.f.Close()
}

// PayloadSize returns the declared payload size from the header.
func (t *File) PayloadSize() uint32 {
	return t.size
}

// Path returns the path the file was opened from.
func (t *File) Path() string {
	return t.path
}
