package uploader

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-nexus/internal/simulator"
	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/tft"
)

const testPort = "/dev/ttyUSB1"

// buildPayload returns a TFT image of size bytes declaring size in its header.
// Sizes below tft.MinFileSize still get a full header.
func buildPayload(size uint32) []byte {
	n := int(size)
	if n < tft.MinFileSize {
		n = tft.MinFileSize
	}
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	binary.LittleEndian.PutUint32(data[protocol.SizeOffset:], size)
	return data
}

// connect runs discovery against d at its own baud rate.
func connect(t *testing.T, d *simulator.Display, opts ...Option) (*Uploader, *Connection) {
	t.Helper()
	opts = append([]Option{WithConnectSpeed(d.Baud)}, opts...)
	up := New(d, opts...)
	conn, err := up.Discover(context.Background(), []string{testPort})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return up, conn
}

// recordingLogger keeps every message for inspection.
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) { l.add("DEBUG", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...interface{})  { l.add("INFO", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...interface{}) { l.add("ERROR", msg, kv) }

func (l *recordingLogger) add(level, msg string, kv []interface{}) {
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, kv))
}

func (l *recordingLogger) contains(s string) bool {
	for _, line := range l.lines {
		if bytes.Contains([]byte(line), []byte(s)) {
			return true
		}
	}
	return false
}

func TestNewPanicsOnNilOpener(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestNewDefaults(t *testing.T) {
	up := New(simulator.NewDisplay(testPort, 9600))

	assert.Equal(t, protocol.UploadTimeout, up.config.UploadTimeout)
	assert.Equal(t, protocol.FirstBlockTimeout, up.config.FirstBlockTimeout)
	assert.Zero(t, up.config.ConnectSpeed)
	assert.Zero(t, up.config.UploadSpeed)
	assert.Nil(t, up.config.Logger)
}

func TestOptions(t *testing.T) {
	up := New(simulator.NewDisplay(testPort, 9600),
		WithConnectSpeed(115200),
		WithUploadSpeed(921600),
		WithUploadTimeout(time.Second),
		WithFirstBlockTimeout(3*time.Second),
	)

	assert.Equal(t, 115200, up.config.ConnectSpeed)
	assert.Equal(t, 921600, up.config.UploadSpeed)
	assert.Equal(t, time.Second, up.config.UploadTimeout)
	assert.Equal(t, 3*time.Second, up.config.FirstBlockTimeout)
}

func TestOptionsIgnoreNonPositive(t *testing.T) {
	up := New(simulator.NewDisplay(testPort, 9600),
		WithConnectSpeed(0),
		WithUploadSpeed(-1),
		WithUploadTimeout(0),
		WithFirstBlockTimeout(-time.Second),
	)

	assert.Zero(t, up.config.ConnectSpeed)
	assert.Zero(t, up.config.UploadSpeed)
	assert.Equal(t, protocol.UploadTimeout, up.config.UploadTimeout)
	assert.Equal(t, protocol.FirstBlockTimeout, up.config.FirstBlockTimeout)
}

func TestLoggerReceivesMessages(t *testing.T) {
	d := simulator.NewDisplay(testPort, 9600)
	logger := &recordingLogger{}
	up, conn := connect(t, d, WithLogger(logger))

	require.NoError(t, up.Upload(context.Background(), conn, bytes.NewReader(buildPayload(5000))))

	assert.True(t, logger.contains("INFO connected"))
	assert.True(t, logger.contains("INFO initiating upload"))
	assert.True(t, logger.contains("INFO upload complete"))
}
