package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/moffa90/go-nexus/internal/simulator"
	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/uploader"
)

func writeTFT(t *testing.T, size int) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	binary.LittleEndian.PutUint32(data[protocol.SizeOffset:], uint32(size))

	path := filepath.Join(t.TempDir(), "display.tft")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, data
}

func TestRunUploads(t *testing.T) {
	path, data := writeTFT(t, 3*4096+100)
	d := simulator.NewDisplay("/dev/ttyUSB1", 115200)

	cfg := defaultSettings()
	cfg.Port = "/dev/ttyUSB1"
	cfg.ConnectBaud = 115200
	cfg.UploadBaud = 921600

	var out bytes.Buffer
	err := run(context.Background(), cfg, path, d, []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}, zap.NewNop(), &out)
	require.NoError(t, err)

	assert.Equal(t, data, d.Received())
	assert.Equal(t, 921600, d.UploadBaud)
	assert.Contains(t, out.String(), "Scanning /dev/ttyUSB1 at 115200 baud... Success.")
	assert.Contains(t, out.String(), "Connected to NX4024T032_011R (touch, firmware 163")
	assert.Contains(t, out.String(), "Upload completed successfully!")

	// The preferred port is scanned first, so the other port is never opened.
	for _, o := range d.Opens {
		assert.Equal(t, "/dev/ttyUSB1", o.Endpoint)
	}
}

func TestRunReportsSkip(t *testing.T) {
	path, _ := writeTFT(t, 8*4096)
	d := simulator.NewDisplay("/dev/ttyUSB0", 9600)
	d.SkipTo = 4 * 4096

	cfg := defaultSettings()
	cfg.ConnectBaud = 9600

	var out bytes.Buffer
	err := run(context.Background(), cfg, path, d, []string{"/dev/ttyUSB0"}, zap.NewNop(), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Skipped resources: resuming at offset 16384, 4 blocks left.")
	assert.Len(t, d.Blocks, 5)
}

func TestRunInvalidInput(t *testing.T) {
	d := simulator.NewDisplay("/dev/ttyUSB0", 9600)

	short := filepath.Join(t.TempDir(), "short.tft")
	require.NoError(t, os.WriteFile(short, []byte("too short"), 0o600))

	for _, path := range []string{filepath.Join(t.TempDir(), "missing.tft"), short} {
		err := run(context.Background(), defaultSettings(), path, d, []string{"/dev/ttyUSB0"}, zap.NewNop(), &bytes.Buffer{})

		var ce *uploader.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "input", ce.Field)
	}
	assert.Empty(t, d.Opens)
}

func TestRunUnknownPort(t *testing.T) {
	path, _ := writeTFT(t, 4096)
	d := simulator.NewDisplay("/dev/ttyUSB0", 9600)

	cfg := defaultSettings()
	cfg.Port = "/dev/ttyS9"

	err := run(context.Background(), cfg, path, d, []string{"/dev/ttyUSB0"}, zap.NewNop(), &bytes.Buffer{})

	var ce *uploader.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "port", ce.Field)
	assert.Empty(t, d.Opens)
}

func TestRunNoPorts(t *testing.T) {
	path, _ := writeTFT(t, 4096)
	d := simulator.NewDisplay("/dev/ttyUSB0", 9600)

	err := run(context.Background(), defaultSettings(), path, d, nil, zap.NewNop(), &bytes.Buffer{})

	var ce *uploader.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "port", ce.Field)
	assert.EqualError(t, err, "invalid port: no serial ports available")
	assert.Empty(t, d.Opens)
}

func TestRunDeviceNotFound(t *testing.T) {
	path, _ := writeTFT(t, 4096)
	d := simulator.NewDisplay("/dev/elsewhere", 9600)

	var out bytes.Buffer
	err := run(context.Background(), defaultSettings(), path, d, []string{"/dev/ttyUSB0"}, zap.NewNop(), &out)

	assert.True(t, errors.Is(err, uploader.ErrDeviceNotFound))
	assert.Contains(t, out.String(), "Scanning /dev/ttyUSB0 at 921600 baud... Failed.")
}

func TestRunInterrupted(t *testing.T) {
	path, _ := writeTFT(t, 4096)
	d := simulator.NewDisplay("/dev/ttyUSB0", 9600)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, defaultSettings(), path, d, []string{"/dev/ttyUSB0"}, zap.NewNop(), &bytes.Buffer{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReport(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)

	var stderr bytes.Buffer
	assert.Equal(t, 0, report(logger, &stderr, nil))
	assert.Empty(t, stderr.String())
	assert.Zero(t, logs.Len())

	assert.Equal(t, 1, report(logger, &stderr, uploader.ErrDeviceNotFound))
	assert.Equal(t, "error: no display found\n", stderr.String())

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "upload failed", entries[0].Message)
	assert.Equal(t, "no display found", entries[0].ContextMap()["error"])
}
