package uploader

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigurationError
		want string
	}{
		{
			name: "without value",
			err:  &ConfigurationError{Field: "endpoints", Reason: "no candidate endpoints"},
			want: "invalid endpoints: no candidate endpoints",
		},
		{
			name: "with value",
			err:  &ConfigurationError{Field: "port", Value: "/dev/ttyS9", Reason: "not found"},
			want: `invalid port "/dev/ttyS9": not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDiscoveryExhaustedErrorIs(t *testing.T) {
	err := &DiscoveryExhaustedError{
		Endpoints: []string{"/dev/ttyUSB0"},
		Speeds:    []int{9600, 115200},
		Attempts:  2,
	}

	assert.True(t, errors.Is(err, ErrDeviceNotFound))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrDeviceNotFound))
	assert.False(t, errors.Is(err, ErrNotConnected))
	assert.Equal(t,
		"no display found on [/dev/ttyUSB0] after 2 attempts at 2 baud rates; check wiring and power",
		err.Error())
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: "write block 3", Endpoint: "/dev/ttyUSB0", Speed: 921600, Err: io.ErrShortWrite}

	assert.Equal(t, "write block 3 /dev/ttyUSB0 at 921600 baud: short write", err.Error())
	assert.ErrorIs(t, err, io.ErrShortWrite)
}
