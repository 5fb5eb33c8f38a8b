package simulator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/transport"
)

func readAll(t *testing.T, p transport.Port) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 64)
	for {
		n, err := p.Read(buf)
		require.NoError(t, err)
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

func TestHandshakeOnlyAtOwnBaud(t *testing.T) {
	d := NewDisplay("/dev/ttyUSB0", 9600)

	p, err := d.Open("/dev/ttyUSB0", 115200, 0)
	require.NoError(t, err)
	_, err = p.Write([]byte(protocol.WakeSequence))
	require.NoError(t, err)
	assert.Empty(t, readAll(t, p))
	require.NoError(t, p.Close())

	p, err = d.Open("/dev/ttyUSB0", 9600, 0)
	require.NoError(t, err)
	defer p.Close()
	_, err = p.Write([]byte(protocol.WakeSequence))
	require.NoError(t, err)

	reply := readAll(t, p)
	assert.True(t, bytes.HasPrefix(reply, []byte{protocol.RetInvalidVariable, 0xFF, 0xFF, 0xFF}))
	assert.True(t, bytes.HasSuffix(reply, d.HandshakeReply()))

	_, err = p.Write([]byte(protocol.EOL))
	require.NoError(t, err)
	assert.Len(t, readAll(t, p), protocol.ConfirmationSize)
}

func TestOtherEndpointIsSilent(t *testing.T) {
	d := NewDisplay("/dev/ttyUSB0", 9600)

	p, err := d.Open("/dev/ttyUSB1", 9600, 0)
	require.NoError(t, err)
	_, err = p.Write([]byte(protocol.WakeSequence))
	require.NoError(t, err)
	assert.Empty(t, readAll(t, p))
	assert.NoError(t, p.Close())
}

func TestOpenWhileOpenIsBusy(t *testing.T) {
	d := NewDisplay("/dev/ttyUSB0", 9600)

	p, err := d.Open("/dev/ttyUSB0", 9600, 0)
	require.NoError(t, err)

	_, err = d.Open("/dev/ttyUSB0", 9600, 0)
	assert.ErrorIs(t, err, ErrPortBusy)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), ErrClosed)
	_, err = p.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFailOpenAt(t *testing.T) {
	d := NewDisplay("/dev/ttyUSB0", 9600)
	d.FailOpenAt = map[int]bool{9600: true}

	_, err := d.Open("/dev/ttyUSB0", 9600, 0)
	assert.Error(t, err)
	assert.Len(t, d.Opens, 1)
}
