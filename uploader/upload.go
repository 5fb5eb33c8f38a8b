package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/tft"
	"github.com/moffa90/go-nexus/transport"
)

// warmupCommands are sent at connect speed before the upload command.
// The display drops the first command after a handshake.
var warmupCommands = [...]string{
	protocol.CmdBacklightSleep,
	protocol.CmdDim,
	protocol.CmdSleep,
}

// Upload transfers a TFT payload over an established connection:
//  1. Read the payload size from the header at offset 0x3C
//  2. Send the warm-up commands at connect speed and flush input
//  3. Send whmi-wris, reopen the port at upload speed and wait for Ack
//  4. Send the first block and handle the display's skip request
//  5. Send the remaining blocks, each acknowledged with Ack
//
// The payload is read from offset 0. Any protocol or transport failure
// aborts the upload; nothing is retried.
//
// The display may only skip forward: a NEXT_POS behind the current offset or
// past the end of the payload is a *protocol.ProtocolError.
//
// Once the upload command is sent the connection is spent, whether the
// upload succeeds or fails. Later calls to Upload or SendCommand return
// ErrNotConnected; Close still releases the port. Run Discover again for
// another upload.
//
// Example:
//
//	f, _ := tft.Open("display.tft")
//	defer f.Close()
//	err := up.Upload(ctx, conn, f)
func (u *Uploader) Upload(ctx context.Context, conn *Connection, payload io.ReadSeeker) error {
	if !conn.Connected() {
		return ErrNotConnected
	}
	if payload == nil {
		return &ConfigurationError{Field: "payload", Reason: "payload cannot be nil"}
	}

	size, err := tft.ReadPayloadSize(payload)
	if err != nil {
		return fmt.Errorf("read payload size: %w", err)
	}

	startTime := time.Now()

	for _, cmd := range warmupCommands {
		if err := conn.SendCommand(cmd); err != nil {
			return fmt.Errorf("warm-up: %w", err)
		}
	}
	if err := conn.port.ResetInputBuffer(); err != nil {
		return conn.transportError("flush input", err)
	}

	u.logInfo("initiating upload",
		"port", conn.Endpoint,
		"size", size,
		"connect_baud", conn.ConnectSpeed,
		"upload_baud", conn.UploadSpeed,
	)

	defer func() { conn.connected = false }()

	if err := u.switchSpeed(conn, size); err != nil {
		u.logError("upload initiation failed", "error", err)
		return fmt.Errorf("initiate upload: %w", err)
	}

	s := newTransferSession(size)
	if err := u.transfer(ctx, conn, payload, s, startTime); err != nil {
		u.logError("upload failed",
			"state", s.state.String(),
			"offset", s.cursor,
			"blocks_sent", s.blocksSent,
			"error", err,
		)
		return err
	}

	u.logInfo("upload complete",
		"size", size,
		"blocks", s.blocksSent,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// switchSpeed announces the upload and moves the port to the upload speed.
func (u *Uploader) switchSpeed(conn *Connection, size uint32) error {
	cmd := protocol.BuildUploadCommand(conn.Device.Address, size, conn.UploadSpeed)
	if err := conn.write("write upload command", cmd); err != nil {
		return err
	}

	if err := conn.reopen(conn.UploadSpeed, u.config.UploadTimeout); err != nil {
		return err
	}

	if err := u.expectAck(conn, "upload initiation"); err != nil {
		return err
	}

	u.logDebug("speed switch acknowledged", "baud", conn.UploadSpeed)
	return nil
}

// transfer runs the block loop until the session is done.
func (u *Uploader) transfer(ctx context.Context, conn *Connection, payload io.ReadSeeker, s *transferSession, startTime time.Time) error {
	buf := make([]byte, s.blockSize)

	for s.state != stateDone {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		want := int64(len(buf))
		if left := s.size - s.cursor; left < want {
			want = left
		}
		n, err := tft.ReadBlock(payload, buf[:want])
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read block %d: %w", s.blocksSent, err)
		}
		if int64(n) < want {
			return fmt.Errorf("payload ended at offset %d, header declares %d bytes", s.cursor+int64(n), s.size)
		}

		if err := conn.write(fmt.Sprintf("write block %d", s.blocksSent), buf[:n]); err != nil {
			return err
		}
		s.sent(n)

		switch s.state {
		case stateFirstBlock:
			if err := u.firstBlockResponse(conn, payload, s); err != nil {
				return err
			}
		case stateSteady:
			if err := u.expectAck(conn, fmt.Sprintf("block %d", s.blocksSent-1)); err != nil {
				return err
			}
		}
		s.next()

		if pct, changed := s.progress(); changed {
			u.reportProgress(Progress{
				Percentage:      pct,
				BytesSent:       s.cursor,
				TotalBytes:      s.size,
				BlocksSent:      s.blocksSent,
				RemainingBlocks: s.remaining,
				ElapsedTime:     time.Since(startTime),
			})
		}
	}

	return nil
}

// firstBlockResponse reads the 5-byte reply to the first block and seeks
// forward when the display already holds part of the payload.
func (u *Uploader) firstBlockResponse(conn *Connection, payload io.Seeker, s *transferSession) error {
	if err := conn.setReadTimeout(u.config.FirstBlockTimeout); err != nil {
		return err
	}

	res, err := transport.ReadFull(conn.port, protocol.FirstBlockResponseSize)
	if err != nil {
		return conn.transportError("read first block response", err)
	}

	result, err := protocol.ParseFirstBlockResponse(res.Data)
	if err != nil {
		return err
	}

	if result.Skip {
		next := int64(result.NextPos)
		if next < s.cursor || next > s.size {
			return &protocol.ProtocolError{
				Operation: "first block",
				Reason:    fmt.Sprintf("skip position %d outside [%d, %d]", next, s.cursor, s.size),
				Got:       res.Data,
			}
		}

		if _, err := payload.Seek(next, io.SeekStart); err != nil {
			return fmt.Errorf("seek payload to %d: %w", next, err)
		}

		from := s.cursor
		s.skipTo(next)

		u.logInfo("skipped resources", "from", from, "to", next, "remaining_blocks", s.remaining)
		u.reportSkip(Skip{From: from, To: next, RemainingBlocks: s.remaining})
	}

	return conn.setReadTimeout(u.config.UploadTimeout)
}

// expectAck waits for the single-byte acknowledgment.
func (u *Uploader) expectAck(conn *Connection, op string) error {
	res, err := transport.ReadUntil(conn.port, []byte{protocol.Ack}, protocol.MaxReplySize)
	if err != nil {
		return conn.transportError("read acknowledge", err)
	}
	if !res.Complete() {
		return &protocol.ProtocolError{
			Operation: op,
			Reason:    "acknowledge not received",
			Expected:  []byte{protocol.Ack},
			Got:       res.Data,
		}
	}
	return nil
}
