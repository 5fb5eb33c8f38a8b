package uploader

import (
	"github.com/moffa90/go-nexus/protocol"
	"github.com/moffa90/go-nexus/tft"
)

// transferState is the block loop state.
type transferState int

const (
	stateFirstBlock transferState = iota
	stateSteady
	stateDone
)

func (s transferState) String() string {
	switch s {
	case stateFirstBlock:
		return "first-block"
	case stateSteady:
		return "steady"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// transferSession tracks one upload. It lives only inside Upload.
//
// Invariant: remaining == ceil((size - cursor) / blockSize) before each block
// is sent, recomputed whenever the cursor jumps.
type transferSession struct {
	size         int64
	blockSize    int
	remaining    int64
	cursor       int64
	state        transferState
	blocksSent   int
	lastProgress int
}

func newTransferSession(size uint32) *transferSession {
	s := &transferSession{
		size:      int64(size),
		blockSize: protocol.BlockSize,
		remaining: tft.RemainingBlocks(int64(size), 0),
		state:     stateFirstBlock,
	}
	if s.remaining == 0 {
		s.state = stateDone
	}
	return s
}

// sent records a block of n bytes written at the cursor.
func (s *transferSession) sent(n int) {
	s.cursor += int64(n)
	s.blocksSent++
	s.remaining--
}

// skipTo moves the cursor to pos and recomputes the remaining blocks.
func (s *transferSession) skipTo(pos int64) {
	s.cursor = pos
	s.remaining = tft.RemainingBlocks(s.size, pos)
}

// next moves to the state after the current block was acknowledged.
func (s *transferSession) next() {
	if s.remaining <= 0 {
		s.state = stateDone
		return
	}
	s.state = stateSteady
}

// progress returns the integer percentage and whether it changed since the
// last call that reported a change.
func (s *transferSession) progress() (int, bool) {
	if s.size == 0 {
		return 0, false
	}
	p := int(100 * s.cursor / s.size)
	if p == s.lastProgress {
		return p, false
	}
	s.lastProgress = p
	return p, true
}
