// Package transport defines the boundary session depends on and the
// length-prefixed frame codec shared by every stream-oriented driver.
// It never dials a socket or opens a serial port itself — concrete
// drivers living outside this module's core (see meshtransport/tcp and
// meshtransport/serial) implement Transport and use Reassembler.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxFrameSize is the largest payload a single frame can carry. The
// 2-byte big-endian length prefix caps this at 65535; a longer length
// field is always a protocol error, never a legitimately large frame.
const MaxFrameSize = 65535

// Transport is the boundary session depends on. A datagram transport
// (BLE) hands Recv already-framed payloads with no length prefix to
// strip; a stream transport (TCP, serial) hands Recv raw bytes that
// must be run through a Reassembler first. Send always takes an
// unframed payload — each concrete Transport decides whether to apply
// the length prefix itself or to rely on its medium's own framing.
type Transport interface {
	// Send writes one frame and blocks until it is handed to the
	// underlying medium (not necessarily acknowledged by the radio).
	Send(ctx context.Context, payload []byte) error

	// Recv returns a channel of complete, already-unframed frame
	// payloads (opcode byte + body) — a stream driver is responsible
	// for running its raw bytes through a Reassembler before handing
	// frames here; session never sees a length prefix or a partial
	// frame. The channel is closed when the transport disconnects; a
	// closed channel with no pending values is the only disconnect
	// signal a caller needs.
	Recv() <-chan []byte

	// Close releases the underlying medium. Calling Close more than
	// once is safe and returns nil on the second call.
	Close() error

	// IsConnected reports the transport's last observed connection
	// state. It is advisory: a concurrent disconnect can make the
	// answer stale by the time a caller acts on it.
	IsConnected() bool
}

// ErrFrameTooLarge is returned by Reassembler.Feed when a declared
// frame length exceeds MaxFrameSize. It is always fatal: the stream's
// byte alignment cannot be trusted after this point.
var ErrFrameTooLarge = errors.New("transport: frame length exceeds maximum")

// reassemblerState is the Reassembler's two-state machine: it is
// either waiting for a 2-byte length prefix or waiting for the
// remainder of a declared-length body.
type reassemblerState int

const (
	stateNeedLen reassemblerState = iota
	stateNeedBody
)

// Reassembler turns a stream of arbitrarily-chunked bytes into a
// sequence of complete frames. It holds at most one partial frame at a
// time and never blocks: Feed is called with whatever bytes a Read
// happened to return, however those bytes were split by the
// underlying medium.
type Reassembler struct {
	state    reassemblerState
	bodyLen  int
	buf      []byte // accumulates partial length-prefix or body bytes
}

// NewReassembler returns a Reassembler ready to consume the start of a
// fresh stream.
func NewReassembler() *Reassembler {
	return &Reassembler{state: stateNeedLen}
}

// Feed appends chunk to the internal buffer and extracts as many
// complete frames as are now available. It returns ErrFrameTooLarge
// (wrapped with the offending length) if a declared frame length would
// exceed MaxFrameSize; after that error the Reassembler must be
// discarded, since the stream's alignment is no longer trustworthy.
func (r *Reassembler) Feed(chunk []byte) ([][]byte, error) {
	r.buf = append(r.buf, chunk...)
	var frames [][]byte

	for {
		switch r.state {
		case stateNeedLen:
			if len(r.buf) < 2 {
				return frames, nil
			}
			length := int(binary.BigEndian.Uint16(r.buf[:2]))
			if length > MaxFrameSize {
				return frames, fmt.Errorf("%w: %d", ErrFrameTooLarge, length)
			}
			r.buf = r.buf[2:]
			r.bodyLen = length
			r.state = stateNeedBody

		case stateNeedBody:
			if len(r.buf) < r.bodyLen {
				return frames, nil
			}
			frame := make([]byte, r.bodyLen)
			copy(frame, r.buf[:r.bodyLen])
			r.buf = r.buf[r.bodyLen:]
			r.state = stateNeedLen
			r.bodyLen = 0
			frames = append(frames, frame)
		}
	}
}

// Reset discards any partial frame and returns the Reassembler to its
// initial state, for reuse after a reconnect.
func (r *Reassembler) Reset() {
	r.state = stateNeedLen
	r.bodyLen = 0
	r.buf = nil
}

// EncodeFrame prepends payload with its 2-byte big-endian length
// prefix. It panics if payload exceeds MaxFrameSize — callers are
// expected to have already validated frame size before reaching here,
// since a too-large outbound frame is a programming error, not a
// runtime condition to recover from.
func EncodeFrame(payload []byte) []byte {
	if len(payload) > MaxFrameSize {
		panic(fmt.Sprintf("transport: outbound frame of %d bytes exceeds MaxFrameSize", len(payload)))
	}
	out := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(out[:2], uint16(len(payload)))
	copy(out[2:], payload)
	return out
}
