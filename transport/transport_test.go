package transport

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFrameRoundTrip(t *testing.T) {
	payload := []byte("hello mesh")
	framed := EncodeFrame(payload)

	r := NewReassembler()
	frames, err := r.Feed(framed)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(frames) != 1 || !bytes.Equal(frames[0], payload) {
		t.Fatalf("frames = %v, want one frame equal to %q", frames, payload)
	}
}

func TestEncodeFrameTooLargePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected EncodeFrame to panic on an oversized payload")
		}
	}()
	EncodeFrame(make([]byte, MaxFrameSize+1))
}

// TestReassemblerArbitraryChunking feeds the same sequence of frames
// split at every possible byte boundary and requires the output
// sequence to be identical regardless of how the bytes were chunked.
func TestReassemblerArbitraryChunking(t *testing.T) {
	payloads := [][]byte{
		[]byte("a"),
		[]byte(""),
		bytes.Repeat([]byte{0x42}, 300),
		[]byte("final frame"),
	}
	var stream []byte
	for _, p := range payloads {
		stream = append(stream, EncodeFrame(p)...)
	}

	for chunkSize := 1; chunkSize <= len(stream); chunkSize++ {
		r := NewReassembler()
		var got [][]byte
		for i := 0; i < len(stream); i += chunkSize {
			end := i + chunkSize
			if end > len(stream) {
				end = len(stream)
			}
			frames, err := r.Feed(stream[i:end])
			if err != nil {
				t.Fatalf("chunkSize=%d: Feed: %v", chunkSize, err)
			}
			got = append(got, frames...)
		}
		if len(got) != len(payloads) {
			t.Fatalf("chunkSize=%d: got %d frames, want %d", chunkSize, len(got), len(payloads))
		}
		for i, p := range payloads {
			if !bytes.Equal(got[i], p) {
				t.Fatalf("chunkSize=%d: frame %d = %q, want %q", chunkSize, i, got[i], p)
			}
		}
	}
}

func TestReassemblerNeverHoldsMoreThanOnePartialFrame(t *testing.T) {
	r := NewReassembler()
	full := EncodeFrame([]byte("one partial frame at a time"))
	// Feed everything but the last byte: exactly one frame's worth of
	// state should be pending internally, nothing more.
	frames, err := r.Feed(full[:len(full)-1])
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("expected no complete frames yet, got %d", len(frames))
	}
	if len(r.buf) != r.bodyLen-1 {
		t.Fatalf("internal buffer holds %d bytes, want exactly %d (one partial body)", len(r.buf), r.bodyLen-1)
	}
}

func TestReassemblerAcceptsMaxFrameSizeBoundary(t *testing.T) {
	r := NewReassembler()
	_, err := r.Feed([]byte{0xFF, 0xFF}) // declares the maximum representable length, 65535
	if err != nil {
		t.Fatalf("0xFFFF is exactly MaxFrameSize, should not error: %v", err)
	}
	if !errors.Is(err, ErrFrameTooLarge) && err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReassemblerResetDiscardsPartialState(t *testing.T) {
	r := NewReassembler()
	full := EncodeFrame([]byte("will be discarded"))
	r.Feed(full[:3])
	r.Reset()
	if r.state != stateNeedLen || len(r.buf) != 0 || r.bodyLen != 0 {
		t.Fatalf("Reset left state=%v buf=%v bodyLen=%d", r.state, r.buf, r.bodyLen)
	}

	fresh := EncodeFrame([]byte("fresh frame"))
	frames, err := r.Feed(fresh)
	if err != nil {
		t.Fatalf("Feed after Reset: %v", err)
	}
	if len(frames) != 1 || string(frames[0]) != "fresh frame" {
		t.Fatalf("frames after Reset = %v", frames)
	}
}
