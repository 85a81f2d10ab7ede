package tcp

import (
	"context"
	"testing"
	"time"

	"github.com/meshcore-go/companion/internal/mockradio"
)

func TestDialSendRecvRoundTrip(t *testing.T) {
	radio, err := mockradio.Listen()
	if err != nil {
		t.Fatalf("mockradio.Listen: %v", err)
	}
	defer radio.Close()

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- radio.Accept() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tr, err := Dial(ctx, radio.Addr(), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer tr.Close()

	if err := <-acceptErr; err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := tr.Send(context.Background(), []byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := radio.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(got) != 3 || got[0] != 0x01 {
		t.Fatalf("ReadFrame = %v, want [1 2 3]", got)
	}

	if err := radio.SendFrame([]byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("SendFrame: %v", err)
	}
	select {
	case frame := <-tr.Recv():
		if len(frame) != 2 || frame[0] != 0xAA {
			t.Fatalf("Recv() = %v, want [0xAA 0xBB]", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a reassembled frame")
	}
}

func TestCloseEndsRecvChannel(t *testing.T) {
	radio, err := mockradio.Listen()
	if err != nil {
		t.Fatalf("mockradio.Listen: %v", err)
	}
	defer radio.Close()

	go radio.Accept()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tr, err := Dial(ctx, radio.Addr(), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case _, ok := <-tr.Recv():
		if ok {
			t.Fatal("expected Recv channel to be closed after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv channel never closed after Close")
	}
}
