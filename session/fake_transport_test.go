package session

import (
	"context"
	"sync"
)

// fakeTransport is a scripted, in-memory Transport used by session's own
// tests. Writes are recorded for assertions; replies are delivered by
// the test pushing onto recvCh directly (simulating frames arriving off
// the wire), matching the Transport contract that Recv yields complete,
// already-unframed payloads.
type fakeTransport struct {
	mu      sync.Mutex
	sent    [][]byte
	sendErr error

	recvCh    chan []byte
	connected bool
	closeOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		recvCh:    make(chan []byte, 16),
		connected: true,
	}
}

func (f *fakeTransport) Send(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	cp := append([]byte(nil), payload...)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeTransport) Recv() <-chan []byte { return f.recvCh }

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.connected = false
		f.mu.Unlock()
		close(f.recvCh)
	})
	return nil
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// push delivers a frame as if it had just arrived from the radio.
func (f *fakeTransport) push(frame []byte) {
	f.recvCh <- frame
}

// lastSent returns the most recently sent frame, or nil if none.
func (f *fakeTransport) lastSent() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
