// Package tcp implements transport.Transport over a plain TCP
// connection to a companion-radio bridge (e.g. a WiFi-attached node
// exposing its serial frames on a TCP port). It is a concrete driver,
// not part of the protocol core: session never imports this package
// directly, only transport.Transport.
package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/companion/transport"
)

// Transport dials a single TCP connection and runs a transport.Reassembler
// over its byte stream to recover complete frames.
type Transport struct {
	conn   net.Conn
	logger *zap.Logger

	recvCh chan []byte

	mu        sync.Mutex
	connected bool
	closeOnce sync.Once
}

// Dial connects to addr (host:port) and starts the background read loop.
// The context bounds only the dial itself, not the connection's lifetime.
func Dial(ctx context.Context, addr string, logger *zap.Logger) (*Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp: dial %s: %w", addr, err)
	}

	t := &Transport{
		conn:      conn,
		logger:    logger,
		recvCh:    make(chan []byte, 64),
		connected: true,
	}
	go t.readLoop()
	return t, nil
}

func (t *Transport) readLoop() {
	defer close(t.recvCh)
	defer t.markDisconnected()

	reassembler := transport.NewReassembler()
	buf := make([]byte, 4096)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			frames, rerr := reassembler.Feed(buf[:n])
			for _, f := range frames {
				t.recvCh <- f
			}
			if rerr != nil {
				t.logger.Warn("tcp: fatal reassembly error, closing", zap.Error(rerr))
				return
			}
		}
		if err != nil {
			t.logger.Debug("tcp: read loop ending", zap.Error(err))
			return
		}
	}
}

func (t *Transport) markDisconnected() {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()
}

// Send writes payload as one length-prefixed frame. ctx's deadline, if
// any, is applied to the underlying write.
func (t *Transport) Send(ctx context.Context, payload []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	_, err := t.conn.Write(transport.EncodeFrame(payload))
	if err != nil {
		return fmt.Errorf("tcp: write: %w", err)
	}
	return nil
}

// Recv returns the channel of reassembled frame payloads.
func (t *Transport) Recv() <-chan []byte { return t.recvCh }

// Close closes the underlying connection; the read loop notices and
// closes Recv's channel on its own.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}

// IsConnected reports whether the read loop has observed a disconnect.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}
