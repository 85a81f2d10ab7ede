// Package serial implements transport.Transport over a USB/UART serial
// connection to a companion radio, using go.bug.st/serial for the port
// itself and transport.Reassembler for framing. It is a concrete
// driver, not part of the protocol core.
package serial

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/meshcore-go/companion/transport"
)

const defaultReadTimeout = 500 * time.Millisecond

// Transport wraps a go.bug.st/serial port and runs a
// transport.Reassembler over its byte stream.
type Transport struct {
	port   serial.Port
	logger *zap.Logger

	recvCh chan []byte

	writeMu sync.Mutex

	mu        sync.Mutex
	connected bool
	closeOnce sync.Once
}

// Open opens portName at baudRate (8N1, matching every companion
// firmware build observed) and starts the background read loop.
func Open(portName string, baudRate int, logger *zap.Logger) (*Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(defaultReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial: set read timeout: %w", err)
	}

	t := &Transport{
		port:      port,
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
		n, err := t.port.Read(buf)
		if n > 0 {
			frames, rerr := reassembler.Feed(buf[:n])
			for _, f := range frames {
				t.recvCh <- f
			}
			if rerr != nil {
				t.logger.Warn("serial: fatal reassembly error, closing", zap.Error(rerr))
				return
			}
		}
		if err != nil {
			// A read-timeout error is expected idle behavior, not a
			// disconnect; go.bug.st/serial returns it as a plain error
			// with n == 0, so only treat it as fatal once the port
			// itself reports it's gone.
			if !t.connectedUnlocked() {
				return
			}
			continue
		}
	}
}

func (t *Transport) connectedUnlocked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *Transport) markDisconnected() {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()
}

// Send writes payload as one length-prefixed frame.
func (t *Transport) Send(ctx context.Context, payload []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err := t.port.Write(transport.EncodeFrame(payload))
	if err != nil {
		return fmt.Errorf("serial: write: %w", err)
	}
	return nil
}

// Recv returns the channel of reassembled frame payloads.
func (t *Transport) Recv() <-chan []byte { return t.recvCh }

// Close closes the underlying port; the read loop notices and closes
// Recv's channel on its own.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.markDisconnected()
		err = t.port.Close()
	})
	return err
}

// IsConnected reports whether the read loop has observed a disconnect.
func (t *Transport) IsConnected() bool {
	return t.connectedUnlocked()
}
