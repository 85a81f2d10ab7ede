package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/companion/internal/discovery"
	"github.com/meshcore-go/companion/meshtransport/serial"
	"github.com/meshcore-go/companion/meshtransport/tcp"
	"github.com/meshcore-go/companion/session"
	"github.com/meshcore-go/companion/transport"
)

// connectFlags holds the persistent flags every subcommand that talks
// to a bridge shares.
type connectFlags struct {
	device   string // remembered address-book name, or bare host:port
	serial   string // serial port path; mutually exclusive with TCP dialing
	baudRate int
	clientID string
	timeout  time.Duration
}

// resolve turns the flags into a dial target, consulting the address
// book and mDNS discovery when the user didn't give a literal address.
func (f connectFlags) resolve(book *AddressBook) (Address, error) {
	if f.serial != "" {
		return Address{Kind: "serial", Addr: f.serial, BaudRate: f.baudRate}, nil
	}

	if f.device == "" {
		devices, err := discovery.QuickScan()
		if err != nil {
			return Address{}, fmt.Errorf("discovering bridges: %w", err)
		}
		switch len(devices) {
		case 0:
			return Address{}, fmt.Errorf("no bridges discovered; pass --device host:port or --serial")
		case 1:
			return Address{Kind: "tcp", Addr: devices[0].Addr()}, nil
		default:
			return Address{}, fmt.Errorf("%d bridges discovered; pass --device to disambiguate", len(devices))
		}
	}

	if entry, ok := book.Entries[f.device]; ok {
		return *entry, nil
	}
	return Address{Kind: "tcp", Addr: f.device}, nil
}

// dial opens the resolved Address as a transport.Transport.
func dial(ctx context.Context, addr Address, logger *zap.Logger) (transport.Transport, error) {
	switch addr.Kind {
	case "serial":
		baud := addr.BaudRate
		if baud == 0 {
			baud = 115200
		}
		return serial.Open(addr.Addr, baud, logger)
	default:
		return tcp.Dial(ctx, addr.Addr, logger)
	}
}

// openSession dials, starts the handshake, and returns a ready Session
// along with the Address it dialed.
func openSession(ctx context.Context, f connectFlags, logger *zap.Logger) (*session.Session, *Address, error) {
	book, err := LoadAddressBook()
	if err != nil {
		return nil, nil, err
	}

	addr, err := f.resolve(book)
	if err != nil {
		return nil, nil, err
	}

	t, err := dial(ctx, addr, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", addr.Addr, err)
	}

	sess := session.New(t, session.WithLogger(logger), session.WithConnectTimeout(f.timeout))
	startCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if _, err := sess.Start(startCtx, f.clientID); err != nil {
		_ = t.Close()
		return nil, nil, fmt.Errorf("starting session: %w", err)
	}

	if f.device != "" {
		book.Remember(f.device, addr)
		_ = book.Save()
	}

	return sess, &addr, nil
}
