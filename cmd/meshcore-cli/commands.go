package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meshcore-go/companion/codec"
	"github.com/meshcore-go/companion/internal/discovery"
)

var scanTimeout time.Duration

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover MeshCore TCP bridges on the local network via mDNS",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := discovery.ScanForDevices(scanTimeout)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("no bridges found")
			return nil
		}
		for _, d := range devices {
			fmt.Println(d.String())
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "how long to listen for advertisements")
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List the radio's known contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		ctx := context.Background()
		sess, addr, err := openSession(ctx, flags, logger)
		if err != nil {
			return err
		}
		fmt.Printf("connected to %s\n", addr.Addr)
		defer sess.Close()

		listCtx, cancel := context.WithTimeout(ctx, flags.timeout)
		defer cancel()

		contacts, err := sess.ListContacts(listCtx, nil)
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			fmt.Println("no contacts")
			return nil
		}
		for _, c := range contacts {
			fmt.Printf("%s  %s  route=%s\n", hex.EncodeToString(c.PublicKey[:codec.PublicKeyPrefix]), c.Name, routeDescription(c.OutPathLen))
		}
		return nil
	},
}

func routeDescription(outPathLen int8) string {
	if outPathLen < 0 {
		return "flood"
	}
	return fmt.Sprintf("%d hop(s)", outPathLen)
}

var (
	sendTo      string
	sendAttempt uint8
)

var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send a text message to a contact by its public-key prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, err := parsePrefix(sendTo)
		if err != nil {
			return err
		}

		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		ctx := context.Background()
		sess, addr, err := openSession(ctx, flags, logger)
		if err != nil {
			return err
		}
		fmt.Printf("connected to %s\n", addr.Addr)
		defer sess.Close()

		sendCtx, cancel := context.WithTimeout(ctx, flags.timeout+15*time.Second)
		defer cancel()

		outcome, err := sess.SendMessage(sendCtx, prefix, args[0], uint32(time.Now().Unix()), sendAttempt)
		if err != nil {
			return err
		}
		if outcome.Acked {
			fmt.Println("delivered (ack received)")
		} else {
			fmt.Println("sent, no ack received")
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "destination public-key prefix, hex-encoded (6 bytes)")
	sendCmd.Flags().Uint8Var(&sendAttempt, "attempt", 0, "retry attempt number")
	_ = sendCmd.MarkFlagRequired("to")
}

func parsePrefix(s string) ([codec.PublicKeyPrefix]byte, error) {
	var prefix [codec.PublicKeyPrefix]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return prefix, fmt.Errorf("invalid --to hex: %w", err)
	}
	if len(raw) != codec.PublicKeyPrefix {
		return prefix, fmt.Errorf("--to must be %d bytes (%d hex chars), got %d bytes", codec.PublicKeyPrefix, codec.PublicKeyPrefix*2, len(raw))
	}
	copy(prefix[:], raw)
	return prefix, nil
}

var telemetryOf string

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Fetch and decode Cayenne LPP telemetry from the radio (or a remote node)",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		ctx := context.Background()
		sess, addr, err := openSession(ctx, flags, logger)
		if err != nil {
			return err
		}
		fmt.Printf("connected to %s\n", addr.Addr)
		defer sess.Close()

		reqCtx, cancel := context.WithTimeout(ctx, flags.timeout)
		defer cancel()

		var pubkey *[codec.PublicKeySize]byte
		if telemetryOf != "" {
			raw, err := hex.DecodeString(telemetryOf)
			if err != nil || len(raw) != codec.PublicKeySize {
				return fmt.Errorf("--node must be %d hex-encoded bytes", codec.PublicKeySize)
			}
			var pk [codec.PublicKeySize]byte
			copy(pk[:], raw)
			pubkey = &pk
		}

		ev, err := sess.SendAndAwait(reqCtx, codec.BuildGetSelfTelemetry(pubkey))
		if err != nil {
			return err
		}
		if ev.TelemetryResponse == nil {
			return fmt.Errorf("unexpected reply to getSelfTelemetry: %s", ev.Code)
		}
		for _, v := range ev.TelemetryResponse.Values {
			printLPPValue(v)
		}
		return nil
	},
}

func init() {
	telemetryCmd.Flags().StringVar(&telemetryOf, "node", "", "hex-encoded 32-byte public key of a remote node (default: this radio)")
}

func printLPPValue(v codec.LPPValue) {
	switch v.Kind {
	case codec.LPPKindDigital:
		fmt.Printf("ch%-3d type=0x%02x digital=%v\n", v.Channel, v.Type, v.Digital)
	case codec.LPPKindInteger:
		fmt.Printf("ch%-3d type=0x%02x int=%d\n", v.Channel, v.Type, v.Integer)
	case codec.LPPKindFloat:
		fmt.Printf("ch%-3d type=0x%02x float=%.3f\n", v.Channel, v.Type, v.Float)
	case codec.LPPKindVector3:
		fmt.Printf("ch%-3d type=0x%02x vector=(%.3f, %.3f, %.3f)\n", v.Channel, v.Type, v.X, v.Y, v.Z)
	case codec.LPPKindGPS:
		fmt.Printf("ch%-3d type=0x%02x gps=(%.6f, %.6f, alt=%.2f)\n", v.Channel, v.Type, v.Lat, v.Lon, v.Alt)
	case codec.LPPKindRGB:
		fmt.Printf("ch%-3d type=0x%02x rgb=(%d, %d, %d)\n", v.Channel, v.Type, v.R, v.G, v.B)
	case codec.LPPKindTimestamp:
		fmt.Printf("ch%-3d type=0x%02x time=%s\n", v.Channel, v.Type, time.Unix(v.Timestamp, 0).UTC().Format(time.RFC3339))
	}
}

var setPinCmd = &cobra.Command{
	Use:   "set-pin",
	Short: "Set the radio's device PIN (read from the terminal without echo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "new device PIN: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading PIN: %w", err)
		}
		pin, err := strconv.ParseUint(string(raw), 10, 32)
		if err != nil {
			return fmt.Errorf("PIN must be numeric: %w", err)
		}

		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		ctx := context.Background()
		sess, addr, err := openSession(ctx, flags, logger)
		if err != nil {
			return err
		}
		fmt.Printf("connected to %s\n", addr.Addr)
		defer sess.Close()

		reqCtx, cancel := context.WithTimeout(ctx, flags.timeout)
		defer cancel()

		_, err = sess.SendAndAwait(reqCtx, codec.BuildSetDevicePin(uint32(pin)))
		return err
	},
}
