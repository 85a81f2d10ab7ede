// Command meshcore-monitor bridges a MeshCore companion-radio session to
// any number of browser tabs: it dials the radio once, then broadcasts
// every event over a WebSocket endpoint as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/companion/internal/logging"
	"github.com/meshcore-go/companion/meshtransport/serial"
	"github.com/meshcore-go/companion/meshtransport/tcp"
	"github.com/meshcore-go/companion/session"
	"github.com/meshcore-go/companion/transport"
)

func main() {
	var (
		addr       = flag.String("device", "", "bridge host:port to dial over TCP")
		serialPort = flag.String("serial", "", "serial port path (overrides --device)")
		baudRate   = flag.Int("baud", 115200, "serial baud rate")
		clientID   = flag.String("client-id", "meshcore-monitor", "client identifier sent with appStart")
		httpAddr   = flag.String("http", ":8787", "address to serve the WebSocket bridge on")
		timeout    = flag.Duration("timeout", 10*time.Second, "connect timeout")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	if err := logging.Initialize(level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.GetLogger()
	defer func() { _ = logger.Sync() }()

	var t transport.Transport
	var err error
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	if *serialPort != "" {
		t, err = serial.Open(*serialPort, *baudRate, logger)
	} else if *addr != "" {
		t, err = tcp.Dial(ctx, *addr, logger)
	} else {
		cancel()
		fmt.Fprintln(os.Stderr, "one of --device or --serial is required")
		os.Exit(1)
	}
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}

	sess := session.New(t, session.WithLogger(logger), session.WithConnectTimeout(*timeout))
	startCtx, startCancel := context.WithTimeout(context.Background(), *timeout)
	selfInfo, err := sess.Start(startCtx, *clientID)
	startCancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "starting session:", err)
		os.Exit(1)
	}
	logger.Info("session ready", zap.String("radio_name", selfInfo.Name))

	hub := newHub(sess, logger)
	go hub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/events", hub.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("serving WebSocket bridge", zap.String("addr", *httpAddr))
	if err := http.ListenAndServe(*httpAddr, mux); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
