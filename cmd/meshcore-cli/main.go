// Command meshcore-cli is an interactive client for MeshCore companion
// radios: connect over TCP or serial, browse contacts, send messages,
// decode telemetry, and watch live protocol events.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meshcore-go/companion/internal/logging"
	"github.com/meshcore-go/companion/internal/version"
)

var (
	flags connectFlags
	debug bool
)

var rootCmd = &cobra.Command{
	Use:     "meshcore-cli",
	Short:   "Talk to a MeshCore companion radio over TCP or serial",
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.device, "device", "", "bridge address-book name or host:port")
	rootCmd.PersistentFlags().StringVar(&flags.serial, "serial", "", "serial port path (overrides --device)")
	rootCmd.PersistentFlags().IntVar(&flags.baudRate, "baud", 115200, "serial baud rate")
	rootCmd.PersistentFlags().StringVar(&flags.clientID, "client-id", "meshcore-cli", "client identifier sent with appStart")
	rootCmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "connect/command timeout")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd, scanCmd, contactsCmd, sendCmd, telemetryCmd, monitorCmd, setPinCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

func newLogger() *zap.Logger {
	level := "info"
	if debug {
		level = "debug"
	}
	if err := logging.Initialize(level); err != nil {
		return zap.NewNop()
	}
	return logging.GetLogger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
