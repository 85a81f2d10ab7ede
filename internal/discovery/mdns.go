package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type a TCP companion-radio bridge
	// advertises itself under.
	ServiceType = "_meshcore._tcp"

	// ServiceDomain is the mDNS domain (typically "local.").
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery.
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is used when an entry's advertised port is zero.
	DefaultPort = 5000
)

// Scanner handles mDNS discovery of TCP companion-radio bridges.
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery.
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings.
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDevices discovers every bridge on the local network.
func (s *Scanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext discovers devices with a custom context.
func (s *Scanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	devices := make([]*Device, 0)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			if device := s.parseServiceEntry(entry); device != nil {
				devices = append(devices, device)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	return devices, nil
}

// WaitForDevice waits for a specific bridge by instance name.
func (s *Scanner) WaitForDevice(name string) (*Device, error) {
	return s.WaitForDeviceWithContext(context.Background(), name)
}

// WaitForDeviceWithContext waits for a specific bridge with a custom context.
func (s *Scanner) WaitForDeviceWithContext(ctx context.Context, name string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil && device.Name == name {
				deviceChan <- device
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("bridge %q not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Unlike the HTTP-serial-number scheme this replaces, any advertised
// _meshcore._tcp instance is accepted — the bridge's own hostname is
// the identity, not a parsed serial number.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	hostname := entry.HostName
	if hostname == "" {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	name := strings.TrimSuffix(strings.TrimSuffix(hostname, "."), ".local")

	return &Device{
		Name:         name,
		Hostname:     hostname,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForDevices is a convenience function to scan for bridges with a custom timeout.
func ScanForDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices()
}

// QuickScan performs a fast scan with a 3-second timeout.
func QuickScan() ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForDevices()
}

// FindDevice searches for a specific bridge by instance name with default timeout.
func FindDevice(name string) (*Device, error) {
	scanner := NewScanner()
	return scanner.WaitForDevice(name)
}
