package discovery

import (
	"fmt"
	"time"
)

// Device represents a discovered TCP companion-radio bridge on the
// local network.
type Device struct {
	// Name is the mDNS instance name (e.g., "meshcore-node-01").
	Name string

	// Hostname is the mDNS hostname (e.g., "meshcore-node-01.local").
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.16").
	IP string

	// Port is the TCP port the bridge listens on.
	Port int

	// Metadata contains additional mDNS TXT record data.
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered.
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device.
func (d *Device) String() string {
	return fmt.Sprintf("MeshCore bridge %s (%s) at %s:%d", d.Name, d.Hostname, d.IP, d.Port)
}

// Addr returns the host:port a transport.Transport should dial.
func (d *Device) Addr() string {
	return fmt.Sprintf("%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found.
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
