// Package discovery provides mDNS-based discovery of TCP companion-radio
// bridges on the local network.
//
// This package implements multicast DNS (mDNS) service discovery to
// automatically locate bridges that expose a companion radio's frames
// over plain TCP. Bridges advertise themselves using the
// "_meshcore._tcp" service type.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for "_meshcore._tcp" service advertisements
//  3. Collects bridge information (hostname, IP, port, TXT metadata)
//  4. Returns a list of discovered bridges after the timeout period
//
// # Usage Example
//
//	devices, err := discovery.ScanForDevices(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, device := range devices {
//	    fmt.Printf("Found: %s at %s\n", device.Name, device.Addr())
//	}
//
// # Device Information
//
// Each discovered device includes:
//   - Name: the bridge's mDNS instance name, derived from its hostname
//   - IP / Port: where to dial a meshtransport/tcp.Transport
//   - Metadata: TXT record key/value pairs (e.g. firmware version)
//
// # Network Requirements
//
//   - Requires multicast support on the network interface
//   - Bridges must be on the same local network segment
//   - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
