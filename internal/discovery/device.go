package discovery

import (
	"fmt"
	"time"
)

// Device represents an iOS device discovered on the local network
type Device struct {
	// MAC is the device's WiFi MAC address, parsed from the mDNS
	// instance name (e.g., "aa:bb:cc:dd:ee:ff")
	MAC string

	// Hostname is the mDNS hostname (e.g., "Alices-iPhone.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.16")
	IP string

	// Port is the lockdown service port (typically 62078)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("iOS device %s (%s) at %s:%d", d.MAC, d.Hostname, d.IP, d.Port)
}

// Name returns the device's advertised name: the hostname without its
// mDNS suffix
func (d *Device) Name() string {
	name := d.Hostname
	for len(name) > 0 && name[len(name)-1] == '.' {
		name = name[:len(name)-1]
	}
	if len(name) > len(".local") && name[len(name)-len(".local"):] == ".local" {
		name = name[:len(name)-len(".local")]
	}
	return name
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
