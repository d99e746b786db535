// Package discovery provides mDNS-based discovery of iOS devices on the
// local network.
//
// iOS devices with WiFi sync enabled advertise their lockdown service as
// "_apple-mobdev2._tcp". Spotting a phone this way is useful before a scan:
// it confirms the device is on the network and reveals its advertised name
// and address without touching the device itself.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for lockdown service advertisements
//  3. Parses the WiFi MAC address out of each instance name
//  4. Collects device information (hostname, IP, port, TXT metadata)
//  5. Returns a list of discovered devices after the timeout period
//
// # Usage Example
//
//	// Discover devices with 10-second timeout
//	devices, err := discovery.ScanForDevices(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Print discovered devices
//	for _, device := range devices {
//	    fmt.Printf("Found: %s at %s (MAC: %s)\n",
//	        device.Name(), device.IP, device.MAC)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
