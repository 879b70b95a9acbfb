// Package discovery advertises and finds remote dialog hosts over mDNS.
//
// A host started with "orbis-ime serve --advertise" registers an
// "_orbis-ime._tcp" service whose TXT records carry the WebSocket path, the
// build version and the preset names it serves:
//
//	path=/dialog
//	version=1.2.0
//	presets=default,pin,search
//
// # Usage Example
//
//	hosts, err := discovery.ScanForHosts(ctx, 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, host := range hosts {
//	    fmt.Println(host.Instance, host.DialogURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Hosts must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
