package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Host represents a remote dialog host found on the network
type Host struct {
	// Instance is the mDNS instance name (e.g., "living-room")
	Instance string

	// Hostname is the mDNS hostname (e.g., "console.local.")
	Hostname string

	// IP is the address to connect to, IPv4 when one was advertised
	IP string

	// Port is the HTTP port of the dialog endpoint
	Port int

	// Version is the orbis-ime build advertised in TXT "version"
	Version string

	// Path is the WebSocket path advertised in TXT "path"
	Path string

	// Presets lists the preset names advertised in TXT "presets"
	Presets []string

	// Metadata contains all mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the host was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the host
func (h *Host) String() string {
	return fmt.Sprintf("orbis-ime host %s (%s) at %s", h.Instance, h.Hostname, net.JoinHostPort(h.IP, strconv.Itoa(h.Port)))
}

// DialogURL returns the WebSocket URL of the host's dialog endpoint
func (h *Host) DialogURL() string {
	path := h.Path
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "ws://" + net.JoinHostPort(h.IP, strconv.Itoa(h.Port)) + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (h *Host) GetMetadata(key string) string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata[key]
}
