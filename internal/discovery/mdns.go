package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/orbis-ime/internal/logging"
)

const (
	// ServiceType is the mDNS service type remote dialog hosts advertise
	ServiceType = "_orbis-ime._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for host discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port of a remote dialog host
	DefaultPort = 7780

	// DefaultPath is the WebSocket path of the dialog endpoint
	DefaultPath = "/dialog"
)

// Scanner handles mDNS host discovery
type Scanner struct {
	// Timeout is the maximum time to wait for host discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForHosts discovers all remote dialog hosts on the local network until
// the scanner timeout expires or ctx is done.
func (s *Scanner) ScanForHosts(ctx context.Context) ([]*Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var mu sync.Mutex
	var hosts []*Host
	seen := make(map[string]bool)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			host := parseServiceEntry(entry)
			if host == nil {
				continue
			}
			mu.Lock()
			if !seen[host.Instance] {
				seen[host.Instance] = true
				hosts = append(hosts, host)
				logging.Debug("Discovered dialog host", zap.String("instance", host.Instance), zap.String("ip", host.IP))
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// the resolver closes entries once the browse context ends
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Host(nil), hosts...), nil
}

// WaitForHost waits for a specific host by instance name
func (s *Scanner) WaitForHost(ctx context.Context, instance string) (*Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Host, 1)

	go func() {
		for entry := range entries {
			host := parseServiceEntry(entry)
			if host != nil && host.Instance == instance {
				select {
				case found <- host:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case host := <-found:
		return host, nil
	case <-ctx.Done():
		select {
		case host := <-found:
			return host, nil
		default:
		}
		return nil, fmt.Errorf("host %s not found within timeout", instance)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Host.
// Returns nil if the entry carries no instance name or no address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Host {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := parseTXT(entry.Text)

	var presets []string
	if list := metadata["presets"]; list != "" {
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				presets = append(presets, name)
			}
		}
	}

	return &Host{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Version:      metadata["version"],
		Path:         metadata["path"],
		Presets:      presets,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" TXT records. A key without "=" maps to "".
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		if key != "" {
			metadata[key] = value
		}
	}
	return metadata
}

// ScanForHosts is a convenience function to scan for hosts with a custom timeout
func ScanForHosts(ctx context.Context, timeout time.Duration) ([]*Host, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForHosts(ctx)
}
