package discovery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/orbis-ime/internal/logging"
)

// Announcement describes a remote dialog host to advertise
type Announcement struct {
	Instance string
	Port     int
	Version  string
	Path     string
	Presets  []string
}

// TXT returns the announcement's TXT records
func (a Announcement) TXT() []string {
	path := a.Path
	if path == "" {
		path = DefaultPath
	}
	txt := []string{"path=" + path}
	if a.Version != "" {
		txt = append(txt, "version="+a.Version)
	}
	if len(a.Presets) > 0 {
		presets := slices.Clone(a.Presets)
		slices.Sort(presets)
		txt = append(txt, "presets="+strings.Join(presets, ","))
	}
	return txt
}

// Advertiser keeps a service registration alive until Shutdown
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers the host on all multicast interfaces
func Advertise(a Announcement) (*Advertiser, error) {
	if a.Instance == "" {
		return nil, fmt.Errorf("advertise: instance name is required")
	}
	if a.Port <= 0 || a.Port > 65535 {
		return nil, fmt.Errorf("advertise: invalid port %d", a.Port)
	}

	server, err := zeroconf.Register(a.Instance, ServiceType, ServiceDomain, a.Port, a.TXT(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising dialog host",
		zap.String("instance", a.Instance),
		zap.String("service", ServiceType),
		zap.Int("port", a.Port),
	)
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the registration. Safe to call more than once.
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
}
