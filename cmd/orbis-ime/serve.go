package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/orbis-ime/internal/discovery"
	"github.com/muurk/orbis-ime/internal/metrics"
	"github.com/muurk/orbis-ime/internal/remote"
	"github.com/muurk/orbis-ime/internal/ui"
	"github.com/muurk/orbis-ime/internal/version"
)

// Serve command flags
var (
	listenAddr   string
	advertise    bool
	instanceName string
	idleTimeout  time.Duration
)

// serveCmd runs the remote dialog host
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dialogs to remote hosts over WebSocket",
	Long: `Run the remote dialog host.

Rendering hosts connect to /dialog?preset=<name> over WebSocket, send one
JSON message per frame and receive the drawn view back. The server also
exposes /healthz, /presets and Prometheus metrics on /metrics.

With --advertise the host announces itself over mDNS so 'orbis-ime scan'
can find it.`,
	Example: `  # Listen on the configured address (default :7780)
  orbis-ime serve

  # Listen on a specific port and announce over mDNS
  orbis-ime serve --listen :9000 --advertise --name living-room`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from preferences)")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the host over mDNS (default from preferences)")
	serveCmd.Flags().StringVar(&instanceName, "name", "", "mDNS instance name (default is the hostname)")
	serveCmd.Flags().DurationVar(&idleTimeout, "idle-timeout", remote.DefaultIdleTimeout, "Close dialogs idle for this long")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	prefs := reg.Preferences

	addr := prefs.ListenAddr
	if cmd.Flags().Changed("listen") {
		addr = listenAddr
	}
	announce := prefs.Advertise
	if cmd.Flags().Changed("advertise") {
		announce = advertise
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	collector := metrics.New()
	srv := remote.NewServer(reg, remote.WithMetrics(collector), remote.WithIdleTimeout(idleTimeout))

	presets := reg.PresetNames()
	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Remote IME host", "orbis-ime serve",
		ui.Param{Key: "Listen", Value: ln.Addr().String()},
		ui.Param{Key: "Dialog", Value: discovery.DefaultPath + "?preset=<name>"},
		ui.Param{Key: "Presets", Value: strings.Join(presets, ", ")},
		ui.Param{Key: "Advertise", Value: strconv.FormatBool(announce)},
	)

	if announce {
		name, err := announceName()
		if err != nil {
			_ = ln.Close()
			return err
		}
		adv, err := discovery.Advertise(discovery.Announcement{
			Instance: name,
			Port:     ln.Addr().(*net.TCPAddr).Port,
			Version:  version.Version,
			Path:     discovery.DefaultPath,
			Presets:  presets,
		})
		if err != nil {
			_ = ln.Close()
			return err
		}
		defer adv.Shutdown()
	}

	return srv.Serve(ctx, ln)
}

func announceName() (string, error) {
	if instanceName != "" {
		return instanceName, nil
	}
	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname, use --name: %w", err)
	}
	return strings.TrimSuffix(name, ".local"), nil
}

// Scan command flags
var scanTimeout int

// scanCmd discovers remote dialog hosts on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for remote dialog hosts on the network",
	Long: `Scan for orbis-ime hosts using mDNS/DNS-SD discovery.

This command listens for hosts started with 'orbis-ime serve --advertise'
and displays their addresses, dialog URLs and presets.`,
	Example: `  # Scan for the configured timeout (default 5 seconds)
  orbis-ime scan

  # Longer scan for busy networks
  orbis-ime scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from preferences)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	timeout := reg.Preferences.ScanTimeout
	if cmd.Flags().Changed("timeout") {
		timeout = scanTimeout
	}
	if timeout <= 0 {
		timeout = int(discovery.DefaultScanTimeout / time.Second)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.Printf("Scanning for orbis-ime hosts (timeout: %ds)...\n\n", timeout)

	hosts, err := discovery.ScanForHosts(cmd.Context(), time.Duration(timeout)*time.Second)
	if err != nil {
		printer.PrintFailure("Scan failed", err, []string{
			"Check that multicast traffic is allowed on this network",
			"Try increasing --timeout",
		})
		return err
	}

	if len(hosts) == 0 {
		printer.PrintWarning("No hosts found",
			ui.Param{Key: "Timeout", Value: fmt.Sprintf("%ds", timeout)},
			ui.Param{Key: "Hint", Value: "start one with 'orbis-ime serve --advertise'"},
		)
		return nil
	}

	printer.Printf("Found %d host(s):\n\n", len(hosts))
	for i, h := range hosts {
		printer.Printf("%d. %s\n", i+1, h.Instance)
		printer.Printf("   Address: %s\n", net.JoinHostPort(h.IP, strconv.Itoa(h.Port)))
		printer.Printf("   Dialog:  %s\n", h.DialogURL())
		if h.Version != "" {
			printer.Printf("   Version: %s\n", h.Version)
		}
		if len(h.Presets) > 0 {
			printer.Printf("   Presets: %s\n", strings.Join(h.Presets, ", "))
		}
		printer.Newline()
	}
	return nil
}
