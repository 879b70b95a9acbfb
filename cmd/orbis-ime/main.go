// Orbis-ime hosts Orbis-style IME text-input dialogs.
//
// A dialog can run in the local terminal, or be served to remote rendering
// hosts over WebSocket and advertised on the local network with mDNS.
// Dialog behaviour comes from named presets in the user's config file.
//
// Usage:
//
//	orbis-ime [command] [flags]
//
// Running without arguments opens the default preset in the terminal.
// See 'orbis-ime --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/orbis-ime/internal/config"
	"github.com/muurk/orbis-ime/internal/logging"
	"github.com/muurk/orbis-ime/internal/version"
)

// Global flags
var (
	configPath string
	logLevel   string
)

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "orbis-ime",
	Short: "Orbis IME dialog host",
	Long: `Host Orbis-style IME text-input dialogs.

Dialogs are described by named presets (title, capacity, keyboard type,
filters) kept in the user's config file. A dialog can run in this terminal
or be served to remote rendering hosts over WebSocket.

If no command is specified, the default preset opens in the terminal.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless --log-level or ORBIS_IME_LOG_LEVEL is set
		return logging.Initialize(logLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDialog(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "orbis-ime %s\n", version.Get())
	},
}

// loadRegistry reads --config when given, the user config file otherwise
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadRegistry()
}
