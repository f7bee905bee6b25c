// Doorctl-server exposes the doorctl JSON API over HTTP.
//
// It serves door commands against registered panels, a device listing,
// and a WebSocket feed of operation events, with a background poller
// recording panel reachability.
//
// Usage:
//
//	doorctl-server server [flags]
//
// See 'doorctl-server server --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"doorctl/internal/config"
	"doorctl/internal/logging"
	"doorctl/internal/server"
	"doorctl/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "doorctl-server",
	Short: "Door Access Panel API Server",
	Long: `HTTP API server for network door access panels.

Exposes POST /api/door for door commands, GET /api/devices for the
registry listing, and GET /api/events as a WebSocket feed of operation
events.

Note: for one-off commands and registry management, use the separate
'doorctl' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	configPath string
	listenAddr string
	logLevel   string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the doorctl API server.

Configuration is read from a YAML file (listen address, registry path,
operation log directory, poll schedule, log level); flags override the
file. A missing config file starts the server with defaults.`,
	Example: `  # Start with the default per-user config
  doorctl-server server

  # Start on a custom address
  doorctl-server server --listen 127.0.0.1:9000

  # Start with an explicit config file
  doorctl-server server --config /etc/doorctl/server.yaml`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&configPath, "config", "", "Server config file (default: per-user config dir)")
	serverCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides config)")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if cfg.LogLevel != "" {
		if err := logging.Initialize(cfg.LogLevel); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	} else if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("doorctl-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
