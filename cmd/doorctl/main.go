// Doorctl is a command-line utility for network door access panels.
//
// It issues open, close and resume commands to panels speaking the
// HTTP/XML access-control protocol, keeps a local device registry, and
// discovers panels on the network.
//
// Usage:
//
//	doorctl [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'doorctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"doorctl/internal/logging"
	"doorctl/internal/version"
)

func main() {
	logging.InitializeFromEnv()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "doorctl",
	Short: "Door Access Panel Control Utility",
	Long: `A utility for controlling network door access panels.

Issues door open, close and resume commands over the panels' HTTP/XML
protocol, manages a local device registry, and discovers panels via
mDNS.

If no command is specified, the interactive wizard will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("doorctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
