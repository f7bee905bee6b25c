package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"doorctl/internal/discovery"
	"doorctl/internal/isapi"
	"doorctl/internal/oplog"
	"doorctl/internal/registry"
	"doorctl/internal/ui"
)

// Command flags
var (
	deviceIP     string
	deviceLogin  string
	devicePass   string
	doorNo       int
	stateArg     string
	registryPath string
	logDir       string
	scanTimeout  int
	panelTimeout int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "Device registry file (default: per-user config dir)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "logs", "Directory for operation logs")

	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(wizardCmd)
}

// setCmd issues an arbitrary door state change
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a door state on a panel",
	Long: `Issue a door state change to an access panel.

The target panel may be registered (doorctl devices add) or addressed
directly with --ip and --login. When --password is omitted for an
unregistered panel, it is prompted interactively.

States: open (1), close (2), resume (3).`,
	Example: `  # Open door 1 on a registered panel
  doorctl set --ip 192.168.1.50 --state open

  # Close a door on an unregistered panel
  doorctl set --ip 192.168.1.50 --login admin --state close

  # Resume normal schedule on door 2
  doorctl set --ip 192.168.1.50 --state resume --door 2`,
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&deviceIP, "ip", "", "Panel IP address (required)")
	setCmd.Flags().StringVar(&deviceLogin, "login", "", "Panel login (overrides registry)")
	setCmd.Flags().StringVar(&devicePass, "password", "", "Panel password (prompted if needed)")
	setCmd.Flags().StringVar(&stateArg, "state", "", "Door state: open, close, resume or 1-3 (required)")
	setCmd.Flags().IntVar(&doorNo, "door", 0, "Door index (overrides registry, default 1)")
	setCmd.Flags().IntVar(&panelTimeout, "timeout", 10, "Per-request timeout in seconds")
	setCmd.MarkFlagRequired("ip")
	setCmd.MarkFlagRequired("state")
}

func runSet(cmd *cobra.Command, args []string) error {
	command, err := parseState(stateArg)
	if err != nil {
		return err
	}
	return controlDoor(command)
}

var openCmd = &cobra.Command{
	Use:     "open",
	Short:   "Open a door",
	Example: `  doorctl open --ip 192.168.1.50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlDoor(isapi.CommandOpen)
	},
}

var closeCmd = &cobra.Command{
	Use:     "close",
	Short:   "Close a door",
	Example: `  doorctl close --ip 192.168.1.50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlDoor(isapi.CommandClose)
	},
}

var resumeCmd = &cobra.Command{
	Use:     "resume",
	Short:   "Resume a door's normal schedule",
	Example: `  doorctl resume --ip 192.168.1.50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlDoor(isapi.CommandResume)
	},
}

func init() {
	for _, c := range []*cobra.Command{openCmd, closeCmd, resumeCmd} {
		c.Flags().StringVar(&deviceIP, "ip", "", "Panel IP address (required)")
		c.Flags().StringVar(&deviceLogin, "login", "", "Panel login (overrides registry)")
		c.Flags().StringVar(&devicePass, "password", "", "Panel password (prompted if needed)")
		c.Flags().IntVar(&doorNo, "door", 0, "Door index (overrides registry, default 1)")
		c.Flags().IntVar(&panelTimeout, "timeout", 10, "Per-request timeout in seconds")
		c.MarkFlagRequired("ip")
	}
}

// controlDoor resolves the target, runs the operation and prints the
// outcome.
func controlDoor(command isapi.DoorCommand) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	target, door, err := resolveTarget(store)
	if err != nil {
		return err
	}

	ctrl := isapi.NewController(oplog.New(logDir))
	if panelTimeout > 0 {
		ctrl.Timeout = time.Duration(panelTimeout) * time.Second
	}

	fmt.Printf("Sending %s to %s (door %d)...\n", command, target.Host, door)

	result, err := ctrl.SetDoorState(context.Background(), target, command, door)
	if err != nil {
		return err
	}

	if result.Succeeded {
		fmt.Printf("✓ %s\n", result.Message)
		if err := store.UpdateState(target.Host, command.String()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record device state: %v\n", err)
		}
		return nil
	}

	fmt.Printf("✗ %s\n", result.Message)
	return fmt.Errorf("%d step(s) failed", result.ErrorCount)
}

// resolveTarget builds the device target from the registry entry and
// any flag overrides, prompting for a password when none is available.
func resolveTarget(store *registry.Store) (isapi.DeviceTarget, int, error) {
	target := isapi.DeviceTarget{Host: deviceIP}
	door := 1

	if device, err := store.Lookup(deviceIP); err == nil {
		target.Login = device.Login
		target.Secret = device.Password
		if device.Door > 0 {
			door = device.Door
		}
	}

	if deviceLogin != "" {
		target.Login = deviceLogin
		target.Secret = devicePass
	}
	if devicePass != "" {
		target.Secret = devicePass
	}
	if doorNo > 0 {
		door = doorNo
	}

	if target.Login == "" {
		return target, door, fmt.Errorf("no login for %s: register the panel or pass --login", deviceIP)
	}

	if target.Secret == "" {
		secret, err := promptPassword(fmt.Sprintf("Password for %s@%s: ", target.Login, target.Host))
		if err != nil {
			return target, door, err
		}
		target.Secret = secret
	}

	return target, door, nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// scanCmd discovers panels on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for access panels on the network",
	Long: `Scan for access panels using mDNS/DNS-SD discovery.

Displays every discovered panel with its model, IP address and
metadata.`,
	Example: `  # Scan for 10 seconds (default)
  doorctl scan

  # Quick 3-second scan
  doorctl scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for access panels (timeout: %ds)...\n\n", scanTimeout)

	panels, err := discovery.ScanForPanels(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(panels) == 0 {
		fmt.Println("No panels found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the panel is powered on and on this network")
		fmt.Println("  - Some panels only answer mDNS from the same subnet")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Register the panel manually with 'doorctl devices add'")
		return nil
	}

	fmt.Printf("Found %d panel(s):\n\n", len(panels))

	for i, panel := range panels {
		fmt.Printf("%d. %s\n", i+1, panel.Hostname)
		fmt.Printf("   Model: %s\n", panel.Model)
		fmt.Printf("   IP:    %s:%d\n", panel.IP, panel.Port)
		if len(panel.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", panel.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'doorctl devices add <ip>' to register a panel")

	return nil
}

// wizardCmd launches the interactive TUI
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch the interactive door control wizard",
	Long: `Launch an interactive TUI listing registered panels.

Navigate with the arrow keys and press o, c or r to open, close or
resume the focused door.`,
	Example: `  doorctl wizard
  # Or simply (wizard is default):
  doorctl`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	ctrl := isapi.NewController(oplog.New(logDir))
	if err := ui.Run(store, ctrl); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}
	return nil
}

// parseState accepts a state name or its numeric value.
func parseState(s string) (isapi.DoorCommand, error) {
	switch s {
	case "open":
		return isapi.CommandOpen, nil
	case "close":
		return isapi.CommandClose, nil
	case "resume":
		return isapi.CommandResume, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid state %q (use open, close, resume or 1-3)", s)
	}
	return isapi.ParseCommand(n)
}

// openStore opens the device registry at the configured path.
func openStore() (*registry.Store, error) {
	path := registryPath
	if path == "" {
		var err error
		path, err = registry.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return registry.Open(path)
}
