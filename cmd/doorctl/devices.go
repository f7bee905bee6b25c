package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"doorctl/internal/registry"
)

var (
	addName  string
	addLogin string
	addPass  string
	addDoor  int
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage the device registry",
	Long: `List, register and remove access panels in the local device
registry. The registry stores each panel's address, credentials and
door index so commands can omit them.`,
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered panels",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		devices := store.List()
		if len(devices) == 0 {
			fmt.Println("No devices registered.")
			fmt.Println("Use 'doorctl devices add <ip>' to register a panel.")
			return nil
		}

		fmt.Printf("Registered panels (%s):\n\n", store.Path())
		for i, d := range devices {
			name := d.Name
			if name == "" {
				name = "-"
			}
			status := "offline"
			if d.Online {
				status = "online"
			}
			fmt.Printf("%d. %s\n", i+1, d.Address)
			fmt.Printf("   Name:   %s\n", name)
			fmt.Printf("   Login:  %s\n", d.Login)
			fmt.Printf("   Door:   %d\n", d.Door)
			fmt.Printf("   Status: %s", status)
			if d.State != "" {
				fmt.Printf(", last state %s", d.State)
			}
			fmt.Println()
			fmt.Println()
		}
		return nil
	},
}

var devicesAddCmd = &cobra.Command{
	Use:   "add <ip>",
	Short: "Register a panel",
	Example: `  # Register with an interactive password prompt
  doorctl devices add 192.168.1.50 --login admin --name "Front door"

  # Non-interactive
  doorctl devices add 192.168.1.50 --login admin --password secret --door 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		address := args[0]
		password := addPass
		if password == "" {
			password, err = promptPassword(fmt.Sprintf("Password for %s@%s: ", addLogin, address))
			if err != nil {
				return err
			}
		}

		device := registry.Device{
			Address:  address,
			Name:     addName,
			Login:    addLogin,
			Password: password,
			Door:     addDoor,
		}
		if err := store.Add(device); err != nil {
			return fmt.Errorf("failed to register panel: %w", err)
		}

		fmt.Printf("✓ Registered %s (door %d)\n", address, device.Door)
		return nil
	},
}

var devicesRemoveCmd = &cobra.Command{
	Use:     "remove <ip>",
	Short:   "Remove a panel from the registry",
	Example: `  doorctl devices remove 192.168.1.50`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Removed %s\n", args[0])
		return nil
	},
}

func init() {
	devicesAddCmd.Flags().StringVar(&addName, "name", "", "Human-readable panel name")
	devicesAddCmd.Flags().StringVar(&addLogin, "login", "admin", "Panel login")
	devicesAddCmd.Flags().StringVar(&addPass, "password", "", "Panel password (prompted if omitted)")
	devicesAddCmd.Flags().IntVar(&addDoor, "door", 1, "Door index")

	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
	rootCmd.AddCommand(devicesCmd)
}
