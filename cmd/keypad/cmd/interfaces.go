package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
	"github.com/spf13/cobra"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List available line driver backends",
	Long: `Scan the host for keypad bridge devices and print a summary of the detected
transports. Use this to verify connectivity or select a driver before launching
other commands.`,
	RunE: runInterfaces,
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	infos, err := keypad.DiscoverInterfaces(ctx)
	if err != nil {
		return fmt.Errorf("discover interfaces: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No interfaces found.")
		return nil
	}

	fmt.Println("Detected keypad interfaces:")
	for _, iface := range infos {
		fmt.Printf("  - %s [%s] (VID:PID %04X:%04X)\n", iface.Label(), iface.Kind, iface.VendorID, iface.ProductID)
	}

	return nil
}
