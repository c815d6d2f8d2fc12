package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "keypad",
	Short: "Matrix keypad scanner and event monitor",
	Long: `A matrix keypad tool for scanning row/column switch matrices, watching
press/hold/release events, and validating keypad layout files.

Examples:
  keypad interfaces                                  # List line driver backends
  keypad layout testdata/panel.kpd                   # Validate a layout file
  keypad scan --layout panel.kpd --press 0,0         # One sweep with the simulator
  keypad monitor --layout panel.kpd --driver periph  # Watch events on real GPIO`,
	Version: "0.9.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
