package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
	"github.com/spf13/cobra"
)

var (
	scanPressed []string
	scanMax     int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Perform one multi-key sweep of the matrix",
	Long: `Sweep the whole matrix once and print every key found closed, in scan order
(ascending column, then ascending row). Does not debounce; this is the raw
electrical picture.

Examples:
  # Simulate two closed keys on the panel layout
  keypad scan --layout testdata/panel.kpd --press 0,0 --press 3,2

  # Sweep a real keypad on Raspberry Pi GPIO
  keypad scan --layout panel.kpd --driver rpio`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&layoutFile, "layout", "l", "",
		"keypad layout file (.kpd)")
	scanCmd.Flags().StringVarP(&layoutName, "name", "n", "",
		"keypad name within the layout file")
	scanCmd.Flags().StringVarP(&driverType, "driver", "d", "simulator",
		"line driver (simulator, bridge, periph, rpio)")
	scanCmd.Flags().StringArrayVar(&scanPressed, "press", nil,
		"simulator: close the switch at row,col before scanning")
	scanCmd.Flags().IntVar(&scanMax, "max", 8,
		"buffer capacity; detections beyond this are dropped")

	scanCmd.MarkFlagRequired("layout")
}

func runScan(cmd *cobra.Command, args []string) error {
	l, err := loadLayout()
	if err != nil {
		return err
	}

	drv, cleanup, err := openDriver(driverType)
	if err != nil {
		return err
	}
	defer cleanup()

	sim, isSim := drv.(*keypad.SimDriver)
	if len(scanPressed) > 0 && !isSim {
		return fmt.Errorf("--press only applies to the simulator driver")
	}
	for _, p := range scanPressed {
		row, col, err := parseCoord(l, p)
		if err != nil {
			return err
		}
		sim.Close(l.RowLines[row], l.ColLines[col])
	}

	kp, err := l.Build(drv)
	if err != nil {
		return err
	}

	buf := make([]rune, scanMax)
	n := kp.GetKeys(buf)

	if verbose {
		info, _ := drv.Info()
		fmt.Printf("Driver: %s\n", info.Name)
		fmt.Printf("Matrix: %dx%d, buffer capacity %d\n", len(l.RowLines), len(l.ColLines), scanMax)
	}

	if n == 0 {
		fmt.Println("No keys active.")
		return nil
	}

	fmt.Printf("Found %d active key(s):", n)
	for _, k := range buf[:n] {
		fmt.Printf(" %q", k)
	}
	fmt.Println()

	return nil
}
