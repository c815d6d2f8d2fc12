package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/layout"
)

var (
	layoutFile string
	layoutName string
	driverType string
)

// openDriver resolves --driver into a line driver plus its teardown.
func openDriver(kind string) (keypad.LineDriver, func(), error) {
	switch kind {
	case "simulator", "sim":
		return keypad.NewSimDriver(keypad.DriverInfo{Name: "Simulator"}), func() {}, nil

	case "bridge":
		drv, err := keypad.NewBridgeDriver(keypad.VendorIDRaspberryPi, keypad.ProductIDBridge)
		if err != nil {
			return nil, nil, err
		}
		return drv, func() { drv.Close() }, nil

	case "periph":
		drv, err := keypad.NewPeriphDriver()
		if err != nil {
			return nil, nil, err
		}
		return drv, func() {}, nil

	case "rpio":
		return openRPIO()

	default:
		return nil, nil, fmt.Errorf("unknown driver %q (simulator, bridge, periph, rpio)", kind)
	}
}

// loadLayout parses --layout and picks the requested keypad block, or the
// only one when --name is not given.
func loadLayout() (*layout.Layout, error) {
	if layoutFile == "" {
		return nil, fmt.Errorf("--layout is required")
	}

	parser, err := layout.NewParser()
	if err != nil {
		return nil, err
	}
	file, err := parser.ParseFile(layoutFile)
	if err != nil {
		return nil, err
	}
	layouts, err := layout.Layouts(file)
	if err != nil {
		return nil, err
	}

	if layoutName == "" {
		if len(layouts) > 1 {
			return nil, fmt.Errorf("%s defines %d keypads, pick one with --name", layoutFile, len(layouts))
		}
		return layouts[0], nil
	}
	for _, l := range layouts {
		if l.Name == layoutName {
			return l, nil
		}
	}
	return nil, fmt.Errorf("keypad %q not found in %s", layoutName, layoutFile)
}

// parseCoord parses a "row,col" matrix coordinate and bounds-checks it
// against the layout.
func parseCoord(l *layout.Layout, s string) (row, col int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("coordinate %q must be row,col", s)
	}
	row, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("coordinate %q: %w", s, err)
	}
	col, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("coordinate %q: %w", s, err)
	}
	if row < 0 || row >= len(l.RowLines) || col < 0 || col >= len(l.ColLines) {
		return 0, 0, fmt.Errorf("coordinate %q outside %dx%d matrix", s, len(l.RowLines), len(l.ColLines))
	}
	return row, col, nil
}
