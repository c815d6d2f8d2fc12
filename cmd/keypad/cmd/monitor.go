package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/layout"
	"github.com/spf13/cobra"
)

var (
	monInterval uint32
	monDuration uint32
	monDebounce uint32
	monHold     uint32
	monScript   []string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll the matrix and print press/hold/release events",
	Long: `Poll the keypad at a fixed cadence and print every committed lifecycle
transition. With the simulator driver the clock is virtual and --script drives
switch closures, so runs are deterministic.

Script entries are "at:op:row,col" with at in milliseconds and op one of
close or open.

Examples:
  # Press (0,0) at 100 ms, release it at 400 ms, watch for one second
  keypad monitor --layout testdata/panel.kpd --duration 1000 \
      --script 100:close:0,0 --script 400:open:0,0

  # Watch a real keypad for ten seconds with a faster hold threshold
  keypad monitor --layout panel.kpd --driver periph --duration 10000 --hold 500`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVarP(&layoutFile, "layout", "l", "",
		"keypad layout file (.kpd)")
	monitorCmd.Flags().StringVarP(&layoutName, "name", "n", "",
		"keypad name within the layout file")
	monitorCmd.Flags().StringVarP(&driverType, "driver", "d", "simulator",
		"line driver (simulator, bridge, periph, rpio)")
	monitorCmd.Flags().Uint32Var(&monInterval, "interval", 10,
		"poll interval in milliseconds")
	monitorCmd.Flags().Uint32Var(&monDuration, "duration", 0,
		"stop after this many milliseconds (0 = run until interrupted)")
	monitorCmd.Flags().Uint32Var(&monDebounce, "debounce", 0,
		"override debounce time in milliseconds")
	monitorCmd.Flags().Uint32Var(&monHold, "hold", 0,
		"override hold time in milliseconds")
	monitorCmd.Flags().StringArrayVar(&monScript, "script", nil,
		"simulator: timed switch events, at:op:row,col")

	monitorCmd.MarkFlagRequired("layout")
}

// scriptEvent is one timed simulator closure change.
type scriptEvent struct {
	at      uint32
	closing bool
	row     int
	col     int
}

func parseScript(l *layout.Layout, entries []string) ([]scriptEvent, error) {
	var events []scriptEvent
	for _, e := range entries {
		parts := strings.SplitN(e, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("script entry %q must be at:op:row,col", e)
		}
		at, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("script entry %q: %w", e, err)
		}
		var closing bool
		switch parts[1] {
		case "close":
			closing = true
		case "open":
			closing = false
		default:
			return nil, fmt.Errorf("script entry %q: op must be close or open", e)
		}
		row, col, err := parseCoord(l, parts[2])
		if err != nil {
			return nil, err
		}
		events = append(events, scriptEvent{at: uint32(at), closing: closing, row: row, col: col})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].at < events[j].at })
	return events, nil
}

func describeKey(key rune) string {
	if key == keypad.NoKey {
		return "(none)"
	}
	return fmt.Sprintf("%q", key)
}

func runMonitor(cmd *cobra.Command, args []string) error {
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
	if len(monScript) > 0 && !isSim {
		return fmt.Errorf("--script only applies to the simulator driver")
	}
	if isSim && monDuration == 0 {
		return fmt.Errorf("--duration is required with the simulator driver")
	}
	script, err := parseScript(l, monScript)
	if err != nil {
		return err
	}

	kp, err := l.Build(drv)
	if err != nil {
		return err
	}
	if monDebounce != 0 {
		kp.SetDebounceTime(monDebounce)
	}
	if monHold != 0 {
		kp.SetHoldTime(monHold)
	}

	if isSim {
		// Move past the power-on debounce window so a script event at 0 ms
		// commits like a press on a long-running device would.
		sim.Advance(1000)
	}

	start := drv.Now()
	var elapsed uint32

	kp.AddEventListener(func(key rune) {
		fmt.Printf("  [%6d ms] %-8s %s\n", elapsed, kp.State(), describeKey(key))
	})

	fmt.Printf("Monitoring %q (%dx%d) every %d ms...\n",
		l.Name, len(l.RowLines), len(l.ColLines), monInterval)

	next := 0
	for {
		elapsed = drv.Now() - start

		for next < len(script) && script[next].at <= elapsed {
			ev := script[next]
			if ev.closing {
				sim.Close(l.RowLines[ev.row], l.ColLines[ev.col])
			} else {
				sim.Open(l.RowLines[ev.row], l.ColLines[ev.col])
			}
			next++
		}

		kp.GetKey()

		if monDuration != 0 && elapsed >= monDuration {
			break
		}

		if isSim {
			sim.Advance(monInterval)
		} else {
			time.Sleep(time.Duration(monInterval) * time.Millisecond)
		}
	}

	fmt.Printf("Done after %d ms, final state %s.\n", elapsed, kp.State())
	return nil
}
