//go:build !linux

package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
)

func openRPIO() (keypad.LineDriver, func(), error) {
	return nil, nil, fmt.Errorf("rpio driver: %w (linux only)", keypad.ErrNotImplemented)
}
