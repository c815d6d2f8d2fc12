//go:build linux

package cmd

import "github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"

func openRPIO() (keypad.LineDriver, func(), error) {
	drv, err := keypad.NewRPIODriver()
	if err != nil {
		return nil, nil, err
	}
	return drv, func() { drv.Close() }, nil
}
