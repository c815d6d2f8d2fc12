package keypad

import (
	"errors"
	"fmt"
	"time"
)

// Level is the logic level of a digital line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// DriverInfo describes capabilities reported by a line driver implementation.
type DriverInfo struct {
	Name         string
	Vendor       string
	Model        string
	SerialNumber string
	Firmware     string
	LineCount    int // number of addressable lines, 0 if unbounded
	MaxSettle    time.Duration
	Notes        string
}

// LineDriver abstracts the physical or virtual digital I/O a keypad matrix is
// wired to. Columns are configured as outputs and driven; rows are configured
// as inputs and sampled. SetLine and ReadLine have no error return: once a
// line is configured, driving and sampling it is assumed to succeed, and the
// scan loops carry no recoverable error paths. Configuration errors surface
// from Keypad.Begin.
//
// Now must be a monotonic millisecond counter. It is compared with modular
// uint32 subtraction, so wrapping around after ~49 days costs at most one
// delayed classification cycle rather than a spurious duration.
type LineDriver interface {
	Info() (DriverInfo, error)
	ConfigureOutput(line uint8) error
	ConfigureInput(line uint8) error
	SetLine(line uint8, level Level)
	ReadLine(line uint8) Level
	Now() uint32
	Delay(d time.Duration)
}

// ErrNotImplemented lets backends signal that a requested capability is not
// yet available without relying on fmt.Errorf each time.
var ErrNotImplemented = errors.New("keypad: not implemented")

// ValidateMatrix checks that the keymap dimensions agree with the row and
// column line lists and returns the matrix size. Callers get one contract
// check at construction time; nothing re-validates afterwards.
func ValidateMatrix(keymap [][]rune, rowLines, colLines []uint8) (rows, cols int, err error) {
	rows = len(rowLines)
	cols = len(colLines)
	if rows == 0 || cols == 0 {
		return 0, 0, fmt.Errorf("keypad: matrix must have at least one row and one column, got %dx%d", rows, cols)
	}
	if len(keymap) != rows {
		return 0, 0, fmt.Errorf("keypad: keymap has %d rows, line list has %d", len(keymap), rows)
	}
	for r, kr := range keymap {
		if len(kr) != cols {
			return 0, 0, fmt.Errorf("keypad: keymap row %d has %d columns, line list has %d", r, len(kr), cols)
		}
	}
	return rows, cols, nil
}
