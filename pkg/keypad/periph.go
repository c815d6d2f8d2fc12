package keypad

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphDriver implements LineDriver over periph.io host GPIO. Line numbers
// are resolved through the pin registry as "GPIO<n>", which maps to the
// Broadcom numbering on a Raspberry Pi. Rows are configured with the
// internal pull-down so an undriven row reads Low, matching the
// active-high-column wiring the scanner assumes.
type PeriphDriver struct {
	pins  map[uint8]gpio.PinIO
	start time.Time

	lastErr error
}

// NewPeriphDriver initializes the periph host and returns a driver.
func NewPeriphDriver() (*PeriphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("keypad: periph host init: %w", err)
	}
	return &PeriphDriver{
		pins:  make(map[uint8]gpio.PinIO),
		start: time.Now(),
	}, nil
}

func (d *PeriphDriver) pin(line uint8) (gpio.PinIO, error) {
	if p, ok := d.pins[line]; ok {
		return p, nil
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", line))
	if p == nil {
		return nil, fmt.Errorf("keypad: no such GPIO line %d", line)
	}
	d.pins[line] = p
	return p, nil
}

// Info describes the periph host backend.
func (d *PeriphDriver) Info() (DriverInfo, error) {
	return DriverInfo{
		Name:   "periph.io GPIO",
		Vendor: "periph.io",
		Model:  "host gpioreg",
		Notes:  "lines resolved as GPIO<n>",
	}, nil
}

func (d *PeriphDriver) ConfigureOutput(line uint8) error {
	p, err := d.pin(line)
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("keypad: configure GPIO%d as output: %w", line, err)
	}
	return nil
}

func (d *PeriphDriver) ConfigureInput(line uint8) error {
	p, err := d.pin(line)
	if err != nil {
		return err
	}
	if err := p.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return fmt.Errorf("keypad: configure GPIO%d as input: %w", line, err)
	}
	return nil
}

func (d *PeriphDriver) SetLine(line uint8, level Level) {
	p, err := d.pin(line)
	if err != nil {
		if d.lastErr == nil {
			d.lastErr = err
		}
		return
	}
	lv := gpio.Low
	if level == High {
		lv = gpio.High
	}
	if err := p.Out(lv); err != nil && d.lastErr == nil {
		d.lastErr = err
	}
}

func (d *PeriphDriver) ReadLine(line uint8) Level {
	p, err := d.pin(line)
	if err != nil {
		if d.lastErr == nil {
			d.lastErr = err
		}
		return Low
	}
	return Level(p.Read() == gpio.High)
}

// Err returns the first failure seen on an error-less path since the last
// call, then clears it.
func (d *PeriphDriver) Err() error {
	err := d.lastErr
	d.lastErr = nil
	return err
}

// Now returns milliseconds since the driver was created, wrapping modulo
// 2^32.
func (d *PeriphDriver) Now() uint32 {
	return uint32(time.Since(d.start).Milliseconds())
}

func (d *PeriphDriver) Delay(dur time.Duration) {
	time.Sleep(dur)
}
