//go:build linux

package keypad

import (
	"fmt"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIODriver implements LineDriver over memory-mapped Broadcom GPIO via
// go-rpio. It avoids the sysfs/chardev round trip of the periph backend,
// which matters when the settle pause is the dominant per-column cost.
// Linux only: it maps /dev/gpiomem.
type RPIODriver struct {
	start time.Time
}

// NewRPIODriver maps the GPIO range.
func NewRPIODriver() (*RPIODriver, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("keypad: rpio open: %w", err)
	}
	return &RPIODriver{start: time.Now()}, nil
}

// Info describes the rpio backend.
func (d *RPIODriver) Info() (DriverInfo, error) {
	return DriverInfo{
		Name:   "go-rpio GPIO",
		Vendor: "Broadcom",
		Model:  "memory-mapped /dev/gpiomem",
	}, nil
}

func (d *RPIODriver) ConfigureOutput(line uint8) error {
	p := rpio.Pin(line)
	p.Output()
	p.Low()
	return nil
}

func (d *RPIODriver) ConfigureInput(line uint8) error {
	p := rpio.Pin(line)
	p.Input()
	p.PullDown()
	return nil
}

func (d *RPIODriver) SetLine(line uint8, level Level) {
	p := rpio.Pin(line)
	if level == High {
		p.High()
	} else {
		p.Low()
	}
}

func (d *RPIODriver) ReadLine(line uint8) Level {
	return Level(rpio.Pin(line).Read() == rpio.High)
}

// Now returns milliseconds since the driver was created, wrapping modulo
// 2^32.
func (d *RPIODriver) Now() uint32 {
	return uint32(time.Since(d.start).Milliseconds())
}

func (d *RPIODriver) Delay(dur time.Duration) {
	time.Sleep(dur)
}

// Close unmaps the GPIO range.
func (d *RPIODriver) Close() error {
	return rpio.Close()
}
