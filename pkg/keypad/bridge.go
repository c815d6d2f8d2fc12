package keypad

import (
	"fmt"
	"sync"
	"time"
)

// BridgeDriver implements LineDriver over a USB keypad bridge. Timing comes
// from the host side: the bridge only moves line state, the millisecond
// clock and the settle pause run here.
type BridgeDriver struct {
	transport *USBTransport
	protocol  *BridgeProtocol

	info  DriverInfo
	start time.Time

	lastErr error

	mu sync.Mutex // Protect concurrent transactions
}

// NewBridgeDriver opens a keypad bridge at the given VID/PID and queries its
// identity.
func NewBridgeDriver(vid, pid uint16) (*BridgeDriver, error) {
	transport, err := NewUSBTransport(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open USB device: %w", err)
	}

	protocol := NewBridgeProtocol(transport.GetPacketSize())

	drv := &BridgeDriver{
		transport: transport,
		protocol:  protocol,
		start:     time.Now(),
	}

	if err := drv.ping(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("bridge not responding: %w", err)
	}

	if err := drv.queryInfo(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("failed to query device info: %w", err)
	}

	return drv, nil
}

// ping verifies the firmware answers on the vendor interface.
func (d *BridgeDriver) ping() error {
	resp, err := d.transport.WriteRead(d.protocol.EncodePing())
	if err != nil {
		return err
	}
	return d.protocol.DecodePing(resp)
}

// queryInfo retrieves device information from the bridge.
func (d *BridgeDriver) queryInfo() error {
	cmd := d.protocol.EncodeInfo(InfoVendor)
	resp, err := d.transport.WriteRead(cmd)
	if err != nil {
		return err
	}
	vendor, _ := d.protocol.DecodeInfo(resp)

	cmd = d.protocol.EncodeInfo(InfoProduct)
	resp, _ = d.transport.WriteRead(cmd)
	product, _ := d.protocol.DecodeInfo(resp)

	cmd = d.protocol.EncodeInfo(InfoSerialNum)
	resp, _ = d.transport.WriteRead(cmd)
	serial, _ := d.protocol.DecodeInfo(resp)

	cmd = d.protocol.EncodeInfo(InfoFirmware)
	resp, _ = d.transport.WriteRead(cmd)
	firmware, _ := d.protocol.DecodeInfo(resp)

	d.info = DriverInfo{
		Name:         "Keypad Bridge",
		Vendor:       vendor,
		Model:        product,
		SerialNumber: serial,
		Firmware:     firmware,
		LineCount:    30, // Pico GP0-GP29
		MaxSettle:    time.Second,
	}

	return nil
}

// Info returns the bridge identity collected at open.
func (d *BridgeDriver) Info() (DriverInfo, error) {
	return d.info, nil
}

func (d *BridgeDriver) ConfigureOutput(line uint8) error {
	return d.configLine(line, DirOutput)
}

func (d *BridgeDriver) ConfigureInput(line uint8) error {
	return d.configLine(line, DirInput)
}

func (d *BridgeDriver) configLine(line uint8, dir byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.transport.WriteRead(d.protocol.EncodeConfigLine(line, dir))
	if err != nil {
		return err
	}
	return d.protocol.DecodeConfigLine(resp)
}

// SetLine drives one output line. Transport failures cannot be returned on
// this path; they are retained and reported by Err.
func (d *BridgeDriver) SetLine(line uint8, level Level) {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.transport.WriteRead(d.protocol.EncodeSetLine(line, level))
	if err == nil {
		err = d.protocol.DecodeSetLine(resp)
	}
	if err != nil && d.lastErr == nil {
		d.lastErr = err
	}
}

// ReadLine samples one input line. On transport failure it reads Low and
// the failure is retained for Err.
func (d *BridgeDriver) ReadLine(line uint8) Level {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.transport.WriteRead(d.protocol.EncodeReadLines([]uint8{line}))
	if err != nil {
		if d.lastErr == nil {
			d.lastErr = err
		}
		return Low
	}

	levels, err := d.protocol.DecodeReadLines(resp, 1)
	if err != nil {
		if d.lastErr == nil {
			d.lastErr = err
		}
		return Low
	}
	return levels[0]
}

// Err returns the first transport failure seen on an error-less path since
// the last call, then clears it. Poll it between scans when link health
// matters.
func (d *BridgeDriver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.lastErr
	d.lastErr = nil
	return err
}

// Now returns milliseconds since the driver was opened, wrapping modulo
// 2^32.
func (d *BridgeDriver) Now() uint32 {
	return uint32(time.Since(d.start).Milliseconds())
}

// Delay blocks for the settle pause.
func (d *BridgeDriver) Delay(dur time.Duration) {
	time.Sleep(dur)
}

// Close releases the USB transport.
func (d *BridgeDriver) Close() error {
	return d.transport.Close()
}
