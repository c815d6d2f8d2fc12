package keypad

import (
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	// Keypad bridge USB identifiers (Raspberry Pi Pico running the bridge
	// firmware).
	VendorIDRaspberryPi = 0x2E8A
	ProductIDBridge     = 0x10A7

	// Default packet size for the bridge vendor interface.
	DefaultPacketSize = 64
	DefaultTimeout    = 5 * time.Second
)

// USBTransport handles USB communication with a keypad bridge.
type USBTransport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	intf *gousb.Interface

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	packetSize int
	timeout    time.Duration

	vid uint16
	pid uint16
}

// NewUSBTransport creates a USB transport for a keypad bridge.
func NewUSBTransport(vid, pid uint16) (*USBTransport, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("USB error: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("device not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}

	// Set auto-detach kernel driver (important for Linux)
	if err := dev.SetAutoDetach(true); err != nil {
		// Not fatal on all platforms
		// Continue anyway
	}

	transport := &USBTransport{
		ctx:        ctx,
		dev:        dev,
		packetSize: DefaultPacketSize,
		timeout:    DefaultTimeout,
		vid:        vid,
		pid:        pid,
	}

	if err := transport.claimInterface(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}

	return transport, nil
}

// claimInterface finds and claims the bridge vendor interface.
func (t *USBTransport) claimInterface() error {
	cfg, err := t.dev.Config(1)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	// The bridge puts line control on a vendor-specific interface (0xFF);
	// a CDC console may sit on the other interfaces.
	var vendorIntfNum int = -1
	for _, intf := range cfg.Desc.Interfaces {
		if len(intf.AltSettings) > 0 {
			alt := intf.AltSettings[0]
			if alt.Class == gousb.ClassVendorSpec {
				vendorIntfNum = intf.Number
				break
			}
		}
	}

	if vendorIntfNum == -1 {
		// Fall back to interface 0
		vendorIntfNum = 0
	}

	intf, err := cfg.Interface(vendorIntfNum, 0)
	if err != nil {
		return fmt.Errorf("failed to claim interface %d: %w", vendorIntfNum, err)
	}
	t.intf = intf

	if err := t.findEndpoints(); err != nil {
		intf.Close()
		return err
	}

	return nil
}

// findEndpoints discovers the bulk IN and OUT endpoints.
func (t *USBTransport) findEndpoints() error {
	setting := t.intf.Setting

	var outAddr int
	for _, ep := range setting.Endpoints {
		if ep.TransferType == gousb.TransferTypeBulk {
			if ep.Direction == gousb.EndpointDirectionOut {
				outAddr = ep.Number
				break
			}
		}
	}

	if outAddr == 0 {
		return fmt.Errorf("bulk OUT endpoint not found")
	}

	var inAddr int
	for _, ep := range setting.Endpoints {
		if ep.TransferType == gousb.TransferTypeBulk {
			if ep.Direction == gousb.EndpointDirectionIn {
				inAddr = ep.Number
				t.packetSize = ep.MaxPacketSize
				break
			}
		}
	}

	if inAddr == 0 {
		return fmt.Errorf("bulk IN endpoint not found")
	}

	epOut, err := t.intf.OutEndpoint(outAddr)
	if err != nil {
		return fmt.Errorf("failed to open OUT endpoint: %w", err)
	}
	t.epOut = epOut

	epIn, err := t.intf.InEndpoint(inAddr)
	if err != nil {
		return fmt.Errorf("failed to open IN endpoint: %w", err)
	}
	t.epIn = epIn

	return nil
}

// Write sends a command packet to the bridge. Packets are fixed size, padded
// if necessary.
func (t *USBTransport) Write(data []byte) (int, error) {
	packet := make([]byte, t.packetSize)
	copy(packet, data)

	n, err := t.epOut.Write(packet)
	if err != nil {
		return 0, fmt.Errorf("USB write failed: %w", err)
	}

	return n, nil
}

// Read receives a response packet from the bridge.
func (t *USBTransport) Read(data []byte) (int, error) {
	n, err := t.epIn.Read(data)
	if err != nil {
		return 0, fmt.Errorf("USB read failed: %w", err)
	}
	return n, nil
}

// WriteRead performs a command/response transaction.
func (t *USBTransport) WriteRead(cmd []byte) ([]byte, error) {
	if _, err := t.Write(cmd); err != nil {
		return nil, err
	}

	resp := make([]byte, t.packetSize)
	n, err := t.Read(resp)
	if err != nil {
		return nil, err
	}

	return resp[:n], nil
}

// GetPacketSize returns the negotiated packet size.
func (t *USBTransport) GetPacketSize() int {
	return t.packetSize
}

// Close releases the interface, device and context.
func (t *USBTransport) Close() error {
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.dev != nil {
		t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}
