package keypad

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// InterfaceKind categorizes line driver families.
type InterfaceKind string

const (
	InterfaceKindBridge  InterfaceKind = "bridge"
	InterfaceKindPeriph  InterfaceKind = "periph"
	InterfaceKindRPIO    InterfaceKind = "rpio"
	InterfaceKindSim     InterfaceKind = "simulator"
	InterfaceKindUnknown InterfaceKind = "unknown"
)

// InterfaceInfo describes a detected line driver interface/transport.
type InterfaceInfo struct {
	Kind        InterfaceKind
	Description string
	VendorID    uint16
	ProductID   uint16
	Serial      string
	Path        string
}

// Label returns a user-friendly description for the interface.
func (i InterfaceInfo) Label() string {
	if i.Description != "" {
		return i.Description
	}
	if i.Kind != "" {
		return fmt.Sprintf("%s (%04X:%04X)", string(i.Kind), i.VendorID, i.ProductID)
	}
	return fmt.Sprintf("Interface %04X:%04X", i.VendorID, i.ProductID)
}

// DiscoverInterfaces enumerates connected keypad bridge USB devices that
// match known VID/PID pairs. It always returns at least the simulator entry
// so the tool can be exercised without hardware connected.
func DiscoverInterfaces(ctx context.Context) ([]InterfaceInfo, error) {
	var results []InterfaceInfo
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if info, ok := classifyUSBDevice(desc); ok {
			results = append(results, info)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}

	results = append(results, InterfaceInfo{
		Kind:        InterfaceKindSim,
		Description: "Simulator (no hardware)",
	})

	return results, nil
}

func classifyUSBDevice(desc *gousb.DeviceDesc) (InterfaceInfo, bool) {
	for _, known := range knownBridgeVIDPIDs {
		if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
			return InterfaceInfo{
				Kind:        InterfaceKindBridge,
				Description: known.Description,
				VendorID:    known.VendorID,
				ProductID:   known.ProductID,
			}, true
		}
	}
	return InterfaceInfo{}, false
}

type knownUSBDevice struct {
	VendorID    uint16
	ProductID   uint16
	Description string
}

var knownBridgeVIDPIDs = []knownUSBDevice{
	{VendorID: VendorIDRaspberryPi, ProductID: ProductIDBridge, Description: "Raspberry Pi Pico Keypad Bridge"},
	{VendorID: VendorIDRaspberryPi, ProductID: 0x000A, Description: "Raspberry Pi Pico (CDC bridge)"},
}
