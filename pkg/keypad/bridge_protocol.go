package keypad

import "fmt"

// Keypad bridge command IDs. The bridge is a Pico-class firmware exposing
// raw line control over a vendor-specific USB interface with fixed-size
// packets; every command is a single write followed by a single read.
const (
	CmdInfo       = 0x00
	CmdPing       = 0x01
	CmdConfigLine = 0x02
	CmdSetLine    = 0x03
	CmdReadLines  = 0x04
)

// Info IDs understood by CmdInfo.
const (
	InfoVendor    = 0x01
	InfoProduct   = 0x02
	InfoSerialNum = 0x03
	InfoFirmware  = 0x04
	InfoLineCount = 0xF0
)

// Line directions for CmdConfigLine.
const (
	DirInput  = 0x00
	DirOutput = 0x01
)

// Status codes.
const (
	StatusOK      = 0x00
	StatusBadLine = 0x01
	StatusError   = 0xFF
)

// BridgeProtocol handles encoding/decoding of keypad bridge commands.
type BridgeProtocol struct {
	PacketSize int
}

// NewBridgeProtocol creates a new protocol handler.
func NewBridgeProtocol(packetSize int) *BridgeProtocol {
	return &BridgeProtocol{PacketSize: packetSize}
}

// EncodeInfo builds an Info command.
func (p *BridgeProtocol) EncodeInfo(infoID byte) []byte {
	return []byte{CmdInfo, infoID}
}

// DecodeInfo parses an Info response; the payload is a length-prefixed
// string.
func (p *BridgeProtocol) DecodeInfo(resp []byte) (string, error) {
	if len(resp) < 2 {
		return "", fmt.Errorf("response too short")
	}
	if resp[0] != CmdInfo {
		return "", fmt.Errorf("invalid command ID: 0x%02X", resp[0])
	}

	length := int(resp[1])
	if len(resp) < 2+length {
		return "", fmt.Errorf("incomplete info string")
	}

	return string(resp[2 : 2+length]), nil
}

// EncodePing builds a Ping command.
func (p *BridgeProtocol) EncodePing() []byte {
	return []byte{CmdPing}
}

// DecodePing parses a Ping response.
func (p *BridgeProtocol) DecodePing(resp []byte) error {
	return p.decodeStatus(CmdPing, resp)
}

// EncodeConfigLine builds a ConfigLine command setting the electrical
// direction of one line.
func (p *BridgeProtocol) EncodeConfigLine(line uint8, dir byte) []byte {
	return []byte{CmdConfigLine, line, dir}
}

// DecodeConfigLine parses a ConfigLine response.
func (p *BridgeProtocol) DecodeConfigLine(resp []byte) error {
	return p.decodeStatus(CmdConfigLine, resp)
}

// EncodeSetLine builds a SetLine command driving one output line.
func (p *BridgeProtocol) EncodeSetLine(line uint8, level Level) []byte {
	lv := byte(0)
	if level == High {
		lv = 1
	}
	return []byte{CmdSetLine, line, lv}
}

// DecodeSetLine parses a SetLine response.
func (p *BridgeProtocol) DecodeSetLine(resp []byte) error {
	return p.decodeStatus(CmdSetLine, resp)
}

// EncodeReadLines builds a ReadLines command sampling the given input lines
// in one transaction.
func (p *BridgeProtocol) EncodeReadLines(lines []uint8) []byte {
	cmd := make([]byte, 0, 2+len(lines))
	cmd = append(cmd, CmdReadLines, byte(len(lines)))
	cmd = append(cmd, lines...)
	return cmd
}

// DecodeReadLines parses a ReadLines response into one level per requested
// line.
func (p *BridgeProtocol) DecodeReadLines(resp []byte, want int) ([]Level, error) {
	if len(resp) < 3 {
		return nil, fmt.Errorf("response too short")
	}
	if resp[0] != CmdReadLines {
		return nil, fmt.Errorf("invalid command ID: 0x%02X", resp[0])
	}
	if resp[1] != StatusOK {
		return nil, fmt.Errorf("bridge status 0x%02X", resp[1])
	}

	count := int(resp[2])
	if count != want {
		return nil, fmt.Errorf("bridge returned %d levels, requested %d", count, want)
	}
	if len(resp) < 3+count {
		return nil, fmt.Errorf("incomplete level data")
	}

	levels := make([]Level, count)
	for i := 0; i < count; i++ {
		levels[i] = resp[3+i] != 0
	}
	return levels, nil
}

func (p *BridgeProtocol) decodeStatus(cmdID byte, resp []byte) error {
	if len(resp) < 2 {
		return fmt.Errorf("response too short")
	}
	if resp[0] != cmdID {
		return fmt.Errorf("invalid command ID: 0x%02X", resp[0])
	}
	if resp[1] != StatusOK {
		return fmt.Errorf("bridge status 0x%02X", resp[1])
	}
	return nil
}
