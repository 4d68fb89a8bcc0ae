package packet

import (
	"fmt"
	"strings"
)

// Framing selects between the two neuron/synapse configuration layouts seen
// on real hardware. They differ in how "no leak" is encoded, so firmware and
// host must agree on one; neither is silently translated into the other.
type Framing uint8

const (
	// FramingV1 encodes leak -1 as the fixed sentinel 7, carries no neuron
	// delay, and appends a delay byte to each synapse packet.
	FramingV1 Framing = 1
	// FramingV2 encodes leak as leak+1 (so -1 becomes 0), packs the neuron
	// delay into the high nibble, and sends five-byte synapse packets.
	FramingV2 Framing = 2

	DefaultFraming = FramingV2
)

const (
	NoLeak  = -1
	MinLeak = NoLeak
	MaxLeak = 6

	leakSentinelV1 = 7
)

func ParseFraming(name string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "v1", "1", "leak-sentinel":
		return FramingV1, nil
	case "", "v2", "2", "leak-offset":
		return FramingV2, nil
	default:
		return 0, fmt.Errorf("unknown framing %q (expected v1/leak-sentinel or v2/leak-offset)", name)
	}
}

func (f Framing) String() string {
	switch f {
	case FramingV1:
		return "v1 (leak-sentinel)"
	case FramingV2:
		return "v2 (leak-offset)"
	default:
		return fmt.Sprintf("invalid framing %d", uint8(f))
	}
}

func (f Framing) Validate() error {
	if f != FramingV1 && f != FramingV2 {
		return fmt.Errorf("invalid framing: %d", uint8(f))
	}
	return nil
}

func (f Framing) encodeLeak(leak int) (byte, error) {
	if err := checkField("leak", leak, MinLeak, MaxLeak); err != nil {
		return 0, err
	}
	if f == FramingV1 {
		if leak == NoLeak {
			return leakSentinelV1, nil
		}
		return byte(leak), nil
	}
	return byte(leak + 1), nil
}

func (f Framing) decodeLeak(raw byte) int {
	raw &= 0x07
	if f == FramingV1 {
		if raw == leakSentinelV1 {
			return NoLeak
		}
		return int(raw)
	}
	return int(raw) - 1
}

// SynapsePacketLength returns the size of a synapse-config packet, opcode included.
func (f Framing) SynapsePacketLength() int {
	if f == FramingV1 {
		return 6
	}
	return 5
}
