package opcode

import "fmt"

// Opcode is the leading byte of every packet on the link, in both directions.
type Opcode uint8

const (
	Null          Opcode = 0x00
	Step          Opcode = 0x01 // host: advance time; device: time update
	Metric        Opcode = 0x02 // host: metric request; device: metric response
	ClearActivity Opcode = 0x04
	ClearConfig   Opcode = 0x08
	NeuronConfig  Opcode = 0x10
	SynapseConfig Opcode = 0x20
	SynapseBatch  Opcode = 0x40 // reserved by the device; never emitted by the host
	Fire          Opcode = 0x80

	// acknowledgements are sums of the request bits they cover, and must be
	// matched as whole bytes
	ClearAck  = ClearActivity | ClearConfig                 // 12
	ConfigAck = NeuronConfig | SynapseConfig | SynapseBatch // 112

	TimeUpdate = Step
	FireOutput = Fire

	// FireAddressMask selects the input address embedded in a host fire opcode.
	FireAddressMask = 0x7F
)

func (op Opcode) String() string {
	switch op {
	case Null:
		return "Null"
	case Step:
		return "Step"
	case Metric:
		return "Metric"
	case ClearActivity:
		return "ClearActivity"
	case ClearConfig:
		return "ClearConfig"
	case ClearAck:
		return "ClearAck"
	case NeuronConfig:
		return "NeuronConfig"
	case SynapseConfig:
		return "SynapseConfig"
	case SynapseBatch:
		return "SynapseBatch"
	case ConfigAck:
		return "ConfigAck"
	case Fire:
		return "Fire"
	default:
		if IsHostFire(byte(op)) {
			return fmt.Sprintf("Fire(%d)", uint8(op)&FireAddressMask)
		}
		return fmt.Sprintf("Unknown(0x%02x)", uint8(op))
	}
}

// IsHostFire reports whether a host-to-device opcode byte is a fire command,
// which carries its input address in the low seven bits.
func IsHostFire(raw byte) bool {
	return raw&byte(Fire) != 0
}

// IsDeviceOpcode reports whether raw is one of the whole-byte tags the device
// emits on its output stream.
func IsDeviceOpcode(raw byte) bool {
	switch Opcode(raw) {
	case ConfigAck, ClearAck, Metric, TimeUpdate, FireOutput:
		return true
	default:
		return false
	}
}
