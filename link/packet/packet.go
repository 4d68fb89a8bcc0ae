package packet

import (
	"github.com/tennlab/ucaspian/link/opcode"
	"github.com/tennlab/ucaspian/link/util"
)

// Command is a host-to-device packet before encoding.
type Command interface {
	Opcode() opcode.Opcode
	Encode(f Framing) ([]byte, error)
}

type Null struct{}

type ClearConfig struct{}

type ClearActivity struct{}

// NeuronConfig describes one neuron-config packet. The synapse range is the
// half-open interval [SynapseStart, SynapseEnd) of synapse addresses owned by
// the neuron.
type NeuronConfig struct {
	Address       int
	Threshold     int
	Leak          int // NoLeak disables leak
	Delay         int // ignored by FramingV1, which must see 0
	OutputEnabled bool
	SynapseStart  int
	SynapseEnd    int
}

// MakeNeuronConfig returns a neuron config with the defaults used by the host
// driver: no leak, no delay, output disabled and an empty synapse range.
func MakeNeuronConfig(address, threshold int) NeuronConfig {
	return NeuronConfig{
		Address:   address,
		Threshold: threshold,
		Leak:      NoLeak,
	}
}

type SynapseConfig struct {
	Address int
	Weight  int // raw byte; signed weights are passed as their two's complement
	Target  int
	Delay   int // only carried by FramingV1
}

type Step struct {
	Count int
}

type Fire struct {
	Input int
	Value int
}

type MetricRequest struct {
	Address int
}

func (Null) Opcode() opcode.Opcode          { return opcode.Null }
func (ClearConfig) Opcode() opcode.Opcode   { return opcode.ClearConfig }
func (ClearActivity) Opcode() opcode.Opcode { return opcode.ClearActivity }
func (NeuronConfig) Opcode() opcode.Opcode  { return opcode.NeuronConfig }
func (SynapseConfig) Opcode() opcode.Opcode { return opcode.SynapseConfig }
func (Step) Opcode() opcode.Opcode          { return opcode.Step }
func (f Fire) Opcode() opcode.Opcode        { return opcode.Fire | opcode.Opcode(f.Input&opcode.FireAddressMask) }
func (MetricRequest) Opcode() opcode.Opcode { return opcode.Metric }

func EncodeNull() []byte {
	return []byte{byte(opcode.Null)}
}

func EncodeClearConfig() []byte {
	return []byte{byte(opcode.ClearConfig)}
}

func EncodeClearActivity() []byte {
	return []byte{byte(opcode.ClearActivity)}
}

// EncodeNeuronConfig encodes n with the default framing.
func EncodeNeuronConfig(n NeuronConfig) ([]byte, error) {
	return DefaultFraming.EncodeNeuronConfig(n)
}

// EncodeSynapseConfig encodes s with the default framing.
func EncodeSynapseConfig(s SynapseConfig) ([]byte, error) {
	return DefaultFraming.EncodeSynapseConfig(s)
}

func (f Framing) EncodeNeuronConfig(n NeuronConfig) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := checkField("neuron address", n.Address, 0, 0xFF); err != nil {
		return nil, err
	}
	if err := checkField("threshold", n.Threshold, 0, 0xFF); err != nil {
		return nil, err
	}
	maxDelay := 0x0F
	if f == FramingV1 {
		maxDelay = 0
	}
	if err := checkField("neuron delay", n.Delay, 0, maxDelay); err != nil {
		return nil, err
	}
	leak, err := f.encodeLeak(n.Leak)
	if err != nil {
		return nil, err
	}
	if err := checkField("synapse start", n.SynapseStart, 0, 0xFFFF); err != nil {
		return nil, err
	}
	if err := checkField("synapse end", n.SynapseEnd, n.SynapseStart, n.SynapseStart+0xFF); err != nil {
		return nil, err
	}
	cfg := byte(n.Delay<<4) | leak
	if n.OutputEnabled {
		cfg |= 1 << 3
	}
	startHi, startLo := util.SplitUint16(uint16(n.SynapseStart))
	return []byte{
		byte(opcode.NeuronConfig),
		byte(n.Address),
		byte(n.Threshold),
		cfg,
		startHi,
		startLo,
		byte(n.SynapseEnd - n.SynapseStart),
	}, nil
}

func (f Framing) EncodeSynapseConfig(s SynapseConfig) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := checkField("synapse address", s.Address, 0, 0xFFFF); err != nil {
		return nil, err
	}
	if err := checkField("weight", s.Weight, 0, 0xFF); err != nil {
		return nil, err
	}
	if err := checkField("target", s.Target, 0, 0xFF); err != nil {
		return nil, err
	}
	maxDelay := 0
	if f == FramingV1 {
		maxDelay = 0xFF
	}
	if err := checkField("synapse delay", s.Delay, 0, maxDelay); err != nil {
		return nil, err
	}
	addrHi, addrLo := util.SplitUint16(uint16(s.Address))
	packet := []byte{byte(opcode.SynapseConfig), addrHi, addrLo, byte(s.Weight), byte(s.Target)}
	if f == FramingV1 {
		packet = append(packet, byte(s.Delay))
	}
	return packet, nil
}

func EncodeStep(count int) ([]byte, error) {
	if err := checkField("step count", count, 0, 0xFF); err != nil {
		return nil, err
	}
	return []byte{byte(opcode.Step), byte(count)}, nil
}

func EncodeFire(input, value int) ([]byte, error) {
	if err := checkField("fire input", input, 0, opcode.FireAddressMask); err != nil {
		return nil, err
	}
	if err := checkField("fire value", value, 0, 0xFF); err != nil {
		return nil, err
	}
	return []byte{byte(opcode.Fire) | byte(input), byte(value)}, nil
}

func EncodeMetricRequest(address int) ([]byte, error) {
	if err := checkField("metric address", address, 0, 0xFF); err != nil {
		return nil, err
	}
	return []byte{byte(opcode.Metric), byte(address)}, nil
}

func (Null) Encode(Framing) ([]byte, error)          { return EncodeNull(), nil }
func (ClearConfig) Encode(Framing) ([]byte, error)   { return EncodeClearConfig(), nil }
func (ClearActivity) Encode(Framing) ([]byte, error) { return EncodeClearActivity(), nil }
func (s Step) Encode(Framing) ([]byte, error)        { return EncodeStep(s.Count) }
func (f Fire) Encode(Framing) ([]byte, error)        { return EncodeFire(f.Input, f.Value) }
func (m MetricRequest) Encode(Framing) ([]byte, error) {
	return EncodeMetricRequest(m.Address)
}

func (n NeuronConfig) Encode(f Framing) ([]byte, error) {
	return f.EncodeNeuronConfig(n)
}

func (s SynapseConfig) Encode(f Framing) ([]byte, error) {
	return f.EncodeSynapseConfig(s)
}

// EncodeAll concatenates the encodings of cmds into a single stream, suitable
// for writing to the link in one burst or saving as a simulator input file.
func EncodeAll(f Framing, cmds ...Command) ([]byte, error) {
	var out []byte
	for _, cmd := range cmds {
		encoded, err := cmd.Encode(f)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded...)
	}
	return out, nil
}
