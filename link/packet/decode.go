package packet

import (
	"bufio"
	"bytes"
	"fmt"
	"github.com/tennlab/ucaspian/link/opcode"
	"github.com/tennlab/ucaspian/link/util"
	"io"
)

// CommandReader parses a host-to-device command stream, such as a simulator
// input file, back into typed commands. Unlike the device's output stream,
// every host command has a length determined by its opcode.
type CommandReader struct {
	r       *bufio.Reader
	framing Framing
	offset  int64
}

func MakeCommandReader(r io.Reader, f Framing) *CommandReader {
	return &CommandReader{
		r:       bufio.NewReader(r),
		framing: f,
	}
}

// Offset returns the number of bytes consumed so far.
func (cr *CommandReader) Offset() int64 {
	return cr.offset
}

// Next returns the next command, or io.EOF if the stream ended cleanly on a
// packet boundary.
func (cr *CommandReader) Next() (Command, error) {
	if err := cr.framing.Validate(); err != nil {
		return nil, err
	}
	start := cr.offset
	raw, err := cr.r.ReadByte()
	if err != nil {
		return nil, err
	}
	cr.offset++
	op := opcode.Opcode(raw)

	if opcode.IsHostFire(raw) {
		payload, err := cr.payload(start, op, 1)
		if err != nil {
			return nil, err
		}
		return Fire{
			Input: int(raw & opcode.FireAddressMask),
			Value: int(payload[0]),
		}, nil
	}

	switch op {
	case opcode.Null:
		return Null{}, nil
	case opcode.ClearConfig:
		return ClearConfig{}, nil
	case opcode.ClearActivity:
		return ClearActivity{}, nil
	case opcode.Step:
		payload, err := cr.payload(start, op, 1)
		if err != nil {
			return nil, err
		}
		return Step{Count: int(payload[0])}, nil
	case opcode.Metric:
		payload, err := cr.payload(start, op, 1)
		if err != nil {
			return nil, err
		}
		return MetricRequest{Address: int(payload[0])}, nil
	case opcode.NeuronConfig:
		payload, err := cr.payload(start, op, 6)
		if err != nil {
			return nil, err
		}
		return cr.decodeNeuronConfig(start, payload)
	case opcode.SynapseConfig:
		payload, err := cr.payload(start, op, cr.framing.SynapsePacketLength()-1)
		if err != nil {
			return nil, err
		}
		sc := SynapseConfig{
			Address: int(util.DecodeUint16BE(payload[0:2])),
			Weight:  int(payload[2]),
			Target:  int(payload[3]),
		}
		if cr.framing == FramingV1 {
			sc.Delay = int(payload[4])
		}
		return sc, nil
	default:
		return nil, &UnknownCommandError{
			Offset: start,
			Opcode: raw,
		}
	}
}

func (cr *CommandReader) payload(start int64, op opcode.Opcode, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(cr.r, buf)
	cr.offset += int64(got)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, &TruncatedError{
			Offset: start,
			Opcode: op,
			Need:   n,
			Got:    got,
		}
	} else if err != nil {
		return nil, err
	}
	return buf, nil
}

func (cr *CommandReader) decodeNeuronConfig(start int64, payload []byte) (Command, error) {
	cfg := payload[2]
	nc := NeuronConfig{
		Address:       int(payload[0]),
		Threshold:     int(payload[1]),
		Leak:          cr.framing.decodeLeak(cfg),
		OutputEnabled: cfg&(1<<3) != 0,
		SynapseStart:  int(util.DecodeUint16BE(payload[3:5])),
	}
	nc.SynapseEnd = nc.SynapseStart + int(payload[5])
	if cr.framing == FramingV1 {
		if cfg>>4 != 0 {
			return nil, &MalformedError{
				Offset: start,
				Opcode: opcode.NeuronConfig,
				Reason: fmt.Sprintf("reserved bits set in config byte 0x%02x", cfg),
			}
		}
	} else {
		nc.Delay = int(cfg >> 4)
	}
	return nc, nil
}

// DecodeCommands parses an entire command stream.
func DecodeCommands(data []byte, f Framing) ([]Command, error) {
	cr := MakeCommandReader(bytes.NewReader(data), f)
	var cmds []Command
	for {
		cmd, err := cr.Next()
		if err == io.EOF {
			return cmds, nil
		} else if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
}
