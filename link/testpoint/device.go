package testpoint

import (
	"bytes"
	"errors"
	"github.com/tennlab/ucaspian/link/packet"
	"io"
	"time"
)

// FakeDevice answers host commands the way the accelerator's link layer does:
// one ack byte per configuration or clear command, a metric response per
// metric request, and a time update per step. It models no neuron activity.
type FakeDevice struct {
	Framing  packet.Framing
	Time     uint32
	Metrics  map[uint8]uint8
	Commands []packet.Command
	// DropAcks discards that many upcoming acks, as if lost on the link.
	DropAcks int

	pending []byte
	output  []byte
}

var _ io.Closer = &FakeDevice{}

func MakeFakeDevice(f packet.Framing) *FakeDevice {
	return &FakeDevice{
		Framing: f,
		Metrics: map[uint8]uint8{},
	}
}

func (fd *FakeDevice) Write(data []byte) (int, error) {
	fd.pending = append(fd.pending, data...)
	cr := packet.MakeCommandReader(bytes.NewReader(fd.pending), fd.Framing)
	var consumed int64
	for {
		cmd, err := cr.Next()
		var te *packet.TruncatedError
		if err == io.EOF || errors.As(err, &te) {
			break
		} else if err != nil {
			fd.pending = nil
			return len(data), err
		}
		fd.respond(cmd)
		consumed = cr.Offset()
	}
	fd.pending = fd.pending[consumed:]
	return len(data), nil
}

func (fd *FakeDevice) respond(cmd packet.Command) {
	fd.Commands = append(fd.Commands, cmd)
	switch c := cmd.(type) {
	case packet.ClearConfig, packet.ClearActivity:
		fd.ack(packet.EncodeClearAck())
	case packet.NeuronConfig, packet.SynapseConfig:
		fd.ack(packet.EncodeConfigAck())
	case packet.MetricRequest:
		addr := uint8(c.Address)
		fd.output = append(fd.output, packet.EncodeMetricResponse(addr, fd.Metrics[addr])...)
	case packet.Step:
		fd.Time += uint32(c.Count)
		fd.output = append(fd.output, packet.EncodeTimeUpdate(fd.Time)...)
	}
}

func (fd *FakeDevice) ack(b []byte) {
	if fd.DropAcks > 0 {
		fd.DropAcks--
		return
	}
	fd.output = append(fd.output, b...)
}

// ReadTimeout returns whatever output is queued without waiting.
func (fd *FakeDevice) ReadTimeout(max int, timeout time.Duration) ([]byte, error) {
	if max > len(fd.output) {
		max = len(fd.output)
	}
	out := append([]byte(nil), fd.output[:max]...)
	fd.output = fd.output[max:]
	return out, nil
}

func (fd *FakeDevice) Close() error {
	return nil
}

// Unread returns the queued output that has not been read yet.
func (fd *FakeDevice) Unread() []byte {
	return fd.output
}
