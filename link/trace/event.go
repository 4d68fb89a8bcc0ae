package trace

import "fmt"

// Event is one logical occurrence reconstructed from the device's output
// stream. The set of implementations is closed: Ack, Metric, TimeUpdate, Fire.
type Event interface {
	fmt.Stringer
	isEvent()
}

type AckKind uint8

const (
	AckConfig AckKind = iota
	AckClear
)

func (k AckKind) String() string {
	switch k {
	case AckConfig:
		return "Config"
	case AckClear:
		return "Clear"
	default:
		panic(fmt.Sprintf("invalid ack kind: %d", uint8(k)))
	}
}

// Ack covers a run of identical acknowledgement bytes; Count is the run length.
type Ack struct {
	Kind  AckKind
	Count uint
}

type Metric struct {
	Address uint8
	Value   uint8
}

type TimeUpdate struct {
	Time uint32
}

// Fire lists every output address seen during one run of fire bytes, sorted
// ascending. Repeated addresses are kept: each one is a separate fire.
type Fire struct {
	NeuronIDs []uint8
}

func (Ack) isEvent()        {}
func (Metric) isEvent()     {}
func (TimeUpdate) isEvent() {}
func (Fire) isEvent()       {}

func (a Ack) String() string {
	return fmt.Sprintf("%v Ack x %d", a.Kind, a.Count)
}

func (m Metric) String() string {
	return fmt.Sprintf("Metric - Address %d = %d", m.Address, m.Value)
}

func (tu TimeUpdate) String() string {
	return fmt.Sprintf("Time: %d", tu.Time)
}

func (f Fire) String() string {
	ids := make([]int, len(f.NeuronIDs))
	for i, id := range f.NeuronIDs {
		ids[i] = int(id)
	}
	return fmt.Sprintf("Fire at %v", ids)
}
