// Package network projects a logical spiking network onto the flat neuron
// and synapse address spaces of the accelerator.
package network

import (
	"errors"
	"fmt"
	"github.com/tennlab/ucaspian/link/packet"
)

const (
	MaxNeurons      = 1 << 8
	MaxSynapses     = 1 << 16
	MaxNeuronFanout = 0xFF
	NoOutput        = -1
)

// Node is the part of a logical network node that the hardware consumes.
type Node struct {
	Threshold int
	Leak      int // packet.NoLeak for none
	Delay     int
	OutputID  int // NoOutput if the node is not an output
}

type NodeEntry struct {
	ID   int
	Node Node
}

// Edge connects two logical node ids.
type Edge struct {
	From   int
	To     int
	Weight int
	Delay  int
}

type HardwareNeuron struct {
	ID           int
	Threshold    int
	Leak         int
	Delay        int
	IsOutput     bool
	SynapseStart int
	SynapseCount int
}

type HardwareSynapse struct {
	ID     int
	From   int // hardware neuron id
	To     int // hardware neuron id
	Weight int
	Delay  int
}

func NewSynapse(id, from, to, weight, delay int) HardwareSynapse {
	return HardwareSynapse{
		ID:     id,
		From:   from,
		To:     to,
		Weight: weight,
		Delay:  delay,
	}
}

// SynapseMapper turns logical edges into hardware synapses, given the
// original-to-hardware neuron id mapping.
type SynapseMapper interface {
	MapSynapses(edges []Edge, ids map[int]int) ([]HardwareSynapse, error)
}

type SynapseMapperFunc func(edges []Edge, ids map[int]int) ([]HardwareSynapse, error)

func (f SynapseMapperFunc) MapSynapses(edges []Edge, ids map[int]int) ([]HardwareSynapse, error) {
	return f(edges, ids)
}

var ErrSynapsesUnimplemented = errors.New("network has edges but no synapse mapper was configured")

type HardwareNetwork struct {
	Neurons  []HardwareNeuron
	Synapses []HardwareSynapse
	IDMap    map[int]int // original node id -> hardware neuron id
}

// Converter builds hardware networks. Synapses is the extension point for
// edge conversion; when it is nil, networks with edges are rejected rather
// than configured without their synapses.
type Converter struct {
	Synapses SynapseMapper
}

// ConvertNeurons assigns dense hardware ids in traversal order. Every node
// becomes a neuron; nodes with a non-negative output id are marked as outputs.
func (c Converter) ConvertNeurons(nodes []NodeEntry) (*HardwareNetwork, error) {
	hw := &HardwareNetwork{
		IDMap: map[int]int{},
	}
	for _, entry := range nodes {
		if _, found := hw.IDMap[entry.ID]; found {
			return nil, fmt.Errorf("duplicate node id %d in traversal", entry.ID)
		}
		if len(hw.Neurons) >= MaxNeurons {
			return nil, fmt.Errorf("network has more than %d neurons", MaxNeurons)
		}
		hid := len(hw.Neurons)
		hw.Neurons = append(hw.Neurons, HardwareNeuron{
			ID:        hid,
			Threshold: entry.Node.Threshold,
			Leak:      entry.Node.Leak,
			Delay:     entry.Node.Delay,
			IsOutput:  entry.Node.OutputID >= 0,
		})
		hw.IDMap[entry.ID] = hid
	}
	return hw, nil
}

func (c Converter) Convert(nodes []NodeEntry, edges []Edge) (*HardwareNetwork, error) {
	hw, err := c.ConvertNeurons(nodes)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return hw, nil
	}
	if c.Synapses == nil {
		return nil, ErrSynapsesUnimplemented
	}
	synapses, err := c.Synapses.MapSynapses(edges, hw.IDMap)
	if err != nil {
		return nil, err
	}
	if err := hw.attachSynapses(synapses); err != nil {
		return nil, err
	}
	return hw, nil
}

// attachSynapses records each neuron's synapse range. A neuron-config packet
// names its synapses only as a start and a count, so every neuron's outgoing
// synapses must occupy consecutive ids.
func (hw *HardwareNetwork) attachSynapses(synapses []HardwareSynapse) error {
	if len(synapses) > MaxSynapses {
		return fmt.Errorf("network has %d synapses, more than the %d supported", len(synapses), MaxSynapses)
	}
	owned := make([][]int, len(hw.Neurons))
	seen := map[int]bool{}
	for _, s := range synapses {
		if s.From < 0 || s.From >= len(hw.Neurons) || s.To < 0 || s.To >= len(hw.Neurons) {
			return fmt.Errorf("synapse %d connects unknown neurons %d -> %d", s.ID, s.From, s.To)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate synapse id %d", s.ID)
		}
		seen[s.ID] = true
		owned[s.From] = append(owned[s.From], s.ID)
	}
	for nid, ids := range owned {
		if len(ids) == 0 {
			continue
		}
		if len(ids) > MaxNeuronFanout {
			return fmt.Errorf("neuron %d has %d synapses, more than the %d supported", nid, len(ids), MaxNeuronFanout)
		}
		lo, hi := ids[0], ids[0]
		for _, id := range ids {
			if id < lo {
				lo = id
			}
			if id > hi {
				hi = id
			}
		}
		if hi-lo+1 != len(ids) {
			return fmt.Errorf("synapses of neuron %d are not contiguous (ids %d..%d for %d synapses)", nid, lo, hi, len(ids))
		}
		hw.Neurons[nid].SynapseStart = lo
		hw.Neurons[nid].SynapseCount = len(ids)
	}
	hw.Synapses = synapses
	return nil
}

func (n HardwareNeuron) Config() packet.NeuronConfig {
	return packet.NeuronConfig{
		Address:       n.ID,
		Threshold:     n.Threshold,
		Leak:          n.Leak,
		Delay:         n.Delay,
		OutputEnabled: n.IsOutput,
		SynapseStart:  n.SynapseStart,
		SynapseEnd:    n.SynapseStart + n.SynapseCount,
	}
}

func (s HardwareSynapse) Config() packet.SynapseConfig {
	return packet.SynapseConfig{
		Address: s.ID,
		Weight:  s.Weight,
		Target:  s.To,
		Delay:   s.Delay,
	}
}

func (hw *HardwareNetwork) NeuronPackets(f packet.Framing) ([][]byte, error) {
	var out [][]byte
	for _, n := range hw.Neurons {
		pkt, err := f.EncodeNeuronConfig(n.Config())
		if err != nil {
			return nil, fmt.Errorf("neuron %d: %w", n.ID, err)
		}
		out = append(out, pkt)
	}
	return out, nil
}

func (hw *HardwareNetwork) SynapsePackets(f packet.Framing) ([][]byte, error) {
	var out [][]byte
	for _, s := range hw.Synapses {
		pkt, err := f.EncodeSynapseConfig(s.Config())
		if err != nil {
			return nil, fmt.Errorf("synapse %d: %w", s.ID, err)
		}
		out = append(out, pkt)
	}
	return out, nil
}

// Commands returns the full configuration sequence: every neuron, then every synapse.
func (hw *HardwareNetwork) Commands(f packet.Framing) ([][]byte, error) {
	neurons, err := hw.NeuronPackets(f)
	if err != nil {
		return nil, err
	}
	synapses, err := hw.SynapsePackets(f)
	if err != nil {
		return nil, err
	}
	return append(neurons, synapses...), nil
}
