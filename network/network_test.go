package network

import (
	"errors"
	"github.com/tennlab/ucaspian/link/packet"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func randNodes(r *rand.Rand, count int) []NodeEntry {
	var nodes []NodeEntry
	for _, id := range r.Perm(count * 3)[:count] {
		output := NoOutput
		if r.Intn(4) == 0 {
			output = r.Intn(10)
		}
		nodes = append(nodes, NodeEntry{
			ID: id,
			Node: Node{
				Threshold: r.Intn(256),
				Leak:      r.Intn(8) - 1,
				Delay:     r.Intn(16),
				OutputID:  output,
			},
		})
	}
	return nodes
}

func TestConvertNeurons(t *testing.T) {
	r := rand.New(rand.NewSource(1234))
	for trial := 0; trial < 50; trial++ {
		nodes := randNodes(r, 1+r.Intn(MaxNeurons))
		hw, err := Converter{}.Convert(nodes, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(hw.Neurons) != len(nodes) || len(hw.IDMap) != len(nodes) {
			t.Fatalf("expected %d neurons, got %d", len(nodes), len(hw.Neurons))
		}
		for i, entry := range nodes {
			expected := HardwareNeuron{
				ID:        i,
				Threshold: entry.Node.Threshold,
				Leak:      entry.Node.Leak,
				Delay:     entry.Node.Delay,
				IsOutput:  entry.Node.OutputID >= 0,
			}
			if hw.Neurons[i] != expected {
				t.Errorf("wrong neuron %d\nreceived: %+v\nexpected: %+v", i, hw.Neurons[i], expected)
			}
			if hw.IDMap[entry.ID] != i {
				t.Errorf("node %d mapped to %d, expected %d", entry.ID, hw.IDMap[entry.ID], i)
			}
		}
		if len(hw.Synapses) != 0 {
			t.Errorf("unexpected synapses: %v", hw.Synapses)
		}
	}
}

func TestConvertEmpty(t *testing.T) {
	hw, err := Converter{}.Convert(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	pkts, err := hw.Commands(packet.DefaultFraming)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkts) != 0 {
		t.Errorf("expected no packets, got %v", pkts)
	}
}

func TestConvertDuplicateID(t *testing.T) {
	nodes := []NodeEntry{{ID: 3}, {ID: 4}, {ID: 3}}
	if _, err := (Converter{}).ConvertNeurons(nodes); err == nil || !strings.Contains(err.Error(), "duplicate node id 3") {
		t.Errorf("expected duplicate id error, got %v", err)
	}
}

func TestConvertTooManyNeurons(t *testing.T) {
	nodes := make([]NodeEntry, MaxNeurons+1)
	for i := range nodes {
		nodes[i].ID = i
	}
	if _, err := (Converter{}).ConvertNeurons(nodes[:MaxNeurons]); err != nil {
		t.Errorf("%d neurons should fit: %v", MaxNeurons, err)
	}
	if _, err := (Converter{}).ConvertNeurons(nodes); err == nil {
		t.Error("expected error for too many neurons")
	}
}

func TestEdgesRequireMapper(t *testing.T) {
	nodes := []NodeEntry{{ID: 0}, {ID: 1}}
	edges := []Edge{{From: 0, To: 1, Weight: 1}}
	hw, err := Converter{}.Convert(nodes, edges)
	if !errors.Is(err, ErrSynapsesUnimplemented) || hw != nil {
		t.Errorf("expected unimplemented synapse error, got %v, %v", hw, err)
	}
}

func TestMapperExtensionPoint(t *testing.T) {
	nodes := []NodeEntry{{ID: 10}, {ID: 20}}
	edges := []Edge{{From: 10, To: 20, Weight: 3}, {From: 20, To: 10, Weight: 4}}
	var gotIDs map[int]int
	mapper := SynapseMapperFunc(func(edges []Edge, ids map[int]int) ([]HardwareSynapse, error) {
		gotIDs = ids
		// reverse order: neuron 1 owns synapse 0
		return []HardwareSynapse{
			NewSynapse(0, ids[20], ids[10], 4, 0),
			NewSynapse(1, ids[10], ids[20], 3, 0),
		}, nil
	})
	hw, err := Converter{Synapses: mapper}.Convert(nodes, edges)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotIDs, map[int]int{10: 0, 20: 1}) {
		t.Errorf("mapper saw wrong id map: %v", gotIDs)
	}
	if hw.Neurons[0].SynapseStart != 1 || hw.Neurons[0].SynapseCount != 1 ||
		hw.Neurons[1].SynapseStart != 0 || hw.Neurons[1].SynapseCount != 1 {
		t.Errorf("wrong synapse ranges: %+v", hw.Neurons)
	}

	failure := errors.New("mapper failed")
	_, err = Converter{Synapses: SynapseMapperFunc(func([]Edge, map[int]int) ([]HardwareSynapse, error) {
		return nil, failure
	})}.Convert(nodes, edges)
	if !errors.Is(err, failure) {
		t.Errorf("mapper error lost: %v", err)
	}
}

func TestNonContiguousSynapses(t *testing.T) {
	nodes := []NodeEntry{{ID: 0}, {ID: 1}}
	mapper := SynapseMapperFunc(func(edges []Edge, ids map[int]int) ([]HardwareSynapse, error) {
		return []HardwareSynapse{
			NewSynapse(0, 0, 1, 1, 0),
			NewSynapse(1, 1, 0, 1, 0),
			NewSynapse(2, 0, 0, 1, 0),
		}, nil
	})
	_, err := Converter{Synapses: mapper}.Convert(nodes, []Edge{{}})
	if err == nil || !strings.Contains(err.Error(), "not contiguous") {
		t.Errorf("expected contiguity error, got %v", err)
	}
}

func TestBySource(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for trial := 0; trial < 50; trial++ {
		nodes := randNodes(r, 1+r.Intn(40))
		var edges []Edge
		for i := r.Intn(200); i > 0; i-- {
			edges = append(edges, Edge{
				From:   nodes[r.Intn(len(nodes))].ID,
				To:     nodes[r.Intn(len(nodes))].ID,
				Weight: r.Intn(256),
			})
		}
		hw, err := Converter{Synapses: BySource}.Convert(nodes, edges)
		if err != nil {
			// a random neuron may exceed the fanout limit
			if strings.Contains(err.Error(), "more than") {
				continue
			}
			t.Fatal(err)
		}
		if len(hw.Synapses) != len(edges) {
			t.Fatalf("expected %d synapses, got %d", len(edges), len(hw.Synapses))
		}
		for i, s := range hw.Synapses {
			if s.ID != i {
				t.Errorf("synapse %d has id %d", i, s.ID)
			}
			if i > 0 {
				prev := hw.Synapses[i-1]
				if prev.From > s.From || (prev.From == s.From && prev.To > s.To) {
					t.Errorf("synapses out of order: %+v then %+v", prev, s)
				}
			}
			n := hw.Neurons[s.From]
			if s.ID < n.SynapseStart || s.ID >= n.SynapseStart+n.SynapseCount {
				t.Errorf("synapse %d outside range of neuron %d: %+v", s.ID, s.From, n)
			}
		}
	}
}

func TestBySourceUnknownNode(t *testing.T) {
	nodes := []NodeEntry{{ID: 0}}
	if _, err := (Converter{Synapses: BySource}).Convert(nodes, []Edge{{From: 0, To: 5}}); err == nil {
		t.Error("expected unknown destination error")
	}
}

func TestCommands(t *testing.T) {
	nodes := []NodeEntry{
		{ID: 5, Node: Node{Threshold: 9, Leak: packet.NoLeak, OutputID: 0}},
		{ID: 6, Node: Node{Threshold: 4, Leak: 2, Delay: 1, OutputID: NoOutput}},
	}
	edges := []Edge{{From: 5, To: 6, Weight: 0xFE}}
	hw, err := Converter{Synapses: BySource}.Convert(nodes, edges)
	if err != nil {
		t.Fatal(err)
	}
	pkts, err := hw.Commands(packet.FramingV2)
	if err != nil {
		t.Fatal(err)
	}
	expected := [][]byte{
		{16, 0, 9, 0x08, 0, 0, 1},
		{16, 1, 4, 0x13, 0, 0, 0},
		{32, 0, 0, 0xFE, 1},
	}
	if !reflect.DeepEqual(pkts, expected) {
		t.Errorf("wrong packets\nreceived: %v\nexpected: %v", pkts, expected)
	}

	// the legacy framing has no neuron delay
	var ee *packet.EncodingError
	if _, err := hw.Commands(packet.FramingV1); !errors.As(err, &ee) || ee.Field != "neuron delay" {
		t.Errorf("expected neuron delay error, got %v", err)
	}
}
