package network

import (
	"fmt"
	"sort"
)

// BySource assigns synapse ids in order of source hardware neuron, then
// destination, so every neuron's outgoing synapses form one contiguous range.
// Edges with the same endpoints keep their input order.
var BySource SynapseMapper = SynapseMapperFunc(mapBySource)

func mapBySource(edges []Edge, ids map[int]int) ([]HardwareSynapse, error) {
	synapses := make([]HardwareSynapse, 0, len(edges))
	for _, e := range edges {
		from, ok := ids[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %d -> %d: unknown source node", e.From, e.To)
		}
		to, ok := ids[e.To]
		if !ok {
			return nil, fmt.Errorf("edge %d -> %d: unknown destination node", e.From, e.To)
		}
		synapses = append(synapses, NewSynapse(0, from, to, e.Weight, e.Delay))
	}
	sort.SliceStable(synapses, func(i, j int) bool {
		if synapses[i].From != synapses[j].From {
			return synapses[i].From < synapses[j].From
		}
		return synapses[i].To < synapses[j].To
	})
	for i := range synapses {
		synapses[i].ID = i
	}
	return synapses, nil
}
