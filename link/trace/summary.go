package trace

import (
	"fmt"
	"sort"
	"strings"
)

// Summary tallies a decoded trace.
type Summary struct {
	ConfigAcks  uint
	ClearAcks   uint
	Metrics     []Metric
	TimeUpdates int
	LastTime    uint32
	FireEvents  int
	Fires       map[uint8]int // total fires per output address
}

func (s *Summary) Add(ev Event) {
	switch e := ev.(type) {
	case Ack:
		if e.Kind == AckConfig {
			s.ConfigAcks += e.Count
		} else {
			s.ClearAcks += e.Count
		}
	case Metric:
		s.Metrics = append(s.Metrics, e)
	case TimeUpdate:
		s.TimeUpdates++
		s.LastTime = e.Time
	case Fire:
		if s.Fires == nil {
			s.Fires = map[uint8]int{}
		}
		s.FireEvents++
		for _, id := range e.NeuronIDs {
			s.Fires[id]++
		}
	default:
		panic(fmt.Sprintf("unexpected event type %T", ev))
	}
}

func Summarize(events []Event) *Summary {
	s := &Summary{}
	for _, ev := range events {
		s.Add(ev)
	}
	return s
}

func (s *Summary) String() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("config acks: %d", s.ConfigAcks))
	lines = append(lines, fmt.Sprintf("clear acks: %d", s.ClearAcks))
	lines = append(lines, fmt.Sprintf("metrics read: %d", len(s.Metrics)))
	lines = append(lines, fmt.Sprintf("time updates: %d (last %d)", s.TimeUpdates, s.LastTime))
	lines = append(lines, fmt.Sprintf("fire events: %d", s.FireEvents))
	var ids []int
	for id := range s.Fires {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("  neuron %3d fired %d times", id, s.Fires[uint8(id)]))
	}
	return strings.Join(lines, "\n")
}
