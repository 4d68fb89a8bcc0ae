package session

import (
	"fmt"
	"github.com/hashicorp/go-multierror"
	"github.com/tennlab/ucaspian/link/packet"
	"github.com/tennlab/ucaspian/network"
)

// ConfigureNetwork loads hw onto the device. In per-packet mode every packet
// waits for its own acknowledgement; short acks are collected and reported
// together once every packet has been sent. In batch mode all neuron packets
// are sent and acknowledged as one batch, followed by all synapse packets.
// The device's configuration is not cleared first.
func ConfigureNetwork(d *Dispatcher, hw *network.HardwareNetwork, f packet.Framing, batch bool) error {
	neurons, err := hw.NeuronPackets(f)
	if err != nil {
		return err
	}
	synapses, err := hw.SynapsePackets(f)
	if err != nil {
		return err
	}
	if batch {
		if _, err := d.SendBatch(neurons); err != nil {
			return fmt.Errorf("configuring neurons: %w", err)
		}
		if _, err := d.SendBatch(synapses); err != nil {
			return fmt.Errorf("configuring synapses: %w", err)
		}
		return nil
	}
	var ackErrors error
	for i, pkt := range neurons {
		reply, err := d.Exchange(pkt, packet.AckLength)
		if err != nil {
			return multierror.Append(ackErrors, fmt.Errorf("neuron %d: %w", hw.Neurons[i].ID, err))
		}
		if err := reply.Err(); err != nil {
			ackErrors = multierror.Append(ackErrors, fmt.Errorf("neuron %d: %w", hw.Neurons[i].ID, err))
			continue
		}
		d.tracef("Configured neuron %d", hw.Neurons[i].ID)
	}
	for i, pkt := range synapses {
		reply, err := d.Exchange(pkt, packet.AckLength)
		if err != nil {
			return multierror.Append(ackErrors, fmt.Errorf("synapse %d: %w", hw.Synapses[i].ID, err))
		}
		if err := reply.Err(); err != nil {
			ackErrors = multierror.Append(ackErrors, fmt.Errorf("synapse %d: %w", hw.Synapses[i].ID, err))
			continue
		}
		d.tracef("Configured synapse %d", hw.Synapses[i].ID)
	}
	return ackErrors
}
