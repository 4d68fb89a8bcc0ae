package session

import (
	"fmt"
	"github.com/tennlab/ucaspian/link/packet"
	"io"
	"log"
	"time"
)

// Reply holds the bytes read back after a command. Acknowledgement is by
// length only: the device's reply bytes are never compared with the command.
type Reply struct {
	Data     []byte
	Expected int
}

func (r Reply) OK() bool {
	return len(r.Data) == r.Expected
}

// Err returns a *TimeoutError if the reply was short.
func (r Reply) Err() error {
	if r.OK() {
		return nil
	}
	return &TimeoutError{
		Expected: r.Expected,
		Got:      len(r.Data),
	}
}

type BatchReply struct {
	Sent int
	Acks []byte
}

func (b BatchReply) OK() bool {
	return len(b.Acks) == b.Sent
}

// Dispatcher sends encoded packets and collects their acknowledgements. Each
// call performs its writes and then blocks on at most one bounded read; no
// two commands are ever in flight at once. It is not safe for concurrent use.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	// Trace, if set, logs every packet sent and every reply received.
	Trace *log.Logger
}

func MakeDispatcher(t Transport, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		transport: t,
		timeout:   timeout,
	}
}

func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

func (d *Dispatcher) tracef(format string, args ...interface{}) {
	if d.Trace != nil {
		d.Trace.Printf(format, args...)
	}
}

// Send writes a packet and does not wait for any reply.
func (d *Dispatcher) Send(pkt []byte) error {
	d.tracef("Send: %x", pkt)
	n, err := d.transport.Write(pkt)
	if err != nil {
		return fmt.Errorf("writing %d-byte packet: %w", len(pkt), err)
	}
	if n != len(pkt) {
		return fmt.Errorf("writing %d-byte packet: %w", len(pkt), io.ErrShortWrite)
	}
	return nil
}

// Receive reads up to expect bytes, waiting no longer than the timeout.
func (d *Dispatcher) Receive(expect int) (Reply, error) {
	data, err := d.transport.ReadTimeout(expect, d.timeout)
	reply := Reply{
		Data:     data,
		Expected: expect,
	}
	d.tracef("Response size: %d Response: %x", len(data), data)
	if err != nil {
		return reply, fmt.Errorf("reading %d-byte reply: %w", expect, err)
	}
	return reply, nil
}

// Exchange sends a packet and waits for a reply of the expected length. The
// error result is reserved for transport faults; a short reply is reported
// through Reply.OK.
func (d *Dispatcher) Exchange(pkt []byte, expect int) (Reply, error) {
	if err := d.Send(pkt); err != nil {
		return Reply{Expected: expect}, err
	}
	return d.Receive(expect)
}

// SendBatch writes every packet back-to-back and then reads one
// acknowledgement byte per packet. If fewer arrive before the timeout, the
// partial count is returned along with a *PartialBatchAckError.
func (d *Dispatcher) SendBatch(pkts [][]byte) (BatchReply, error) {
	for i, pkt := range pkts {
		if err := d.Send(pkt); err != nil {
			return BatchReply{Sent: i}, err
		}
	}
	reply, err := d.Receive(len(pkts) * packet.AckLength)
	batch := BatchReply{
		Sent: len(pkts),
		Acks: reply.Data,
	}
	if err != nil {
		return batch, err
	}
	if !batch.OK() {
		return batch, &PartialBatchAckError{
			Expected: batch.Sent,
			Got:      len(batch.Acks),
		}
	}
	return batch, nil
}

func (d *Dispatcher) ClearConfig() (Reply, error) {
	return d.Exchange(packet.EncodeClearConfig(), packet.AckLength)
}

func (d *Dispatcher) ClearActivity() (Reply, error) {
	return d.Exchange(packet.EncodeClearActivity(), packet.AckLength)
}

// ConfigureNeuron sends one neuron-config packet. With ack unset, the
// acknowledgement is left on the link to be collected later in bulk and the
// returned Reply expects no bytes.
func (d *Dispatcher) ConfigureNeuron(f packet.Framing, n packet.NeuronConfig, ack bool) (Reply, error) {
	pkt, err := f.EncodeNeuronConfig(n)
	if err != nil {
		return Reply{}, err
	}
	return d.sendMaybeAck(pkt, ack)
}

func (d *Dispatcher) ConfigureSynapse(f packet.Framing, s packet.SynapseConfig, ack bool) (Reply, error) {
	pkt, err := f.EncodeSynapseConfig(s)
	if err != nil {
		return Reply{}, err
	}
	return d.sendMaybeAck(pkt, ack)
}

func (d *Dispatcher) sendMaybeAck(pkt []byte, ack bool) (Reply, error) {
	if !ack {
		return Reply{}, d.Send(pkt)
	}
	return d.Exchange(pkt, packet.AckLength)
}

func (d *Dispatcher) Step(count int) error {
	pkt, err := packet.EncodeStep(count)
	if err != nil {
		return err
	}
	return d.Send(pkt)
}

func (d *Dispatcher) Fire(input, value int) error {
	pkt, err := packet.EncodeFire(input, value)
	if err != nil {
		return err
	}
	return d.Send(pkt)
}

// ReadMetric requests a metric. The value is taken from the last byte of the
// reply and is only meaningful when the reply is OK.
func (d *Dispatcher) ReadMetric(address int) (uint8, Reply, error) {
	pkt, err := packet.EncodeMetricRequest(address)
	if err != nil {
		return 0, Reply{}, err
	}
	reply, err := d.Exchange(pkt, packet.MetricResponseLength)
	if err != nil || !reply.OK() {
		return 0, reply, err
	}
	return reply.Data[packet.MetricResponseLength-1], reply, nil
}

const (
	drainChunk     = 128
	drainMaxChunks = 10
)

// Drain collects whatever the device has left to say: it reads fixed-size
// chunks until one comes back short or the chunk limit is reached. Each
// chunk is also copied to w, if provided.
func (d *Dispatcher) Drain(w io.Writer) ([]byte, error) {
	var all []byte
	for i := 0; i < drainMaxChunks; i++ {
		reply, err := d.Receive(drainChunk)
		all = append(all, reply.Data...)
		if w != nil && len(reply.Data) > 0 {
			if _, werr := w.Write(reply.Data); werr != nil {
				return all, werr
			}
		}
		if err != nil {
			return all, err
		}
		if !reply.OK() {
			break
		}
	}
	return all, nil
}
