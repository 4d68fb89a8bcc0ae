package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"github.com/tennlab/ucaspian/link/opcode"
	"github.com/tennlab/ucaspian/link/util"
	"io"
	"sort"
)

// FramingError reports the point at which the opcode stream stopped making
// sense: either an opcode the device never emits, or a payload cut short.
type FramingError struct {
	Offset    int64 // offset of the offending opcode byte
	Opcode    byte
	Truncated bool
	Need      int
	Got       int
}

func (e *FramingError) Error() string {
	if e.Truncated {
		return fmt.Sprintf("truncated %v payload at offset %d: needed %d bytes but got %d",
			opcode.Opcode(e.Opcode), e.Offset, e.Need, e.Got)
	}
	return fmt.Sprintf("unknown opcode 0x%02x at offset %d", e.Opcode, e.Offset)
}

// Decoder reconstructs events from the device's output stream. The stream
// has no delimiters: a run of identical opcodes forms one event, so a run is
// only known to be complete once the next differing opcode (or the end of
// the stream) has been read.
type Decoder struct {
	// StopAtNull treats a 0x00 opcode as the end of the stream, for captures
	// padded with zeros. Otherwise a 0x00 opcode is a framing error.
	StopAtNull bool

	r      *bufio.Reader
	offset int64

	lastOp    opcode.Opcode
	runLength uint
	fired     []uint8

	pending []Event
	done    bool
	err     error
}

func MakeDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:      bufio.NewReader(r),
		lastOp: opcode.Null,
	}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Next returns the next event. Once the stream is exhausted it returns
// io.EOF; if decoding stopped on a framing or read error, every event that
// was completed before the failure is delivered first and the error is then
// returned on this and every later call.
func (d *Decoder) Next() (Event, error) {
	for len(d.pending) == 0 {
		if d.done {
			if d.err != nil {
				return nil, d.err
			}
			return nil, io.EOF
		}
		d.step()
	}
	ev := d.pending[0]
	d.pending = d.pending[1:]
	return ev, nil
}

func (d *Decoder) emit(ev Event) {
	d.pending = append(d.pending, ev)
}

func (d *Decoder) stop(err error) {
	d.flush()
	d.done = true
	d.err = err
}

// flush finalizes the run that just ended. Metric and time-update events
// are emitted as their payloads are read, so their runs leave nothing here.
func (d *Decoder) flush() {
	switch d.lastOp {
	case opcode.ConfigAck:
		d.emit(Ack{Kind: AckConfig, Count: d.runLength})
	case opcode.ClearAck:
		d.emit(Ack{Kind: AckClear, Count: d.runLength})
	case opcode.FireOutput:
		if len(d.fired) > 0 {
			sort.Slice(d.fired, func(i, j int) bool {
				return d.fired[i] < d.fired[j]
			})
			d.emit(Fire{NeuronIDs: d.fired})
		}
	}
	d.fired = nil
	d.runLength = 0
	d.lastOp = opcode.Null
}

func (d *Decoder) step() {
	start := d.offset
	raw, err := d.r.ReadByte()
	if err == io.EOF {
		d.stop(nil)
		return
	} else if err != nil {
		d.stop(err)
		return
	}
	d.offset++

	op := opcode.Opcode(raw)
	if op != d.lastOp {
		d.flush()
		d.runLength = 1
	} else {
		d.runLength++
	}
	d.lastOp = op

	switch op {
	case opcode.ConfigAck, opcode.ClearAck:
		// counted by run length alone
	case opcode.Metric:
		payload, ok := d.payload(start, raw, 2)
		if ok {
			d.emit(Metric{Address: payload[0], Value: payload[1]})
		}
	case opcode.TimeUpdate:
		payload, ok := d.payload(start, raw, 4)
		if ok {
			d.emit(TimeUpdate{Time: util.DecodeUint32BE(payload)})
		}
	case opcode.FireOutput:
		payload, ok := d.payload(start, raw, 1)
		if ok {
			d.fired = append(d.fired, payload[0])
		}
	case opcode.Null:
		if d.StopAtNull {
			d.stop(nil)
			return
		}
		fallthrough
	default:
		d.stop(&FramingError{
			Offset: start,
			Opcode: raw,
		})
	}
}

func (d *Decoder) payload(start int64, raw byte, n int) ([]byte, bool) {
	buf := make([]byte, n)
	got, err := io.ReadFull(d.r, buf)
	d.offset += int64(got)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		d.stop(&FramingError{
			Offset:    start,
			Opcode:    raw,
			Truncated: true,
			Need:      n,
			Got:       got,
		})
		return nil, false
	} else if err != nil {
		d.stop(err)
		return nil, false
	}
	return buf, true
}

// DecodeAll drives a decoder to completion, returning every event decoded
// along with the error that stopped decoding, if any.
func DecodeAll(r io.Reader) ([]Event, error) {
	return drain(MakeDecoder(r))
}

func DecodeBytes(data []byte) ([]Event, error) {
	return DecodeAll(bytes.NewReader(data))
}

func drain(d *Decoder) ([]Event, error) {
	var events []Event
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return events, nil
		} else if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

// Drain is DecodeAll for a decoder that has already been configured.
func (d *Decoder) Drain() ([]Event, error) {
	return drain(d)
}
