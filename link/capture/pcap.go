package capture

import (
	"fmt"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"io"
	"time"
)

// LinkTypeSerial is DLT_USER0. Each packet starts with a direction byte
// followed by the bytes seen on the wire.
const LinkTypeSerial = layers.LinkType(147)

const pcapSnapLen = 65536

const (
	directionTx byte = 0
	directionRx byte = 1
)

func direction(channel string) (byte, error) {
	switch channel {
	case ChannelTx:
		return directionTx, nil
	case ChannelRx:
		return directionRx, nil
	default:
		return 0, fmt.Errorf("no pcap direction for channel %q", channel)
	}
}

// WritePcap exports records as a pcap stream, with timestamps offset from base.
func WritePcap(w io.Writer, records []Record, base time.Time) error {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(pcapSnapLen, LinkTypeSerial); err != nil {
		return err
	}
	for _, record := range records {
		dir, err := direction(record.Channel)
		if err != nil {
			return err
		}
		data := append([]byte{dir}, record.Bytes...)
		if len(data) > pcapSnapLen {
			return fmt.Errorf("record of %d bytes exceeds pcap snap length", len(record.Bytes))
		}
		err = pw.WritePacket(gopacket.CaptureInfo{
			Timestamp:     base.Add(record.Timestamp),
			CaptureLength: len(data),
			Length:        len(data),
		}, data)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadPcap reads back a capture written by WritePcap. The first packet's time
// is returned as base and record timestamps are relative to it, at the
// microsecond resolution of the pcap format.
func ReadPcap(r io.Reader) (records []Record, base time.Time, err error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, time.Time{}, err
	}
	if pr.LinkType() != LinkTypeSerial {
		return nil, time.Time{}, fmt.Errorf("unexpected link type %v", pr.LinkType())
	}
	for {
		data, ci, err := pr.ReadPacketData()
		if err == io.EOF {
			return records, base, nil
		} else if err != nil {
			return nil, time.Time{}, err
		}
		if len(data) < 1 {
			return nil, time.Time{}, fmt.Errorf("empty packet at %v", ci.Timestamp)
		}
		if len(records) == 0 {
			base = ci.Timestamp
		}
		channel := ChannelTx
		switch data[0] {
		case directionTx:
		case directionRx:
			channel = ChannelRx
		default:
			return nil, time.Time{}, fmt.Errorf("invalid direction byte 0x%02x", data[0])
		}
		records = append(records, Record{
			Timestamp: ci.Timestamp.Sub(base),
			Channel:   channel,
			Bytes:     data[1:],
		})
	}
}
