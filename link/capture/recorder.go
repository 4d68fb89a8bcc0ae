// Package capture records the bytes crossing the serial link so that a live
// session can be replayed through the offline trace decoder.
package capture

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/hashicorp/go-multierror"
	"io"
	"os"
	"strconv"
	"time"
)

const (
	ChannelTx = "tx"
	ChannelRx = "rx"
)

var csvHeader = []string{"Nanoseconds", "Channel", "Hex Bytes"}

type Recorder interface {
	Record(channel string, data []byte)
}

// CSVRecorder writes one row per recorded chunk, timestamped relative to the
// creation of the recorder. The first write error is kept and later records
// are discarded; it is reported by Err and Close.
type CSVRecorder struct {
	output *csv.Writer
	closer io.Closer
	start  time.Time
	now    func() time.Time
	err    error
}

var _ Recorder = &CSVRecorder{}

func MakeCSVRecorder(w io.Writer) (*CSVRecorder, error) {
	cw := csv.NewWriter(w)
	err := cw.Write(csvHeader)
	cw.Flush()
	if err == nil {
		err = cw.Error()
	}
	if err != nil {
		return nil, err
	}
	r := &CSVRecorder{
		output: cw,
		now:    time.Now,
	}
	r.start = r.now()
	return r, nil
}

func CreateCSVRecorder(path string) (*CSVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r, err := MakeCSVRecorder(f)
	if err != nil {
		return nil, multierror.Append(err, f.Close())
	}
	r.closer = f
	return r, nil
}

func (r *CSVRecorder) Record(channel string, data []byte) {
	if channel == "" {
		panic("invalid empty channel name")
	}
	if r.err != nil {
		return
	}
	err := r.output.Write([]string{
		strconv.FormatInt(r.now().Sub(r.start).Nanoseconds(), 10),
		channel,
		hex.EncodeToString(data),
	})
	r.output.Flush()
	if err == nil {
		err = r.output.Error()
	}
	r.err = err
}

func (r *CSVRecorder) Err() error {
	return r.err
}

func (r *CSVRecorder) Close() error {
	var err error
	if r.err != nil {
		err = multierror.Append(err, r.err)
	}
	if r.closer != nil {
		if cerr := r.closer.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
		r.closer = nil
	}
	return err
}

type Record struct {
	Timestamp time.Duration
	Channel   string
	Bytes     []byte
}

func ParseRecording(r io.Reader) ([]Record, error) {
	recordsRaw, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recordsRaw) < 1 {
		return nil, errors.New("no header found")
	}
	header := recordsRaw[0]
	if len(header) != 3 || header[0] != csvHeader[0] || header[1] != csvHeader[1] || header[2] != csvHeader[2] {
		return nil, fmt.Errorf("invalid header: %v", header)
	}
	var records []Record
	for _, record := range recordsRaw[1:] {
		if len(record) != 3 {
			return nil, fmt.Errorf("invalid data record: %v", record)
		}
		timestampNS, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, err
		}
		if timestampNS < 0 {
			return nil, fmt.Errorf("invalid timestamp: %v", record[0])
		}
		channel := record[1]
		if channel == "" {
			return nil, errors.New("invalid empty string channel")
		}
		dataBytes, err := hex.DecodeString(record[2])
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			Timestamp: time.Duration(timestampNS),
			Channel:   channel,
			Bytes:     dataBytes,
		})
	}
	return records, nil
}

func DecodeRecording(path string) (records []Record, re error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()
	return ParseRecording(r)
}

// ExtractChannel concatenates the bytes recorded on one channel, in order.
func ExtractChannel(records []Record, channel string) []byte {
	var out []byte
	for _, record := range records {
		if record.Channel == channel {
			out = append(out, record.Bytes...)
		}
	}
	return out
}
