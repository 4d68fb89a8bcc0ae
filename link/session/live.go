package session

import (
	"io"
	"time"
)

// LiveReader presents a device's output as an io.Reader. A read that returns
// nothing within Idle is treated as the end of the stream.
type LiveReader struct {
	transport Transport
	Idle      time.Duration
	// Chunk bounds the size of each transport read. Small chunks return
	// partial output promptly, since a read only ends early on timeout.
	Chunk int
}

var _ io.Reader = &LiveReader{}

func MakeLiveReader(t Transport, idle time.Duration) *LiveReader {
	return &LiveReader{
		transport: t,
		Idle:      idle,
		Chunk:     1,
	}
}

func (l *LiveReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	max := len(p)
	if l.Chunk > 0 && l.Chunk < max {
		max = l.Chunk
	}
	data, err := l.transport.ReadTimeout(max, l.Idle)
	n := copy(p, data)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
