package capture

import (
	"github.com/tennlab/ucaspian/link/session"
	"time"
)

type tap struct {
	port     session.Port
	recorder Recorder
}

// Tap records every write to p on ChannelTx and every non-empty read on
// ChannelRx.
func Tap(p session.Port, recorder Recorder) session.Port {
	return &tap{
		port:     p,
		recorder: recorder,
	}
}

func (t *tap) Write(data []byte) (int, error) {
	n, err := t.port.Write(data)
	if n > 0 {
		t.recorder.Record(ChannelTx, data[:n])
	}
	return n, err
}

func (t *tap) ReadTimeout(max int, timeout time.Duration) ([]byte, error) {
	data, err := t.port.ReadTimeout(max, timeout)
	if len(data) > 0 {
		t.recorder.Record(ChannelRx, data)
	}
	return data, err
}

func (t *tap) Close() error {
	return t.port.Close()
}
