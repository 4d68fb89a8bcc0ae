// Package testpoint provides in-memory stand-ins for the serial link.
package testpoint

import (
	"errors"
	"time"
)

// ScriptedTransport replays fixed device output, returning it immediately
// instead of waiting for a timeout. If Budget is positive, the device goes
// silent after delivering that many bytes in total. Writes are collected in
// Written, and separately per call in Packets.
type ScriptedTransport struct {
	Ready    []byte
	Budget   int
	Written  []byte
	Packets  [][]byte
	Timeouts []time.Duration
	Closed   bool
	WriteErr error
}

func MakeScriptedTransport(ready []byte) *ScriptedTransport {
	return &ScriptedTransport{
		Ready: ready,
	}
}

func (s *ScriptedTransport) Write(data []byte) (int, error) {
	if s.Closed {
		return 0, errors.New("write to closed transport")
	}
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	s.Written = append(s.Written, data...)
	s.Packets = append(s.Packets, append([]byte(nil), data...))
	return len(data), nil
}

func (s *ScriptedTransport) ReadTimeout(max int, timeout time.Duration) ([]byte, error) {
	s.Timeouts = append(s.Timeouts, timeout)
	if s.Closed {
		return nil, errors.New("read from closed transport")
	}
	if max > len(s.Ready) {
		max = len(s.Ready)
	}
	if s.Budget > 0 && max > s.Budget {
		max = s.Budget
	}
	out := append([]byte(nil), s.Ready[:max]...)
	s.Ready = s.Ready[max:]
	if s.Budget > 0 {
		s.Budget -= max
		if s.Budget == 0 {
			// budget exhausted: the device goes silent
			s.Ready = nil
		}
	}
	return out, nil
}

func (s *ScriptedTransport) Close() error {
	if s.Closed {
		return errors.New("transport already closed")
	}
	s.Closed = true
	return nil
}

func (s *ScriptedTransport) IsConsumed() bool {
	return len(s.Ready) == 0
}
