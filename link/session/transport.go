package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// Transport is the byte channel to the device. ReadTimeout blocks until max
// bytes have arrived or the timeout elapses, and returns whatever did arrive;
// a short result is not an error.
type Transport interface {
	Write(data []byte) (int, error)
	ReadTimeout(max int, timeout time.Duration) ([]byte, error)
}

// Port is a transport that is exclusively owned by one session.
type Port interface {
	Transport
	io.Closer
}

type Opener func() (Port, error)

// DeadlineReadWriter is satisfied by ttys opened with os.OpenFile and by
// net.Conn, which covers local serial adapters and networked serial bridges.
type DeadlineReadWriter interface {
	io.ReadWriter
	SetReadDeadline(t time.Time) error
}

type StreamTransport struct {
	rw DeadlineReadWriter
}

var _ Port = &StreamTransport{}

func MakeStreamTransport(rw DeadlineReadWriter) *StreamTransport {
	return &StreamTransport{rw: rw}
}

func (s *StreamTransport) Write(data []byte) (int, error) {
	return s.rw.Write(data)
}

func (s *StreamTransport) ReadTimeout(max int, timeout time.Duration) ([]byte, error) {
	if max <= 0 {
		return nil, nil
	}
	if err := s.rw.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, max)
	n := 0
	for n < max {
		got, err := s.rw.Read(buf[n:])
		n += got
		if errors.Is(err, os.ErrDeadlineExceeded) {
			break
		} else if err != nil {
			return buf[:n], err
		}
	}
	return buf[:n], nil
}

func (s *StreamTransport) Close() error {
	if c, ok := s.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenDevice returns an opener for a character device such as /dev/ttyUSB0.
// Line settings (baud rate, raw mode) must already have been applied.
func OpenDevice(path string) Opener {
	return func() (Port, error) {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return nil, err
		}
		return MakeStreamTransport(f), nil
	}
}

// DialBridge returns an opener for a serial port exported over TCP.
func DialBridge(address string, timeout time.Duration) Opener {
	return func() (Port, error) {
		conn, err := net.DialTimeout("tcp", address, timeout)
		if err != nil {
			return nil, fmt.Errorf("dialing serial bridge %s: %w", address, err)
		}
		return MakeStreamTransport(conn), nil
	}
}
