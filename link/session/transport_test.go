package session

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"
)

func TestStreamTransportShortRead(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	st := MakeStreamTransport(local)
	defer st.Close()

	go func() {
		_, _ = remote.Write([]byte{1, 2})
		_, _ = remote.Write([]byte{3})
	}()
	start := time.Now()
	data, err := st.ReadTimeout(5, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("wrong data\nreceived: %v\nexpected: %v", data, []byte{1, 2, 3})
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("short read returned before the timeout, after %v", elapsed)
	}
}

func TestStreamTransportFullRead(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	st := MakeStreamTransport(local)
	defer st.Close()

	go func() {
		_, _ = remote.Write([]byte{112, 112, 112, 4})
	}()
	// returns as soon as the requested bytes arrive, leaving the rest
	data, err := st.ReadTimeout(3, 10*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{112, 112, 112}) {
		t.Errorf("wrong data %v", data)
	}
	data, err = st.ReadTimeout(3, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{4}) {
		t.Errorf("wrong remainder %v", data)
	}
}

func TestStreamTransportWriteAndClose(t *testing.T) {
	local, remote := net.Pipe()
	st := MakeStreamTransport(local)
	received := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(remote)
		received <- data
	}()
	if _, err := st.Write([]byte{8, 4}); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	if data := <-received; !bytes.Equal(data, []byte{8, 4}) {
		t.Errorf("wrong bytes on the wire: %v", data)
	}
	if _, err := st.ReadTimeout(1, time.Millisecond); err == nil {
		t.Error("expected error reading a closed transport")
	}
}

func TestDialBridge(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		if _, err := io.ReadFull(conn, buf); err == nil && buf[0] == 8 {
			_, _ = conn.Write([]byte{12})
		}
	}()
	err = WithSession(DialBridge(ln.Addr().String(), time.Second), time.Second, func(d *Dispatcher) error {
		reply, err := d.ClearConfig()
		if err != nil {
			return err
		}
		return reply.Err()
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestOpenDeviceMissing(t *testing.T) {
	if _, err := OpenDevice("/nonexistent/ttyUSB0")(); err == nil {
		t.Error("expected error opening a missing device")
	}
}
