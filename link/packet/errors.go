package packet

import (
	"fmt"
	"github.com/tennlab/ucaspian/link/opcode"
	"github.com/tennlab/ucaspian/link/util"
	"io"
)

// EncodingError reports a command field that does not fit its wire width.
// Fields are never truncated or clamped to make them fit.
type EncodingError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %s=%d: must be within %d..%d", e.Field, e.Value, e.Min, e.Max)
}

func checkField(field string, value, min, max int) error {
	if !util.InRange(value, min, max) {
		return &EncodingError{
			Field: field,
			Value: value,
			Min:   min,
			Max:   max,
		}
	}
	return nil
}

// TruncatedError reports a command stream that ended partway through a packet.
type TruncatedError struct {
	Offset int64
	Opcode opcode.Opcode
	Need   int
	Got    int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated %v command at offset %d: needed %d payload bytes but only %d remained",
		e.Opcode, e.Offset, e.Need, e.Got)
}

func (e *TruncatedError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// UnknownCommandError reports an opcode byte that begins no known host command.
type UnknownCommandError struct {
	Offset int64
	Opcode byte
}

func (e *UnknownCommandError) Error() string {
	if opcode.IsDeviceOpcode(e.Opcode) {
		return fmt.Sprintf("device reply opcode %v at offset %d in a host command stream", opcode.Opcode(e.Opcode), e.Offset)
	}
	return fmt.Sprintf("unknown command opcode 0x%02x at offset %d", e.Opcode, e.Offset)
}

// MalformedError reports a packet whose bytes are present but whose fields
// could not have been produced by the encoder in the selected framing.
type MalformedError struct {
	Offset int64
	Opcode opcode.Opcode
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %v command at offset %d: %s", e.Opcode, e.Offset, e.Reason)
}
