package util

import "encoding/binary"

func EncodeUint16BE(u uint16) []byte {
	var out [2]byte
	binary.BigEndian.PutUint16(out[:], u)
	return out[:]
}

func EncodeUint32BE(u uint32) []byte {
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], u)
	return out[:]
}

func DecodeUint16BE(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

func DecodeUint32BE(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// SplitUint16 returns the high and low bytes of a 16-bit field.
func SplitUint16(u uint16) (hi, lo byte) {
	return byte(u >> 8), byte(u)
}

func InRange(v, min, max int) bool {
	return v >= min && v <= max
}
