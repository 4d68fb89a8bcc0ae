package packet

import (
	"github.com/tennlab/ucaspian/link/opcode"
	"github.com/tennlab/ucaspian/link/util"
)

// Sizes of the device's replies, as read back by the host.
const (
	AckLength            = 1
	MetricResponseLength = 3
	TimeUpdateLength     = 5
	FireOutputLength     = 2
)

// The encoders below produce the device's side of the link. The host never
// sends these; they exist to drive fake devices and to build trace fixtures.

func EncodeClearAck() []byte {
	return []byte{byte(opcode.ClearAck)}
}

func EncodeConfigAck() []byte {
	return []byte{byte(opcode.ConfigAck)}
}

func EncodeMetricResponse(address, value uint8) []byte {
	return []byte{byte(opcode.Metric), address, value}
}

func EncodeTimeUpdate(t uint32) []byte {
	return append([]byte{byte(opcode.TimeUpdate)}, util.EncodeUint32BE(t)...)
}

func EncodeFireOutput(address uint8) []byte {
	return []byte{byte(opcode.FireOutput), address}
}
