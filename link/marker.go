package link

import (
	"fmt"

	"github.com/arloliu/go-packetlink/internal/util"
)

// MarkerType is the scalar type of a frame marker.
type MarkerType uint8

const (
	MarkerNone MarkerType = iota
	MarkerUint8
	MarkerInt8
	MarkerUint16
	MarkerInt16
	MarkerUint32
	MarkerInt32
	MarkerBytes
)

// Marker is an optional begin or end of packet value.
//
// Scalar markers are written in the byte order of the frame format; raw byte
// markers are written as given. The zero Marker is "not configured".
// Markers are comparable with ==.
type Marker struct {
	typ MarkerType
	v   uint32
	raw string
}

// Uint8Marker returns a one byte marker.
func Uint8Marker(v uint8) Marker { return Marker{typ: MarkerUint8, v: uint32(v)} }

// Int8Marker returns a one byte signed marker.
func Int8Marker(v int8) Marker { return Marker{typ: MarkerInt8, v: uint32(uint8(v))} }

// Uint16Marker returns a two byte marker.
func Uint16Marker(v uint16) Marker { return Marker{typ: MarkerUint16, v: uint32(v)} }

// Int16Marker returns a two byte signed marker.
func Int16Marker(v int16) Marker { return Marker{typ: MarkerInt16, v: uint32(uint16(v))} }

// Uint32Marker returns a four byte marker.
func Uint32Marker(v uint32) Marker { return Marker{typ: MarkerUint32, v: v} }

// Int32Marker returns a four byte signed marker.
func Int32Marker(v int32) Marker { return Marker{typ: MarkerInt32, v: uint32(v)} }

// BytesMarker returns a marker matching b verbatim. An empty b means no marker.
func BytesMarker(b []byte) Marker {
	if len(b) == 0 {
		return Marker{}
	}

	return Marker{typ: MarkerBytes, raw: string(b)}
}

// Type returns the marker type.
func (m Marker) Type() MarkerType { return m.typ }

// IsSet reports whether the marker is configured.
func (m Marker) IsSet() bool { return m.typ != MarkerNone }

// Size returns the encoded length of the marker in bytes.
func (m Marker) Size() int {
	switch m.typ {
	case MarkerUint8, MarkerInt8:
		return 1
	case MarkerUint16, MarkerInt16:
		return 2
	case MarkerUint32, MarkerInt32:
		return 4
	case MarkerBytes:
		return len(m.raw)
	default:
		return 0
	}
}

// AppendBytes appends the encoded marker to dst.
func (m Marker) AppendBytes(dst []byte, order ByteOrder) []byte {
	switch m.typ {
	case MarkerUint8, MarkerInt8:
		return append(dst, byte(m.v))
	case MarkerUint16, MarkerInt16:
		return order.binary().AppendUint16(dst, uint16(m.v))
	case MarkerUint32, MarkerInt32:
		return order.binary().AppendUint32(dst, m.v)
	case MarkerBytes:
		return append(dst, m.raw...)
	default:
		return dst
	}
}

// Bytes returns the encoded marker.
func (m Marker) Bytes(order ByteOrder) []byte {
	if !m.IsSet() {
		return nil
	}

	return m.AppendBytes(make([]byte, 0, m.Size()), order)
}

func (m Marker) String() string {
	switch m.typ {
	case MarkerNone:
		return "none"
	case MarkerBytes:
		return "[" + util.HexDump([]byte(m.raw)) + "]"
	case MarkerInt8:
		return fmt.Sprintf("%d", int8(m.v))
	case MarkerInt16:
		return fmt.Sprintf("%d", int16(m.v))
	case MarkerInt32:
		return fmt.Sprintf("%d", int32(m.v))
	default:
		return fmt.Sprintf("0x%X", m.v)
	}
}
