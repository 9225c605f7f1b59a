package checksum

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Value is a computed checksum together with the number of bytes it occupies on the wire.
type Value struct {
	v    uint32
	size int
}

// NewValue returns a Value of size bytes. size is clamped to 1, 2 or 4.
func NewValue(v uint32, size int) Value {
	size = widthSize(size * 8)
	return Value{v: v & widthMask(size*8), size: size}
}

// Uint32 returns the raw value.
func (v Value) Uint32() uint32 { return v.v }

// Size returns the number of bytes of the value.
func (v Value) Size() int { return v.size }

// Swap returns the value with its bytes reversed.
func (v Value) Swap() Value {
	switch v.size {
	case 2:
		v.v = uint32(Swap16(uint16(v.v)))
	case 4:
		v.v = Swap32(v.v)
	}

	return v
}

// AppendBytes appends the value to dst in the given byte order.
func (v Value) AppendBytes(dst []byte, order binary.AppendByteOrder) []byte {
	switch v.size {
	case 1:
		return append(dst, byte(v.v))
	case 2:
		return order.AppendUint16(dst, uint16(v.v))
	default:
		return order.AppendUint32(dst, v.v)
	}
}

// Bytes returns the value serialized in the given byte order.
func (v Value) Bytes(order binary.AppendByteOrder) []byte {
	return v.AppendBytes(make([]byte, 0, v.size), order)
}

func (v Value) String() string {
	return fmt.Sprintf("0x%0*X", v.size*2, v.v)
}

// Swap16 reverses the bytes of v.
func Swap16(v uint16) uint16 { return bits.ReverseBytes16(v) }

// Swap32 reverses the bytes of v.
func Swap32(v uint32) uint32 { return bits.ReverseBytes32(v) }
