package link

import "encoding/binary"

// ByteOrder is the order in which multi-byte markers and checksums are written.
type ByteOrder uint8

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "LittleEndian"
	}

	return "BigEndian"
}

// binaryOrder reads and appends fixed-width integers.
type binaryOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (o ByteOrder) binary() binaryOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// NativeByteOrder returns the byte order of the host.
func NativeByteOrder() ByteOrder {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return LittleEndian
	}

	return BigEndian
}
