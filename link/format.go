package link

import (
	"fmt"

	"github.com/arloliu/go-packetlink/checksum"
)

// Format describes how payloads are framed on a medium.
//
// Every client attached to the same medium must use an equal Format.
type Format struct {
	Begin       Marker
	End         Marker
	Checksum    checksum.Spec
	MinimumSize int
	ByteOrder   ByteOrder
}

// Validate reports configuration errors of f.
func (f Format) Validate() error {
	if f.MinimumSize < 0 {
		return fmt.Errorf("%w: minimum size %d is negative", ErrInvalidOption, f.MinimumSize)
	}

	return f.Checksum.Validate()
}

// Mismatch returns the name of the first setting that differs between f and o, or "" when equal.
func (f Format) Mismatch(o Format) string {
	switch {
	case f.Begin != o.Begin:
		return "begin marker"
	case f.End != o.End:
		return "end marker"
	case f.ByteOrder != o.ByteOrder:
		return "byte order"
	case f.MinimumSize != o.MinimumSize:
		return "minimum size"
	case !f.Checksum.Equal(o.Checksum):
		return "checksum"
	default:
		return ""
	}
}

// Frame is a frame located in a receive buffer.
type Frame struct {
	// Start is the offset of the first frame byte.
	Start int
	// Length is the number of frame bytes including markers and checksum.
	Length int
	// Payload is a copy of the frame payload.
	Payload []byte
}

// End returns the number of buffer bytes consumed by the frame and everything before it.
func (fr Frame) End() int {
	return fr.Start + fr.Length
}
