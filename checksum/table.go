package checksum

// Table is a 256-entry CRC lookup table.
type Table [256]uint32

type tableKey struct {
	width      int
	polynomial uint32
	reverse    bool
}

// MakeTable builds the lookup table for a width-bit CRC with the given polynomial.
//
// When reverse is set each index is reflected before the shift rounds and every entry is
// reflected over the full width afterwards, which yields the table of the reflected algorithm.
func MakeTable(width int, polynomial uint32, reverse bool) (*Table, error) {
	if !validWidth(width) {
		return nil, ErrInvalidWidth
	}

	mask := widthMask(width)
	top := uint32(1) << (width - 1)

	t := new(Table)
	for i := range 256 {
		v := uint32(i)
		if reverse {
			v = reflect(v, 8)
		}
		v <<= width - 8
		for range 8 {
			if v&top != 0 {
				v = (v << 1) ^ polynomial
			} else {
				v <<= 1
			}
		}
		if reverse {
			v = reflect(v, width)
		}
		t[i] = v & mask
	}

	return t, nil
}

func widthMask(width int) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}

	return (uint32(1) << width) - 1
}

// reflect mirrors the low bits of v.
func reflect(v uint32, bits int) uint32 {
	var r uint32
	for i := range bits {
		if v&(1<<i) != 0 {
			r |= 1 << (bits - 1 - i)
		}
	}

	return r
}
