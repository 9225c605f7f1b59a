// Package checksum implements the table driven CRC engine and the simple checksums
// used to protect link frames.
//
// CRC kinds of any width in {8, 16, 24, 32} are computed from a 256-entry table that
// an Engine caches and rebuilds only when width, polynomial or input reflection change.
// Additive sums, XOR-8, Fletcher-16 and Adler-32 need no table.
package checksum

import (
	"fmt"
	"sync"
)

// Engine computes checksums. The zero value is ready to use and safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	key   tableKey
	table *Table
}

// NewEngine returns a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute returns the checksum of data[start:start+count] using spec.
//
// A negative count is relative to the end of data: -1 covers everything from start to
// the last byte. The Own kind returns ErrOwnChecksum since its value comes from outside.
func (e *Engine) Compute(spec Spec, data []byte, start, count int) (Value, error) {
	if err := spec.Validate(); err != nil {
		return Value{}, err
	}

	region, err := Region(data, start, count)
	if err != nil {
		return Value{}, err
	}

	size := spec.Size()

	switch spec.Kind {
	case None:
		return Value{}, nil
	case Own:
		return Value{}, ErrOwnChecksum
	case Sum8:
		return NewValue(sum(region)&0xFF, 1), nil
	case Sum16:
		return NewValue(sum(region)&0xFFFF, 2), nil
	case Sum32:
		return NewValue(sum(region), 4), nil
	case XOR8:
		return NewValue(uint32(xor8(region)), 1), nil
	case Fletcher16:
		return NewValue(uint32(fletcher16(region)), 2), nil
	case Adler32:
		return NewValue(adler(region), 4), nil
	}

	t, err := e.tableFor(spec)
	if err != nil {
		return Value{}, err
	}

	return NewValue(crc(t, spec, region), size), nil
}

// Region resolves start and count against data and returns the covered slice.
func Region(data []byte, start, count int) ([]byte, error) {
	if count < 0 {
		count = len(data) + count + 1 - start
	}
	if start < 0 || count < 0 || start+count > len(data) {
		return nil, fmt.Errorf("%w: start=%d count=%d len=%d", ErrRange, start, count, len(data))
	}

	return data[start : start+count], nil
}

func (e *Engine) tableFor(spec Spec) (*Table, error) {
	key := tableKey{width: spec.Width, polynomial: spec.Polynomial, reverse: spec.ReverseInput}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.table != nil && e.key == key {
		return e.table, nil
	}

	t, err := MakeTable(spec.Width, spec.Polynomial, spec.ReverseInput)
	if err != nil {
		return nil, err
	}
	e.key = key
	e.table = t

	return t, nil
}

func crc(t *Table, spec Spec, data []byte) uint32 {
	w := spec.Width
	mask := widthMask(w)

	v := spec.Initial
	if spec.ReverseInput {
		v = reflect(v, w)
	}

	if spec.ReverseInput {
		for _, b := range data {
			v = (v >> 8) ^ t[(v&0xFF)^uint32(b)]
		}
	} else {
		for _, b := range data {
			v = ((v << 8) ^ t[((v>>(w-8))&0xFF)^uint32(b)]) & mask
		}
	}

	if spec.ReflectOutput != spec.ReverseInput {
		v = reflect(v, w)
	}

	return (v ^ spec.FinalXor) & mask
}

var defaultEngine Engine

// Compute computes a checksum with the package level engine.
func Compute(spec Spec, data []byte, start, count int) (Value, error) {
	return defaultEngine.Compute(spec, data, start, count)
}
