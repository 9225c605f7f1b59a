package link

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/arloliu/go-packetlink/checksum"
	"github.com/arloliu/go-packetlink/internal/util"
)

// ChecksumFunc supplies the checksum of data[start:start+count] for the Own kind.
// A negative count is relative to the end of data.
type ChecksumFunc func(data []byte, start, count int) (uint32, error)

// Framer builds and locates frames of one Format.
//
// Parsing is a pure function of the buffer: candidate frames are validated by
// rebuilding them from the candidate payload, so a frame accepted by Parse is
// byte-identical to what Build produces for the same payload.
type Framer struct {
	Format Format
	// Engine computes checksums. Nil uses the package level engine of checksum.
	Engine *checksum.Engine
	// Counter supplies checksums when Format.Checksum.Kind is checksum.Own.
	Counter ChecksumFunc
}

// ParseFrame locates the first frame of f in data. See Framer.Parse.
func ParseFrame(f Format, data []byte) (Frame, error) {
	fr := Framer{Format: f}
	return fr.Parse(data)
}

// Build returns the frame of payload.
func (fr *Framer) Build(payload []byte) ([]byte, error) {
	body := fr.body(payload)
	if !fr.Format.Checksum.Enabled() {
		return body, nil
	}

	v, err := fr.checksumOf(body)
	if err != nil {
		return nil, err
	}

	return fr.splice(body, v)
}

// body returns begin marker, payload and end marker without checksum.
func (fr *Framer) body(payload []byte) []byte {
	f := fr.Format
	out := make([]byte, 0, f.Begin.Size()+len(payload)+f.End.Size()+f.Checksum.Size())
	out = f.Begin.AppendBytes(out, f.ByteOrder)
	out = append(out, payload...)

	return f.End.AppendBytes(out, f.ByteOrder)
}

func (fr *Framer) checksumOf(body []byte) (checksum.Value, error) {
	spec := fr.Format.Checksum
	if spec.Kind != checksum.Own {
		if fr.Engine != nil {
			return fr.Engine.Compute(spec, body, spec.Start, spec.Count)
		}
		return checksum.Compute(spec, body, spec.Start, spec.Count)
	}

	if fr.Counter == nil {
		return checksum.Value{}, checksum.ErrOwnChecksum
	}
	if _, err := checksum.Region(body, spec.Start, spec.Count); err != nil {
		return checksum.Value{}, err
	}
	v, err := fr.Counter(body, spec.Start, spec.Count)
	if err != nil {
		return checksum.Value{}, err
	}

	return checksum.NewValue(v, spec.Size()), nil
}

// checksumBytes serializes v. The value is swapped when the configured order differs from
// the host order and swapped again when ReversedBytes is set, then written in host order.
// The result is the configured byte order, reversed when ReversedBytes is set.
func (fr *Framer) checksumBytes(v checksum.Value) []byte {
	native := NativeByteOrder()
	swap := fr.Format.ByteOrder != native
	if fr.Format.Checksum.ReversedBytes {
		swap = !swap
	}
	if swap {
		v = v.Swap()
	}

	return v.Bytes(native.binary())
}

// position resolves the checksum insert position against a body of bodyLen bytes.
func (fr *Framer) position(bodyLen int) (int, error) {
	pos := fr.Format.Checksum.Position
	if pos < 0 {
		pos = bodyLen + pos + 1
	}
	if pos < 0 || pos > bodyLen {
		return 0, fmt.Errorf("%w: position %d, frame length %d", ErrChecksumPosition, fr.Format.Checksum.Position, bodyLen)
	}

	return pos, nil
}

func (fr *Framer) splice(body []byte, v checksum.Value) ([]byte, error) {
	pos, err := fr.position(len(body))
	if err != nil {
		return nil, err
	}

	sum := fr.checksumBytes(v)
	out := make([]byte, 0, len(body)+len(sum))
	out = append(out, body[:pos]...)
	out = append(out, sum...)

	return append(out, body[pos:]...), nil
}

// Parse locates the first valid frame in data.
//
// It returns ErrIncomplete when data holds no complete frame yet; data is never
// modified. On success the caller drops data[:frame.End()].
//
// Frames are searched from every begin marker occurrence in turn. With an end marker
// each occurrence of it closes a candidate frame; a candidate shorter than the minimum
// size or failing its checksum moves on to the next occurrence. Without an end marker
// but with a checksum, payload lengths are tried from the longest down to one byte.
// With neither, the frame extends to the end of data.
func (fr *Framer) Parse(data []byte) (Frame, error) {
	f := fr.Format
	if len(data) == 0 || len(data) < f.MinimumSize {
		return Frame{}, ErrIncomplete
	}

	begin := f.Begin.Bytes(f.ByteOrder)
	end := f.End.Bytes(f.ByteOrder)
	csz := f.Checksum.Size()

	for cursor := 0; cursor < len(data); {
		start := cursor
		if len(begin) > 0 {
			idx := bytes.Index(data[cursor:], begin)
			if idx < 0 {
				return Frame{}, ErrIncomplete
			}
			start = cursor + idx
		}
		if len(data)-start < f.MinimumSize {
			return Frame{}, ErrIncomplete
		}

		var (
			frame Frame
			found bool
			err   error
		)
		switch {
		case len(end) > 0:
			frame, found, err = fr.scanEnd(data, start, begin, end, csz)
		case csz > 0:
			frame, found, err = fr.scanLength(data, start, begin, csz)
		default:
			n := len(data) - start
			if n <= len(begin) {
				return Frame{}, ErrIncomplete
			}
			return Frame{Start: start, Length: n, Payload: util.CloneSlice(data[start+len(begin):], 0)}, nil
		}
		if err != nil {
			return Frame{}, err
		}
		if found {
			return frame, nil
		}
		if len(begin) == 0 {
			break
		}
		cursor = start + 1
	}

	return Frame{}, ErrIncomplete
}

// scanEnd tries every end marker occurrence after the begin marker at start.
func (fr *Framer) scanEnd(data []byte, start int, begin, end []byte, csz int) (Frame, bool, error) {
	trailing := csz > 0 && fr.Format.Checksum.Position == -1
	seen := false

	for from := start + len(begin); from <= len(data)-len(end); {
		idx := bytes.Index(data[from:], end)
		if idx < 0 {
			break
		}
		e := from + idx
		from = e + 1
		seen = true

		n := e + len(end) - start
		if trailing {
			n += csz
		}
		if n < fr.Format.MinimumSize {
			continue
		}
		if start+n > len(data) {
			return Frame{}, false, ErrIncomplete
		}

		payload, ok, err := fr.tryFrame(data[start:start+n], begin, end, csz)
		if err != nil {
			return Frame{}, false, err
		}
		if ok {
			return Frame{Start: start, Length: n, Payload: payload}, true, nil
		}
	}

	if !seen {
		return Frame{}, false, ErrIncomplete
	}

	return Frame{}, false, nil
}

// scanLength tries payload lengths from the longest down to one byte.
func (fr *Framer) scanLength(data []byte, start int, begin []byte, csz int) (Frame, bool, error) {
	shortest := max(len(begin)+1+csz, fr.Format.MinimumSize)

	for n := len(data) - start; n >= shortest; n-- {
		payload, ok, err := fr.tryFrame(data[start:start+n], begin, nil, csz)
		if err != nil {
			return Frame{}, false, err
		}
		if ok {
			return Frame{Start: start, Length: n, Payload: payload}, true, nil
		}
	}

	return Frame{}, false, nil
}

// tryFrame validates a candidate frame and returns a copy of its payload.
func (fr *Framer) tryFrame(frame, begin, end []byte, csz int) ([]byte, bool, error) {
	body := frame
	var sum []byte

	if csz > 0 {
		bodyLen := len(frame) - csz
		if bodyLen < len(begin)+len(end) {
			return nil, false, nil
		}
		pos, err := fr.position(bodyLen)
		if err != nil {
			return nil, false, nil //nolint:nilerr
		}
		sum = frame[pos : pos+csz]
		body = make([]byte, 0, bodyLen)
		body = append(body, frame[:pos]...)
		body = append(body, frame[pos+csz:]...)
	}

	if len(body) < len(begin)+len(end) || !bytes.HasPrefix(body, begin) || !bytes.HasSuffix(body, end) {
		return nil, false, nil
	}

	if csz > 0 {
		v, err := fr.checksumOf(body)
		if errors.Is(err, checksum.ErrRange) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if !bytes.Equal(fr.checksumBytes(v), sum) {
			return nil, false, nil
		}
	}

	return util.CloneSlice(body[len(begin):len(body)-len(end)], 0), true, nil
}
