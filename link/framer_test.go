package link

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-packetlink/checksum"
)

func crcAt(kind checksum.Kind, pos int) checksum.Spec {
	spec := checksum.New(kind)
	spec.Position = pos

	return spec
}

func TestParseFrame_Scenario(t *testing.T) {
	require := require.New(t)

	f := Format{Begin: Uint8Marker(0x01), End: Uint8Marker(0x03), Checksum: checksum.New(checksum.None)}

	p := NewPacket(f)
	p.Append('A', 'B')
	frame, err := p.ExtractPacket()
	require.NoError(err)
	require.Equal([]byte{0x01, 0x41, 0x42, 0x03}, frame)

	q := NewPacket(f)
	start, length, ok, err := q.ParsePacket(frame)
	require.NoError(err)
	require.True(ok)
	require.Equal(0, start)
	require.Equal(4, length)
	require.Equal([]byte("AB"), q.Payload())
}

func TestFramer_RoundTrip(t *testing.T) {
	payload := []byte("hello")

	tests := []struct {
		name   string
		format Format
	}{
		{
			name:   "markers without checksum",
			format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03)},
		},
		{
			name:   "markers with trailing CRC16",
			format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: checksum.New(checksum.CRC16)},
		},
		{
			name:   "markers with CRC32 after begin marker",
			format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: crcAt(checksum.CRC32, 1)},
		},
		{
			name:   "begin marker with CCITT16, no end marker",
			format: Format{Begin: Uint8Marker(0x02), Checksum: checksum.New(checksum.CCITT16)},
		},
		{
			name:   "end marker only",
			format: Format{End: Uint8Marker(0x03)},
		},
		{
			name:   "begin marker only",
			format: Format{Begin: Uint8Marker(0x02)},
		},
		{
			name: "16-bit big endian markers with CRC24",
			format: Format{
				Begin:     Uint16Marker(0xAA55),
				End:       Uint16Marker(0x0D0A),
				Checksum:  checksum.New(checksum.CRC24),
				ByteOrder: BigEndian,
			},
		},
		{
			name: "32-bit little endian markers with Adler32",
			format: Format{
				Begin:     Int32Marker(-2),
				End:       Uint32Marker(0x0A0B0C0D),
				Checksum:  checksum.New(checksum.Adler32),
				ByteOrder: LittleEndian,
			},
		},
		{
			name:   "byte string markers with Sum8",
			format: Format{Begin: BytesMarker([]byte("<<")), End: BytesMarker([]byte(">>")), Checksum: checksum.New(checksum.Sum8)},
		},
		{
			name:   "reversed checksum bytes",
			format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: reversed(checksum.New(checksum.FCS16))},
		},
		{
			name: "checksum over payload only",
			format: Format{
				Begin:    Uint8Marker(0x02),
				End:      Uint8Marker(0x03),
				Checksum: region(checksum.New(checksum.Fletcher16), 1, -2),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			fr := Framer{Format: tt.format}
			frame, err := fr.Build(payload)
			require.NoError(err)
			require.Len(frame, tt.format.Begin.Size()+len(payload)+tt.format.End.Size()+tt.format.Checksum.Size())

			parsed, err := fr.Parse(frame)
			require.NoError(err)
			require.Equal(0, parsed.Start)
			require.Equal(len(frame), parsed.Length)
			require.Equal(payload, parsed.Payload)

			again, err := fr.Build(parsed.Payload)
			require.NoError(err)
			require.Equal(frame, again)
		})
	}
}

func reversed(s checksum.Spec) checksum.Spec {
	s.ReversedBytes = true
	return s
}

func region(s checksum.Spec, start, count int) checksum.Spec {
	s.Start = start
	s.Count = count

	return s
}

func TestFramer_MismatchWithEndMarkerMovesOn(t *testing.T) {
	require := require.New(t)

	fr := Framer{Format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: checksum.New(checksum.CRC32)}}

	bad, err := fr.Build([]byte("abc"))
	require.NoError(err)
	bad[1] ^= 0x01

	good, err := fr.Build([]byte("xyz"))
	require.NoError(err)

	data := append(append([]byte{}, bad...), good...)
	parsed, err := fr.Parse(data)
	require.NoError(err)
	require.Equal(len(bad), parsed.Start)
	require.Equal(len(good), parsed.Length)
	require.Equal([]byte("xyz"), parsed.Payload)
	require.Equal(len(data), parsed.End())
}

func TestFramer_MismatchWithoutEndMarkerExhausts(t *testing.T) {
	require := require.New(t)

	fr := Framer{Format: Format{Begin: Uint8Marker(0x02), Checksum: checksum.New(checksum.CRC32)}}

	frame, err := fr.Build([]byte("payload"))
	require.NoError(err)
	frame[3] ^= 0x80

	_, err = fr.Parse(frame)
	require.ErrorIs(err, ErrIncomplete)
}

func TestFramer_EmbeddedEndMarkerWithChecksum(t *testing.T) {
	require := require.New(t)

	fr := Framer{Format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: checksum.New(checksum.CRC32)}}

	payload := []byte{0x10, 0x03, 0x20}
	frame, err := fr.Build(payload)
	require.NoError(err)

	parsed, err := fr.Parse(frame)
	require.NoError(err)
	require.Equal(payload, parsed.Payload)
	require.Equal(len(frame), parsed.Length)
}

func TestFramer_Resync(t *testing.T) {
	require := require.New(t)

	fr := Framer{Format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03)}}

	parsed, err := fr.Parse([]byte{0xFF, 0xEE, 0x02, 0x41, 0x03, 0x99})
	require.NoError(err)
	require.Equal(2, parsed.Start)
	require.Equal(3, parsed.Length)
	require.Equal([]byte{0x41}, parsed.Payload)
	require.Equal(5, parsed.End())
}

func TestFramer_Incomplete(t *testing.T) {
	fr := Framer{Format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: checksum.New(checksum.CRC16)}}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no begin marker", []byte{0x41, 0x42}},
		{"no end marker", []byte{0x02, 0x41, 0x42}},
		{"checksum not yet received", []byte{0x02, 0x41, 0x03, 0x12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fr.Parse(tt.data)
			assert.ErrorIs(t, err, ErrIncomplete)
		})
	}
}

func TestFramer_MinimumSize(t *testing.T) {
	require := require.New(t)

	fr := Framer{Format: Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), MinimumSize: 4}}

	_, err := fr.Parse([]byte{0x02, 0x03})
	require.ErrorIs(err, ErrIncomplete)

	// the end marker at index 2 closes a frame shorter than the minimum
	parsed, err := fr.Parse([]byte{0x02, 0x41, 0x03, 0x42, 0x03})
	require.NoError(err)
	require.Equal(0, parsed.Start)
	require.Equal(5, parsed.Length)
	require.Equal([]byte{0x41, 0x03, 0x42}, parsed.Payload)
}

func TestFramer_OwnChecksum(t *testing.T) {
	require := require.New(t)

	calls := 0
	counter := func(data []byte, start, count int) (uint32, error) {
		calls++
		region, err := checksum.Region(data, start, count)
		if err != nil {
			return 0, err
		}
		var sum uint32
		for _, b := range region {
			sum += uint32(b)
		}

		return sum, nil
	}

	f := Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: checksum.New(checksum.Own), ByteOrder: BigEndian}
	fr := Framer{Format: f, Counter: counter}

	frame, err := fr.Build([]byte{0x10, 0x20})
	require.NoError(err)
	require.Equal([]byte{0x02, 0x10, 0x20, 0x03, 0x00, 0x35}, frame)

	parsed, err := fr.Parse(frame)
	require.NoError(err)
	require.Equal([]byte{0x10, 0x20}, parsed.Payload)
	require.Positive(calls)

	_, err = (&Framer{Format: f}).Build([]byte{0x10})
	require.ErrorIs(err, checksum.ErrOwnChecksum)
}

func TestFramer_ChecksumByteOrderComposition(t *testing.T) {
	payload := []byte("123456789")

	tests := []struct {
		name     string
		order    ByteOrder
		reversed bool
		want     binary.AppendByteOrder
	}{
		{"big endian", BigEndian, false, binary.BigEndian},
		{"little endian", LittleEndian, false, binary.LittleEndian},
		{"big endian reversed", BigEndian, true, binary.LittleEndian},
		{"little endian reversed", LittleEndian, true, binary.BigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			spec := checksum.New(checksum.CRC16)
			spec.ReversedBytes = tt.reversed
			fr := Framer{Format: Format{Checksum: spec, ByteOrder: tt.order}}

			frame, err := fr.Build(payload)
			require.NoError(err)
			require.Len(frame, len(payload)+2)

			want := tt.want.AppendUint16(nil, 0xBB3D)
			require.Equal(want, frame[len(payload):])
		})
	}
}

func TestFramer_ChecksumPositionOutOfFrame(t *testing.T) {
	spec := checksum.New(checksum.CRC16)
	spec.Position = 10
	fr := Framer{Format: Format{Checksum: spec}}

	_, err := fr.Build([]byte{0x01})
	require.ErrorIs(t, err, ErrChecksumPosition)
}

func TestFormat_Mismatch(t *testing.T) {
	base := Format{Begin: Uint8Marker(0x02), End: Uint8Marker(0x03), Checksum: checksum.New(checksum.CRC16)}

	other := base
	assert.Empty(t, base.Mismatch(other))

	other.End = Uint8Marker(0x04)
	assert.Equal(t, "end marker", base.Mismatch(other))

	other = base
	other.Checksum = checksum.New(checksum.CRC32)
	assert.Equal(t, "checksum", base.Mismatch(other))

	other = base
	other.ByteOrder = BigEndian
	base.ByteOrder = LittleEndian
	assert.Equal(t, "byte order", base.Mismatch(other))
}
