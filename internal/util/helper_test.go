package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneSlice(t *testing.T) {
	src := []byte{1, 2, 3}
	c := CloneSlice(src, 0)
	assert.Equal(t, src, c)
	c[0] = 9
	assert.Equal(t, byte(1), src[0])

	assert.Equal(t, []byte{1, 2, 3, 0}, CloneSlice(src, 4))
	assert.Equal(t, []byte{1}, CloneSlice(src, 1))
}

func TestHexDump(t *testing.T) {
	assert.Equal(t, "", HexDump(nil))
	assert.Equal(t, "01 41 42 03", HexDump([]byte{0x01, 0x41, 0x42, 0x03}))
	assert.Equal(t, "FF", HexDump([]byte{0xff}))

	long := bytes.Repeat([]byte{0xAA}, 70)
	out := HexDump(long)
	assert.True(t, len(out) > 0)
	assert.Contains(t, out, " ..(+6)")
}
