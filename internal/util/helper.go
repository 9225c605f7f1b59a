// Package util holds small byte helpers shared by the link packages.
package util

import (
	"strconv"
	"strings"
)

// CloneSlice copies src into a new slice of cloneSize elements.
// A cloneSize of 0 uses the length of src.
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}

const (
	hexDigits    = "0123456789ABCDEF"
	maxDumpBytes = 64
)

// HexDump renders b as space separated upper-case hex bytes for log records.
// Data longer than 64 bytes is truncated with a "..(+N)" suffix.
func HexDump(b []byte) string {
	n := len(b)
	if n > maxDumpBytes {
		b = b[:maxDumpBytes]
	}

	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0F])
	}
	if n > maxDumpBytes {
		sb.WriteString(" ..(+")
		sb.WriteString(strconv.Itoa(n - maxDumpBytes))
		sb.WriteByte(')')
	}

	return sb.String()
}
