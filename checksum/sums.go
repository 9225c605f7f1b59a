package checksum

import "hash/adler32"

func sum(data []byte) uint32 {
	var s uint32
	for _, b := range data {
		s += uint32(b)
	}

	return s
}

func xor8(data []byte) uint8 {
	var x uint8
	for _, b := range data {
		x ^= b
	}

	return x
}

func fletcher16(data []byte) uint16 {
	var s1, s2 uint16
	for _, b := range data {
		s1 = (s1 + uint16(b)) % 255
		s2 = (s2 + s1) % 255
	}

	return s2<<8 | s1
}

func adler(data []byte) uint32 {
	return adler32.Checksum(data)
}
