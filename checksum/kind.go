package checksum

import (
	"fmt"
	"strings"
)

// Kind selects a checksum algorithm.
//
// The numeric values are part of the wire-level configuration contract and must not be reordered.
type Kind uint8

const (
	None            Kind = iota // no checksum
	Own                         // checksum supplied by a ChecksumCounter hook
	CRC16                       // poly 0x8005, reflected
	CRC16Reversed               // poly 0xA001, reflected
	CRC32                       // poly 0x04C11DB7, reflected, seed/xorout 0xFFFFFFFF
	Fletcher16                  // Fletcher-16
	Adler32                     // Adler-32
	CCITT16                     // poly 0x1021, seed 0xFFFF
	IBM16                       // poly 0x8005, seed 0xFFFF, reflected
	CCITT16Reversed             // poly 0x8408, reflected
	Zmodem                      // poly 0x1021
	CRC16ARC                    // poly 0x8005, reflected
	CRC24                       // poly 0x1864CFB, seed 0xB704CE
	CRC32Reversed               // same parameters as CRC32
	CRC8                        // poly 0xE0
	CRC8Reversed                // poly 0x07, reflected
	XOR8                        // xor of all bytes
	Sum16                       // 16-bit additive sum
	Sum32                       // 32-bit additive sum
	FCS16                       // poly 0x1021, seed/xorout 0xFFFF, reflected
	Custom                      // user supplied CRC parameters
	Sum8                        // 8-bit additive sum
	ABBAlpha                    // poly 0x1021
)

var kindNames = [...]string{
	None:            "None",
	Own:             "Own",
	CRC16:           "CRC16",
	CRC16Reversed:   "CRC16Reversed",
	CRC32:           "CRC32",
	Fletcher16:      "Fletcher16",
	Adler32:         "Adler32",
	CCITT16:         "CCITT16",
	IBM16:           "IBM16",
	CCITT16Reversed: "CCITT16Reversed",
	Zmodem:          "Zmodem",
	CRC16ARC:        "CRC16ARC",
	CRC24:           "CRC24",
	CRC32Reversed:   "CRC32Reversed",
	CRC8:            "CRC8",
	CRC8Reversed:    "CRC8Reversed",
	XOR8:            "XOR8",
	Sum16:           "Sum16",
	Sum32:           "Sum32",
	FCS16:           "FCS16",
	Custom:          "Custom",
	Sum8:            "Sum8",
	ABBAlpha:        "ABBAlpha",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind returns the kind with the given case-insensitive name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}

	return None, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// IsTable reports whether the kind is computed through a CRC lookup table.
func (k Kind) IsTable() bool {
	switch k { //nolint:exhaustive
	case CRC16, CRC16Reversed, CRC32, CCITT16, IBM16, CCITT16Reversed, Zmodem,
		CRC16ARC, CRC24, CRC32Reversed, CRC8, CRC8Reversed, FCS16, Custom, ABBAlpha:
		return true
	default:
		return false
	}
}

// crcParams is the canonical parameter tuple of a named CRC kind.
type crcParams struct {
	width      int
	polynomial uint32
	initial    uint32
	finalXor   uint32
	reverse    bool
	reflect    bool
}

var canonical = map[Kind]crcParams{
	CRC16:           {16, 0x8005, 0, 0, true, true},
	CRC16Reversed:   {16, 0xA001, 0, 0, true, true},
	CCITT16:         {16, 0x1021, 0xFFFF, 0, false, false},
	IBM16:           {16, 0x8005, 0xFFFF, 0, true, true},
	CCITT16Reversed: {16, 0x8408, 0, 0, true, true},
	Zmodem:          {16, 0x1021, 0, 0, false, false},
	CRC16ARC:        {16, 0x8005, 0, 0, true, true},
	FCS16:           {16, 0x1021, 0xFFFF, 0xFFFF, true, true},
	CRC24:           {24, 0x1864CFB, 0xB704CE, 0, false, false},
	ABBAlpha:        {16, 0x1021, 0, 0, false, false},
	CRC32:           {32, 0x04C11DB7, 0xFFFFFFFF, 0xFFFFFFFF, true, true},
	CRC32Reversed:   {32, 0x04C11DB7, 0xFFFFFFFF, 0xFFFFFFFF, true, true},
	CRC8:            {8, 0xE0, 0, 0, false, false},
	CRC8Reversed:    {8, 0x07, 0, 0, true, true},
	Fletcher16:      {width: 16},
	Adler32:         {width: 32},
	XOR8:            {width: 8},
	Sum8:            {width: 8},
	Sum16:           {width: 16},
	Sum32:           {width: 32},
}
