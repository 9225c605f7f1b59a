package checksum

import "fmt"

// Spec describes one checksum algorithm instance and where its value lives in a frame.
//
// A Spec is a plain value; use WithKind to switch algorithms so that the
// dependent CRC parameters are reset to the canonical tuple of the new kind.
type Spec struct {
	Kind Kind

	// Width is the register width in bits. Required for table kinds and Own.
	Width      int
	Polynomial uint32
	Initial    uint32
	FinalXor   uint32

	// ReverseInput reflects input bytes (and the seed).
	ReverseInput bool
	// ReflectOutput reflects the final register.
	ReflectOutput bool
	// ReversedBytes swaps the byte order of the computed value.
	ReversedBytes bool

	// Position is the index in the assembled frame where the checksum is spliced.
	// Negative values count from the end of the frame, -1 meaning after the last byte.
	Position int
	// Start is the first byte of the assembled frame covered by the checksum.
	Start int
	// Count is the number of covered bytes. Negative values count from the end, -1 meaning to the end.
	Count int
}

// New returns a Spec of the given kind with the default placement: appended to the
// frame and covering the whole frame.
func New(kind Kind) Spec {
	return Spec{Position: -1, Count: -1}.WithKind(kind)
}

// NewCustom returns a Custom table spec with the given parameters.
func NewCustom(width int, polynomial, initial, finalXor uint32, reverseInput, reflectOutput bool) Spec {
	s := New(Custom)
	s.Width = width
	s.Polynomial = polynomial
	s.Initial = initial
	s.FinalXor = finalXor
	s.ReverseInput = reverseInput
	s.ReflectOutput = reflectOutput

	return s
}

// WithKind returns a copy of s using kind k.
//
// Named kinds reset width, polynomial, seed, final xor and reflection to their canonical values.
// Own and Custom keep the current parameters; Own defaults to 16 bits when no width is set.
// Placement fields are never touched.
func (s Spec) WithKind(k Kind) Spec {
	s.Kind = k
	if k == Own || k == Custom {
		if k == Own && s.Width == 0 {
			s.Width = 16
		}
		return s
	}

	p := canonical[k]
	s.Width = p.width
	s.Polynomial = p.polynomial
	s.Initial = p.initial
	s.FinalXor = p.finalXor
	s.ReverseInput = p.reverse
	s.ReflectOutput = p.reflect

	return s
}

// Enabled reports whether a checksum is configured.
func (s Spec) Enabled() bool {
	return s.Kind != None
}

// Size returns the number of bytes the checksum occupies in a frame.
// A 24-bit value occupies four bytes.
func (s Spec) Size() int {
	if !s.Enabled() {
		return 0
	}

	return widthSize(s.Width)
}

// Validate reports configuration errors.
func (s Spec) Validate() error {
	if int(s.Kind) >= len(kindNames) {
		return fmt.Errorf("%w: %d", ErrUnknownKind, s.Kind)
	}
	if s.Kind.IsTable() || s.Kind == Own {
		if !validWidth(s.Width) {
			return fmt.Errorf("%w: %s has width %d", ErrInvalidWidth, s.Kind, s.Width)
		}
	}

	return nil
}

// Equal reports whether both specs produce identical frames.
func (s Spec) Equal(o Spec) bool {
	return s == o
}

func (s Spec) String() string {
	if !s.Enabled() {
		return "None"
	}

	return fmt.Sprintf("%s(width=%d poly=0x%X init=0x%X xor=0x%X refin=%t refout=%t pos=%d start=%d count=%d)",
		s.Kind, s.Width, s.Polynomial, s.Initial, s.FinalXor, s.ReverseInput, s.ReflectOutput, s.Position, s.Start, s.Count)
}

func validWidth(w int) bool {
	return w == 8 || w == 16 || w == 24 || w == 32
}

func widthSize(w int) int {
	switch {
	case w <= 8:
		return 1
	case w <= 16:
		return 2
	default:
		return 4
	}
}
