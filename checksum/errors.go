package checksum

import "errors"

var (
	// ErrInvalidWidth indicates a CRC width outside of {8, 16, 24, 32}.
	ErrInvalidWidth = errors.New("checksum: invalid width, should be 8, 16, 24 or 32")

	// ErrUnknownKind indicates a kind name that does not match any Kind.
	ErrUnknownKind = errors.New("checksum: unknown kind")

	// ErrRange indicates that the requested byte range lies outside of the data.
	ErrRange = errors.New("checksum: range out of bounds")

	// ErrOwnChecksum is returned by Engine.Compute for the Own kind.
	// The caller is expected to obtain the value from its own counter.
	ErrOwnChecksum = errors.New("checksum: value must be supplied by a checksum counter")
)
