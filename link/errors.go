package link

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrConfigMismatch indicates that a client attaching to a shared medium uses a frame
	// format that differs from the clients already attached.
	ErrConfigMismatch = errors.New("link: configuration differs from attached clients")

	// ErrInvalidOption indicates an out of range configuration value.
	ErrInvalidOption = errors.New("link: invalid option")

	// ErrWaitTimeZero indicates a packet expecting a reply with a zero wait time.
	ErrWaitTimeZero = errors.New("link: wait time is zero but a reply is expected")

	// ErrByteOrderMismatch indicates a packet whose byte order differs from the sending client.
	ErrByteOrderMismatch = errors.New("link: packet byte order differs from client")

	// ErrNoMedium indicates an operation on a client without an assigned medium.
	ErrNoMedium = errors.New("link: no medium assigned")

	// ErrClientClosed indicates an operation on a closed client.
	ErrClientClosed = errors.New("link: client closed")

	// ErrSchedulerClosed indicates that the scheduler of the medium has been torn down.
	ErrSchedulerClosed = errors.New("link: scheduler closed")
)

// Framing errors.
var (
	// ErrIncomplete is returned by the frame parser when the buffer holds no complete frame yet.
	ErrIncomplete = errors.New("link: incomplete frame")

	// ErrChecksumPosition indicates a checksum position outside of the assembled frame.
	ErrChecksumPosition = errors.New("link: checksum position out of frame")

	// ErrOutOfRange indicates a payload index or count outside of the payload.
	ErrOutOfRange = errors.New("link: index out of range")
)

// ErrSendFailed is the cause of every SendError.
var ErrSendFailed = errors.New("link: send failed")

// SendError is returned by a synchronous send whose packet ended in StatusSendFailed.
type SendError struct {
	PacketID uint64
	Reason   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("link: send failed (packet %d): %s", e.PacketID, e.Reason)
}

func (e *SendError) Unwrap() error {
	return ErrSendFailed
}
