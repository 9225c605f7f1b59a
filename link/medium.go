package link

import "time"

// MediaState is a medium connection state reported to listeners.
type MediaState uint8

const (
	MediaOpening MediaState = iota
	MediaOpen
	MediaClosing
	MediaClosed
	MediaChanged
)

func (s MediaState) String() string {
	switch s {
	case MediaOpening:
		return "Opening"
	case MediaOpen:
		return "Open"
	case MediaClosing:
		return "Closing"
	case MediaClosed:
		return "Closed"
	case MediaChanged:
		return "Changed"
	default:
		return "Unknown"
	}
}

// Medium is a byte transport shared by every client attached to it.
//
// Media with equal names share one scheduler.
type Medium interface {
	// Name identifies the medium instance, e.g. "COM1" or "tcp://10.0.0.5:4059".
	Name() string
	Open() error
	Close() error
	IsOpen() bool
	// Send writes data to the medium. destination is empty for point to point media.
	Send(data []byte, destination string) error
	// Subscribe registers l for medium events and returns a function removing it.
	Subscribe(l MediumListener) (unsubscribe func())
}

// MediumListener receives medium events.
type MediumListener interface {
	OnDataReceived(data []byte, senderInfo string)
	OnStateChanged(state MediaState)
	OnError(err error)
	OnClientConnected(info string)
	OnClientDisconnected(info string)
}

// TransportDefaults may be implemented by a Medium to resolve WaitTransport and
// ResendTransport packet settings.
type TransportDefaults interface {
	DefaultWaitTime() time.Duration
	DefaultResendLimit() int
}
