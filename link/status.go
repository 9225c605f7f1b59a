package link

import "strings"

// Status holds the state flags of a packet.
//
// A packet starts in StatusOk, gains StatusSent on its first transmission and ends in one of
// StatusReceived, StatusTimeout or StatusSendFailed. StatusTransactionTimeReset is independent
// of the other flags and is cleared by the sender loop when it extends the deadline.
type Status uint8

const (
	StatusOk                   Status = 0
	StatusSent                 Status = 0x01
	StatusReceived             Status = 0x02
	StatusTimeout              Status = 0x04
	StatusSendFailed           Status = 0x08
	StatusTransactionTimeReset Status = 0x10
)

const terminalStatus = StatusReceived | StatusTimeout | StatusSendFailed

// Has reports whether every flag of f is set.
func (s Status) Has(f Status) bool {
	return s&f == f
}

// Terminal reports whether the packet reached a final state.
func (s Status) Terminal() bool {
	return s&terminalStatus != 0
}

func (s Status) String() string {
	if s == StatusOk {
		return "Ok"
	}

	names := []struct {
		flag Status
		name string
	}{
		{StatusSent, "Sent"},
		{StatusReceived, "Received"},
		{StatusTimeout, "Timeout"},
		{StatusSendFailed, "SendFailed"},
		{StatusTransactionTimeReset, "TransactionTimeReset"},
	}

	parts := make([]string, 0, 2)
	for _, n := range names {
		if s&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}

	return strings.Join(parts, "|")
}

// Resend limit encodings.
const (
	// ResendTransport lets the medium choose the resend limit.
	ResendTransport = -3
	// ResendDefault uses the resend limit of the owning client.
	ResendDefault = -2
	// ResendNever sends the packet once without waiting for a reply.
	ResendNever = -1
)
