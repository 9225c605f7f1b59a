package link

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/go-packetlink/checksum"
	"github.com/arloliu/go-packetlink/internal/util"
)

// Wait time encodings.
const (
	// WaitTransport lets the medium choose the wait time.
	WaitTransport time.Duration = -3
	// WaitDefault uses the wait time of the owning client.
	WaitDefault time.Duration = -2
	// WaitInfinite waits for a reply without deadline.
	WaitInfinite time.Duration = -1
)

// Packet is a payload together with its frame format and transaction state.
//
// All methods are safe for concurrent use. The payload mutators invalidate the
// cached checksum so the next ExtractPacket computes it again.
type Packet struct {
	mu sync.Mutex

	framer  Framer
	payload []byte

	cached       checksum.Value
	cacheValid   bool
	computations int

	resendLimit int
	waitTime    time.Duration
	sendCount   int
	sendTime    time.Time
	replyTime   time.Time
	status      Status
	sendErr     string

	id          uint64
	senderInfo  string
	destination string

	owner *Client
	// sync marks a packet whose owner blocks in Send.
	sync bool

	// pooled is guarded by the mutex of the PacketPool holding the packet.
	pooled bool
}

// NewPacket returns an empty packet using format f.
func NewPacket(f Format) *Packet {
	return &Packet{
		framer:      Framer{Format: f},
		waitTime:    WaitDefault,
		resendLimit: ResendDefault,
	}
}

// Format returns the frame format of the packet.
func (p *Packet) Format() Format {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.framer.Format
}

func (p *Packet) setFormat(f Format) {
	p.framer.Format = f
	p.cacheValid = false
}

// SetChecksumFunc sets the counter used for the Own checksum kind.
func (p *Packet) SetChecksumFunc(fn ChecksumFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.framer.Counter = fn
	p.cacheValid = false
}

// Append appends data to the payload.
func (p *Packet) Append(data ...byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.payload = append(p.payload, data...)
	p.cacheValid = false
}

// AppendUint8 appends v to the payload.
func (p *Packet) AppendUint8(v uint8) {
	p.Append(v)
}

// AppendUint16 appends v to the payload in the byte order of the packet.
func (p *Packet) AppendUint16(v uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.payload = p.framer.Format.ByteOrder.binary().AppendUint16(p.payload, v)
	p.cacheValid = false
}

// AppendUint32 appends v to the payload in the byte order of the packet.
func (p *Packet) AppendUint32(v uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.payload = p.framer.Format.ByteOrder.binary().AppendUint32(p.payload, v)
	p.cacheValid = false
}

// Insert inserts data at index pos of the payload. A negative pos appends.
func (p *Packet) Insert(pos int, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pos < 0 {
		pos = len(p.payload)
	}
	if pos > len(p.payload) {
		return fmt.Errorf("%w: insert at %d, payload length %d", ErrOutOfRange, pos, len(p.payload))
	}

	grown := make([]byte, 0, len(p.payload)+len(data))
	grown = append(grown, p.payload[:pos]...)
	grown = append(grown, data...)
	p.payload = append(grown, p.payload[pos:]...)
	p.cacheValid = false

	return nil
}

// Remove deletes count bytes starting at index pos.
func (p *Packet) Remove(pos, count int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pos < 0 || count < 0 || pos+count > len(p.payload) {
		return fmt.Errorf("%w: remove %d bytes at %d, payload length %d", ErrOutOfRange, count, pos, len(p.payload))
	}

	p.payload = append(p.payload[:pos], p.payload[pos+count:]...)
	p.cacheValid = false

	return nil
}

// ClearData empties the payload.
func (p *Packet) ClearData() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.payload = p.payload[:0]
	p.cacheValid = false
}

// SetPayload replaces the payload with a copy of data.
func (p *Packet) SetPayload(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.setPayload(data)
}

func (p *Packet) setPayload(data []byte) {
	p.payload = append(p.payload[:0], data...)
	p.cacheValid = false
}

// Payload returns a copy of the payload.
func (p *Packet) Payload() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	return util.CloneSlice(p.payload, 0)
}

// Extract returns a copy of count payload bytes starting at index. A negative count
// extends to the end of the payload.
func (p *Packet) Extract(index, count int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if count < 0 {
		count = len(p.payload) - index
	}
	if index < 0 || count < 0 || index+count > len(p.payload) {
		return nil, fmt.Errorf("%w: extract %d bytes at %d, payload length %d", ErrOutOfRange, count, index, len(p.payload))
	}

	return util.CloneSlice(p.payload[index:index+count], 0), nil
}

// Len returns the payload length.
func (p *Packet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.payload)
}

// ExtractPacket returns the frame of the packet: begin marker, payload, end marker and
// the checksum spliced at its configured position.
//
// The checksum is computed only when the payload changed since the previous call.
func (p *Packet) ExtractPacket() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.extract()
}

func (p *Packet) extract() ([]byte, error) {
	body := p.framer.body(p.payload)
	if !p.framer.Format.Checksum.Enabled() {
		return body, nil
	}

	if !p.cacheValid {
		v, err := p.framer.checksumOf(body)
		if err != nil {
			return nil, err
		}
		p.cached = v
		p.cacheValid = true
		p.computations++
	}

	return p.framer.splice(body, p.cached)
}

// ChecksumComputations returns how many times ExtractPacket computed a checksum.
func (p *Packet) ChecksumComputations() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.computations
}

// ParsePacket locates the first frame in data using the format of the packet and loads its
// payload into the packet. It returns the frame offset and length; ok is false when data
// holds no complete frame.
func (p *Packet) ParsePacket(data []byte) (start, length int, ok bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, err := p.framer.Parse(data)
	if errors.Is(err, ErrIncomplete) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}

	p.setPayload(frame.Payload)

	return frame.Start, frame.Length, true, nil
}

// ID returns the packet id assigned when the packet was queued.
func (p *Packet) ID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.id
}

// Status returns the status flags.
func (p *Packet) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status
}

// Err returns the send failure reason, or nil when the packet did not fail.
func (p *Packet) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status&StatusSendFailed == 0 {
		return nil
	}

	return &SendError{PacketID: p.id, Reason: p.sendErr}
}

// SendCount returns the number of resends performed.
func (p *Packet) SendCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sendCount
}

// SendTime returns the time of the last transmission.
func (p *Packet) SendTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sendTime
}

// ReplyDelay returns the time between the last transmission and the reply, or 0 when
// no reply was received.
func (p *Packet) ReplyDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status&StatusReceived == 0 || p.replyTime.IsZero() {
		return 0
	}

	return p.replyTime.Sub(p.sendTime)
}

// ResendLimit returns the resend limit encoding.
func (p *Packet) ResendLimit() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.resendLimit
}

// SetResendLimit sets the resend limit; see ResendNever, ResendDefault and ResendTransport.
func (p *Packet) SetResendLimit(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resendLimit = n
}

// WaitTime returns the per-attempt wait time encoding.
func (p *Packet) WaitTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.waitTime
}

// SetWaitTime sets the per-attempt wait time; see WaitInfinite, WaitDefault and WaitTransport.
func (p *Packet) SetWaitTime(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.waitTime = d
}

// ResetTransactionTime extends the deadline of an outstanding packet by one wait period
// without counting a resend.
func (p *Packet) ResetTransactionTime() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status |= StatusTransactionTimeReset
}

// SenderInfo returns the sender information the medium reported for a received frame.
func (p *Packet) SenderInfo() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.senderInfo
}

// Destination returns the medium destination of the packet.
func (p *Packet) Destination() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.destination
}

// SetDestination sets the medium destination, for media addressing several peers.
func (p *Packet) SetDestination(dst string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.destination = dst
}

// Owner returns the client that sent the packet.
func (p *Packet) Owner() *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.owner
}

func (p *Packet) isSync() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sync
}

// Clear resets the packet to its initial state keeping format and payload capacity.
func (p *Packet) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.payload = p.payload[:0]
	p.cacheValid = false
	p.computations = 0
	p.resendLimit = ResendDefault
	p.waitTime = WaitDefault
	p.sendCount = 0
	p.sendTime = time.Time{}
	p.replyTime = time.Time{}
	p.status = StatusOk
	p.sendErr = ""
	p.id = 0
	p.senderInfo = ""
	p.destination = ""
	p.owner = nil
	p.sync = false
}

func (p *Packet) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return fmt.Sprintf("packet(id=%d status=%s payload=[%s])", p.id, p.status, util.HexDump(p.payload))
}
