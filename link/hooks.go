package link

// VerifyResult is the outcome of a packet verification hook.
type VerifyResult uint8

const (
	// VerifyComplete accepts the parsed frame.
	VerifyComplete VerifyResult = iota
	// VerifyIncomplete keeps the receive buffer and waits for more data.
	VerifyIncomplete
	// VerifyCorrupt discards the whole receive buffer.
	VerifyCorrupt
)

func (r VerifyResult) String() string {
	switch r {
	case VerifyComplete:
		return "Complete"
	case VerifyIncomplete:
		return "Incomplete"
	case VerifyCorrupt:
		return "Corrupt"
	default:
		return "Unknown"
	}
}

// PacketParser is a protocol specific collaborator. It may implement any of the
// capability interfaces below; each implemented capability takes precedence over the
// matching Hooks function and the built-in default.
type PacketParser any

// Loader is notified when its client attaches to and detaches from a medium.
type Loader interface {
	Load(c *Client) error
	Unload(c *Client)
}

// Connector is notified when the medium of its client opens and starts closing.
type Connector interface {
	Connect(c *Client)
	Disconnect(c *Client)
}

// SendHook may modify or reject a packet before it is queued.
type SendHook interface {
	BeforeSend(p *Packet) error
}

// ReplyMatcher decides whether reply answers the outstanding packet sent.
// An error fails sent with the error text.
type ReplyMatcher interface {
	IsReplyPacket(sent, reply *Packet) (bool, error)
}

// NotifyAcceptor may veto the broadcast of a frame that matched no outstanding packet.
type NotifyAcceptor interface {
	AcceptNotify(p *Packet) bool
}

// ChecksumCounter supplies checksums for the Own kind.
type ChecksumCounter interface {
	CountChecksum(data []byte, start, count int) (uint32, error)
}

// DataFilter sees raw medium data before it is buffered. It returns the bytes to
// buffer and false to drop them.
type DataFilter interface {
	ReceiveData(data []byte, senderInfo string) ([]byte, bool)
}

// Verifier checks a parsed frame beyond its checksum.
type Verifier interface {
	VerifyPacket(p *Packet) VerifyResult
}

// ReceiveHandler receives asynchronous replies (isReply true) and notifications.
type ReceiveHandler interface {
	Received(p *Packet, isReply bool)
}

// FrameParser replaces the built-in frame search when custom parsing is enabled.
// It loads the next frame of data into p and returns the number of buffer bytes it
// consumed, or 0 when data holds no complete frame.
type FrameParser interface {
	ParsePacketFromData(data []byte, p *Packet) int
}

// Hooks are plain function alternatives to the PacketParser capabilities plus client
// event callbacks. Nil functions are ignored.
//
// OnReceiveData, OnParse, OnVerify and OnCountChecksum run while the receive buffer is
// locked and must not send. OnReply, OnAcceptNotify and OnReceived run on the goroutine
// that delivered the data to the medium listener; a blocking Send there only completes
// if the reply arrives on another goroutine, so SendAsync is the safe choice.
type Hooks struct {
	OnLoad           func(c *Client) error
	OnUnload         func(c *Client)
	OnConnect        func(c *Client)
	OnDisconnect     func(c *Client)
	OnBeforeSend     func(p *Packet) error
	OnReply          func(sent, reply *Packet) (bool, error)
	OnAcceptNotify   func(p *Packet) bool
	OnCountChecksum  func(data []byte, start, count int) (uint32, error)
	OnReceiveData    func(data []byte, senderInfo string) ([]byte, bool)
	OnVerify         func(p *Packet) VerifyResult
	OnReceived       func(p *Packet, isReply bool)
	OnParse          func(data []byte, p *Packet) int
	OnError          func(err error)
	OnStateChange    func(state MediaState)
	OnPeerConnect    func(info string)
	OnPeerDisconnect func(info string)
}

// hookSet is the resolved set of callbacks of a client. Every field except countChecksum is non-nil.
type hookSet struct {
	load           func(c *Client) error
	unload         func(c *Client)
	connect        func(c *Client)
	disconnect     func(c *Client)
	beforeSend     func(p *Packet) error
	isReply        func(sent, reply *Packet) (bool, error)
	acceptNotify   func(p *Packet) bool
	countChecksum  ChecksumFunc
	receiveData    func(data []byte, senderInfo string) ([]byte, bool)
	verify         func(p *Packet) VerifyResult
	received       func(p *Packet, isReply bool)
	parse          func(data []byte, p *Packet) int
	onError        func(err error)
	stateChange    func(state MediaState)
	peerConnect    func(info string)
	peerDisconnect func(info string)
}

var defaultHooks = hookSet{
	load:           func(*Client) error { return nil },
	unload:         func(*Client) {},
	connect:        func(*Client) {},
	disconnect:     func(*Client) {},
	beforeSend:     func(*Packet) error { return nil },
	isReply:        func(_, _ *Packet) (bool, error) { return true, nil },
	acceptNotify:   func(*Packet) bool { return true },
	receiveData:    func(d []byte, _ string) ([]byte, bool) { return d, true },
	verify:         func(*Packet) VerifyResult { return VerifyComplete },
	received:       func(*Packet, bool) {},
	parse:          func([]byte, *Packet) int { return 0 },
	onError:        func(error) {},
	stateChange:    func(MediaState) {},
	peerConnect:    func(string) {},
	peerDisconnect: func(string) {},
}

// resolveHooks merges parser capabilities, hook functions and defaults, in that order of precedence.
func resolveHooks(parser PacketParser, h Hooks) hookSet {
	hs := defaultHooks

	if h.OnLoad != nil {
		hs.load = h.OnLoad
	}
	if h.OnUnload != nil {
		hs.unload = h.OnUnload
	}
	if h.OnConnect != nil {
		hs.connect = h.OnConnect
	}
	if h.OnDisconnect != nil {
		hs.disconnect = h.OnDisconnect
	}
	if h.OnBeforeSend != nil {
		hs.beforeSend = h.OnBeforeSend
	}
	if h.OnReply != nil {
		hs.isReply = h.OnReply
	}
	if h.OnAcceptNotify != nil {
		hs.acceptNotify = h.OnAcceptNotify
	}
	if h.OnCountChecksum != nil {
		hs.countChecksum = h.OnCountChecksum
	}
	if h.OnReceiveData != nil {
		hs.receiveData = h.OnReceiveData
	}
	if h.OnVerify != nil {
		hs.verify = h.OnVerify
	}
	if h.OnReceived != nil {
		hs.received = h.OnReceived
	}
	if h.OnParse != nil {
		hs.parse = h.OnParse
	}
	if h.OnError != nil {
		hs.onError = h.OnError
	}
	if h.OnStateChange != nil {
		hs.stateChange = h.OnStateChange
	}
	if h.OnPeerConnect != nil {
		hs.peerConnect = h.OnPeerConnect
	}
	if h.OnPeerDisconnect != nil {
		hs.peerDisconnect = h.OnPeerDisconnect
	}

	if parser == nil {
		return hs
	}
	if v, ok := parser.(Loader); ok {
		hs.load, hs.unload = v.Load, v.Unload
	}
	if v, ok := parser.(Connector); ok {
		hs.connect, hs.disconnect = v.Connect, v.Disconnect
	}
	if v, ok := parser.(SendHook); ok {
		hs.beforeSend = v.BeforeSend
	}
	if v, ok := parser.(ReplyMatcher); ok {
		hs.isReply = v.IsReplyPacket
	}
	if v, ok := parser.(NotifyAcceptor); ok {
		hs.acceptNotify = v.AcceptNotify
	}
	if v, ok := parser.(ChecksumCounter); ok {
		hs.countChecksum = v.CountChecksum
	}
	if v, ok := parser.(DataFilter); ok {
		hs.receiveData = v.ReceiveData
	}
	if v, ok := parser.(Verifier); ok {
		hs.verify = v.VerifyPacket
	}
	if v, ok := parser.(ReceiveHandler); ok {
		hs.received = v.Received
	}
	if v, ok := parser.(FrameParser); ok {
		hs.parse = v.ParsePacketFromData
	}

	return hs
}
