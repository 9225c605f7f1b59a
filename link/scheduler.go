package link

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-packetlink/checksum"
	"github.com/arloliu/go-packetlink/internal/queue"
	"github.com/arloliu/go-packetlink/internal/task"
	"github.com/arloliu/go-packetlink/logger"
)

// Scheduler drives one medium on behalf of every client attached to it.
//
// It owns the outstanding packet list, the delivered packet queue and the receive
// buffer, and runs two goroutines: the sender loop transmits, resends and expires
// outstanding packets; the receiver loop hands delivered packets back to their owners.
// Incoming data is parsed on the goroutine of the medium callback.
type Scheduler struct {
	name        string
	medium      Medium
	format      Format
	customParse bool
	logger      logger.Logger
	engine      *checksum.Engine

	state       atomicSchedState
	tasks       *task.Manager
	unsubscribe func()

	clientsMu sync.RWMutex
	clients   []*Client
	byID      *xsync.MapOf[uuid.UUID, *Client]

	outMu       sync.Mutex
	outstanding []*Packet

	deliverMu sync.Mutex
	delivered queue.Queue[*Packet]

	bufMu  sync.Mutex
	buffer []byte

	// ingestMu serializes frame extraction across medium callbacks.
	ingestMu sync.Mutex

	sendSignal    chan struct{}
	deliverSignal chan struct{}

	nextID  atomic.Uint64
	metrics SchedulerMetrics
}

// newScheduler attaches first to a new scheduler for m and starts its loops.
func newScheduler(m Medium, first *Client, l logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		name:          m.Name(),
		medium:        m,
		format:        first.cfg.format,
		customParse:   first.cfg.customParse,
		logger:        l.With("medium", m.Name()),
		engine:        checksum.NewEngine(),
		byID:          xsync.NewMapOf[uuid.UUID, *Client](),
		delivered:     queue.NewSliceQueue[*Packet](16),
		sendSignal:    make(chan struct{}, 1),
		deliverSignal: make(chan struct{}, 1),
	}
	s.tasks = task.NewManager(context.Background(), s.logger)

	s.state.toStarting()
	if err := s.tasks.Start("sender", s.senderLoop); err != nil {
		return nil, err
	}
	if err := s.tasks.Start("receiver", s.receiverLoop); err != nil {
		s.tasks.Stop()
		s.tasks.Wait()
		return nil, err
	}
	s.state.toRunning()

	if err := s.attach(first); err != nil {
		s.state.toStopping()
		s.tasks.Stop()
		s.tasks.Wait()
		s.state.toStopped()
		return nil, err
	}
	s.unsubscribe = m.Subscribe(&mediumListener{s: s})

	s.logger.Info("link: scheduler started", "format_checksum", s.format.Checksum.String())

	return s, nil
}

// Name returns the name of the medium.
func (s *Scheduler) Name() string { return s.name }

// Medium returns the medium driven by the scheduler.
func (s *Scheduler) Medium() Medium { return s.medium }

// Format returns the frame format shared by the attached clients.
func (s *Scheduler) Format() Format { return s.format }

// Metrics returns the counters of the scheduler.
func (s *Scheduler) Metrics() *SchedulerMetrics { return &s.metrics }

// ClientCount returns the number of attached clients.
func (s *Scheduler) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	return len(s.clients)
}

// OutstandingCount returns the number of packets awaiting transmission or a reply.
func (s *Scheduler) OutstandingCount() int {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	return len(s.outstanding)
}

// BufferedBytes returns the number of unparsed bytes in the receive buffer.
func (s *Scheduler) BufferedBytes() int {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()

	return len(s.buffer)
}

func (s *Scheduler) attach(c *Client) error {
	if !s.state.isRunning() {
		return ErrSchedulerClosed
	}
	if field := s.format.Mismatch(c.cfg.format); field != "" {
		return fmt.Errorf("%w: %s", ErrConfigMismatch, field)
	}
	if c.cfg.customParse != s.customParse {
		return fmt.Errorf("%w: custom parse", ErrConfigMismatch)
	}
	if err := c.hooks.load(c); err != nil {
		return fmt.Errorf("link: load parser: %w", err)
	}

	s.clientsMu.Lock()
	s.clients = append(s.clients, c)
	s.clientsMu.Unlock()
	s.byID.Store(c.ID(), c)

	s.logger.Info("link: client attached", "client", c.Name(), "clients", s.ClientCount())

	return nil
}

// detach removes c and its outstanding packets and returns the number of remaining clients.
func (s *Scheduler) detach(c *Client) int {
	s.clientsMu.Lock()
	idx := slices.Index(s.clients, c)
	if idx >= 0 {
		s.clients = slices.Delete(s.clients, idx, idx+1)
	}
	remaining := len(s.clients)
	s.clientsMu.Unlock()

	if idx < 0 {
		return remaining
	}

	s.byID.Delete(c.ID())
	c.hooks.unload(c)

	s.outMu.Lock()
	s.outstanding = slices.DeleteFunc(s.outstanding, func(p *Packet) bool { return p.Owner() == c })
	s.metrics.setOutstanding(len(s.outstanding))
	s.outMu.Unlock()

	s.logger.Info("link: client detached", "client", c.Name(), "clients", remaining)

	return remaining
}

// Client returns the attached client with the given id.
func (s *Scheduler) Client(id uuid.UUID) (*Client, bool) {
	return s.byID.Load(id)
}

func (s *Scheduler) clientList() []*Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	return slices.Clone(s.clients)
}

// primary returns the client whose hooks drive frame extraction.
func (s *Scheduler) primary() *Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if len(s.clients) == 0 {
		return nil
	}

	return s.clients[0]
}

// enqueue assigns an id to p and queues it for transmission.
func (s *Scheduler) enqueue(p *Packet) error {
	if !s.state.isRunning() {
		return ErrSchedulerClosed
	}

	p.mu.Lock()
	p.id = s.nextID.Add(1)
	p.status = StatusOk
	p.sendCount = 0
	p.sendErr = ""
	p.replyTime = time.Time{}
	id := p.id
	p.mu.Unlock()

	s.outMu.Lock()
	s.outstanding = append(s.outstanding, p)
	s.metrics.setOutstanding(len(s.outstanding))
	s.outMu.Unlock()

	s.logger.Debug("link: packet queued", "id", id)
	signal(s.sendSignal)

	return nil
}

// forget drops p from the outstanding list and the delivered queue.
func (s *Scheduler) forget(p *Packet) {
	s.removeOutstanding(p)

	s.deliverMu.Lock()
	s.delivered.Remove(func(d *Packet) bool { return d == p })
	s.deliverMu.Unlock()
}

func (s *Scheduler) removeOutstanding(p *Packet) bool {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	idx := slices.Index(s.outstanding, p)
	if idx < 0 {
		return false
	}
	s.outstanding = slices.Delete(s.outstanding, idx, idx+1)
	s.metrics.setOutstanding(len(s.outstanding))

	return true
}

func (s *Scheduler) deliver(p *Packet) {
	s.deliverMu.Lock()
	s.delivered.Enqueue(p)
	s.deliverMu.Unlock()

	signal(s.deliverSignal)
}

func (s *Scheduler) popDelivered() (*Packet, bool) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	return s.delivered.Dequeue()
}

// expireAll marks every outstanding packet as timed out. Packets expecting a reply are
// returned; fire-and-forget packets are dropped.
func (s *Scheduler) expireAll() []*Packet {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	expired := make([]*Packet, 0, len(s.outstanding))
	kept := s.outstanding[:0]
	for _, p := range s.outstanding {
		p.mu.Lock()
		if p.resendLimit == ResendNever {
			p.mu.Unlock()
			continue
		}
		if !p.status.Terminal() {
			p.status |= StatusTimeout
		}
		p.mu.Unlock()
		kept = append(kept, p)
		expired = append(expired, p)
	}
	clear(s.outstanding[len(kept):])
	s.outstanding = kept
	s.metrics.setOutstanding(len(s.outstanding))

	return expired
}

// cancelOutstanding times out every outstanding packet and delivers it to its owner.
func (s *Scheduler) cancelOutstanding() {
	expired := s.expireAll()
	for _, p := range expired {
		s.deliver(p)
	}
	if len(expired) > 0 {
		s.logger.Debug("link: outstanding packets canceled", "count", len(expired))
	}
}

// reset drops every queued packet and buffered byte. Waiting owners are released with a timeout.
func (s *Scheduler) reset() {
	expired := s.expireAll()

	s.outMu.Lock()
	s.outstanding = s.outstanding[:0]
	s.metrics.setOutstanding(0)
	s.outMu.Unlock()

	s.deliverMu.Lock()
	s.delivered.Reset()
	s.deliverMu.Unlock()

	s.clearBuffer()

	for _, p := range expired {
		if owner := p.Owner(); owner != nil {
			owner.notifyReply(p)
		}
	}
}

func (s *Scheduler) clearBuffer() {
	s.bufMu.Lock()
	s.buffer = s.buffer[:0]
	s.bufMu.Unlock()
}

// Close times out every outstanding packet, stops both loops, closes the medium and
// stops listening to it. It is called when the last client detaches.
func (s *Scheduler) Close() error {
	if !s.state.toStopping() {
		return nil
	}

	s.cancelOutstanding()

	s.tasks.Stop()
	s.tasks.Wait()

	// the receiver loop may have stopped before draining
	for {
		p, ok := s.popDelivered()
		if !ok {
			break
		}
		s.handleDelivered(p)
	}

	var err error
	if s.medium.IsOpen() {
		err = s.medium.Close()
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.state.toStopped()

	s.logger.Info("link: scheduler closed")

	return err
}

func (s *Scheduler) notifyErrors(err error) {
	for _, c := range s.clientList() {
		c.notifyError(err)
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// mediumListener forwards medium events to the scheduler.
type mediumListener struct {
	s *Scheduler
}

func (l *mediumListener) OnDataReceived(data []byte, senderInfo string) {
	l.s.ingest(data, senderInfo)
}

func (l *mediumListener) OnStateChanged(state MediaState) {
	s := l.s
	s.logger.Info("link: medium state changed", "state", state.String())

	clients := s.clientList()
	switch state { //nolint:exhaustive
	case MediaOpening:
		s.reset()
	case MediaOpen:
		for _, c := range clients {
			c.hooks.connect(c)
		}
	case MediaClosing:
		for _, c := range clients {
			c.hooks.disconnect(c)
		}
	case MediaClosed:
		s.cancelOutstanding()
		for _, c := range clients {
			c.releaseWait()
		}
	}

	for _, c := range clients {
		c.hooks.stateChange(state)
	}
}

func (l *mediumListener) OnError(err error) {
	l.s.logger.Error("link: medium error", "error", err)
	l.s.notifyErrors(err)
}

func (l *mediumListener) OnClientConnected(info string) {
	for _, c := range l.s.clientList() {
		c.hooks.peerConnect(info)
	}
}

func (l *mediumListener) OnClientDisconnected(info string) {
	for _, c := range l.s.clientList() {
		c.hooks.peerDisconnect(info)
	}
}
