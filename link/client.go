package link

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/go-packetlink/logger"
)

// Client is a logical endpoint on a medium. Several clients may share one medium; they
// share its Scheduler and must use an equal Format.
//
//	c, _ := link.NewClient(link.WithChecksumKind(checksum.CRC16), link.WithWaitTime(500*time.Millisecond))
//	_ = c.AssignMedium(m)
//	_ = c.Open()
//	p := c.CreatePacket()
//	p.Append(0x01, 0x02)
//	err := c.Send(p) // blocks until reply, timeout or failure
//	c.ReleasePacket(p)
type Client struct {
	id      uuid.UUID
	cfg     *clientConfig
	hooks   hookSet
	pool    *PacketPool
	logger  logger.Logger
	metrics ClientMetrics

	// assignMu serializes AssignMedium and Close.
	assignMu sync.Mutex

	mu     sync.Mutex
	medium Medium
	sched  *Scheduler
	closed bool

	// syncMu allows one synchronous send at a time.
	syncMu     sync.Mutex
	replyEvent chan struct{}

	waitMu  sync.Mutex
	waiting *Packet
	lastErr error

	done chan struct{}
}

// NewClient returns a client configured by opts. It is not attached to a medium until
// AssignMedium is called.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg, err := newClientConfig(opts...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		id:         uuid.New(),
		cfg:        cfg,
		hooks:      resolveHooks(cfg.parser, cfg.hooks),
		pool:       NewPacketPool(cfg.poolSize),
		replyEvent: make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	c.logger = cfg.logger.With("client", c.Name())

	return c, nil
}

// ID returns the unique id of the client.
func (c *Client) ID() uuid.UUID { return c.id }

// Name returns the configured name, or the first eight characters of the id.
func (c *Client) Name() string {
	if c.cfg.name != "" {
		return c.cfg.name
	}

	return c.id.String()[:8]
}

// Format returns the frame format of the client.
func (c *Client) Format() Format { return c.cfg.format }

// Metrics returns the counters of the client.
func (c *Client) Metrics() *ClientMetrics { return &c.metrics }

// Scheduler returns the scheduler of the assigned medium, or nil.
func (c *Client) Scheduler() *Scheduler {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sched
}

// Medium returns the assigned medium, or nil.
func (c *Client) Medium() Medium {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.medium
}

// AssignMedium attaches the client to the scheduler of m, detaching it from a previously
// assigned medium. Media with equal names share one scheduler and the medium instance
// passed by the first client.
//
// It returns ErrConfigMismatch when the format differs from the clients already attached.
func (c *Client) AssignMedium(m Medium) error {
	if m == nil {
		return ErrNoMedium
	}

	c.assignMu.Lock()
	defer c.assignMu.Unlock()

	c.mu.Lock()
	closed, old := c.closed, c.sched
	c.mu.Unlock()

	if closed {
		return ErrClientClosed
	}
	if old != nil {
		if old.Name() == m.Name() {
			return nil
		}
		if err := c.cfg.registry.detach(old, c); err != nil {
			c.logger.Warn("link: close previous medium", "medium", old.Name(), "error", err)
		}
	}

	sched, err := c.cfg.registry.attach(m, c)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.sched, c.medium = nil, nil
		return err
	}
	c.sched, c.medium = sched, sched.Medium()

	return nil
}

// Open opens the assigned medium unless it is open already.
func (c *Client) Open() error {
	m := c.Medium()
	if m == nil {
		return ErrNoMedium
	}
	if m.IsOpen() {
		return nil
	}

	return m.Open()
}

// CloseMedium closes the assigned medium. Outstanding packets of every client on the
// medium time out.
func (c *Client) CloseMedium() error {
	m := c.Medium()
	if m == nil {
		return ErrNoMedium
	}
	if !m.IsOpen() {
		return nil
	}

	return m.Close()
}

// Close detaches the client from its medium and releases a blocked Send. The scheduler
// is torn down when the client was its last one.
func (c *Client) Close() error {
	c.assignMu.Lock()
	defer c.assignMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sched := c.sched
	c.sched = nil
	c.mu.Unlock()

	close(c.done)

	if sched == nil {
		return nil
	}

	return c.cfg.registry.detach(sched, c)
}

// CreatePacket returns a pooled packet carrying the format, wait time and resend limit
// of the client.
func (c *Client) CreatePacket() *Packet {
	p := c.pool.Get(c.cfg.format)

	p.mu.Lock()
	p.waitTime = c.cfg.waitTime
	p.resendLimit = c.cfg.resendLimit
	p.framer.Counter = c.hooks.countChecksum
	p.owner = c
	p.mu.Unlock()

	return p
}

// ReleasePacket drops the packets from the scheduler and returns them to the pool.
func (c *Client) ReleasePacket(packets ...*Packet) {
	sched := c.Scheduler()
	for _, p := range packets {
		if p == nil {
			continue
		}
		if sched != nil {
			sched.forget(p)
		}
		c.pool.Put(p)
	}
}

// Send queues p and blocks until it is answered, times out or fails.
//
// A packet with ResendNever is sent without waiting. A timed out packet returns nil with
// StatusTimeout set; a failed one returns a *SendError.
func (c *Client) Send(p *Packet) error {
	return c.send(p, true)
}

// SendAsync queues p and returns. The reply or timeout is reported to the Received hook
// with isReply set.
func (c *Client) SendAsync(p *Packet) error {
	return c.send(p, false)
}

func (c *Client) send(p *Packet, blocking bool) error {
	sched, err := c.scheduler()
	if err != nil {
		return err
	}
	if order := p.Format().ByteOrder; order != c.cfg.format.ByteOrder {
		return fmt.Errorf("%w: packet %s, client %s", ErrByteOrderMismatch, order, c.cfg.format.ByteOrder)
	}

	p.mu.Lock()
	p.waitTime, p.resendLimit = c.resolve(p.waitTime, p.resendLimit, sched.Medium())
	wait, limit := p.waitTime, p.resendLimit
	p.owner = c
	p.framer.Engine = sched.engine
	if p.framer.Counter == nil {
		p.framer.Counter = c.hooks.countChecksum
	}
	p.sync = blocking && limit != ResendNever
	p.mu.Unlock()

	if wait == 0 && limit != ResendNever {
		return ErrWaitTimeZero
	}
	if err := c.hooks.beforeSend(p); err != nil {
		return fmt.Errorf("link: before send: %w", err)
	}

	c.metrics.PacketsQueued.Add(1)

	if !blocking || limit == ResendNever {
		return sched.enqueue(p)
	}

	return c.sendAndWait(sched, p)
}

func (c *Client) sendAndWait(sched *Scheduler, p *Packet) error {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	select {
	case <-c.replyEvent:
	default:
	}

	c.waitMu.Lock()
	c.waiting, c.lastErr = p, nil
	c.waitMu.Unlock()

	defer func() {
		c.waitMu.Lock()
		c.waiting, c.lastErr = nil, nil
		c.waitMu.Unlock()
	}()

	if err := sched.enqueue(p); err != nil {
		return err
	}

	for {
		select {
		case <-c.replyEvent:
		case <-c.done:
			sched.forget(p)
			return ErrClientClosed
		}

		status := p.Status()
		if status.Terminal() {
			sched.forget(p)
			c.metrics.record(status)
			if status&StatusSendFailed != 0 {
				return p.Err()
			}

			return nil
		}

		c.waitMu.Lock()
		err := c.lastErr
		c.lastErr = nil
		c.waitMu.Unlock()

		if err != nil {
			sched.forget(p)
			c.metrics.SendFailures.Add(1)

			return fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
	}
}

func (c *Client) scheduler() (*Scheduler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.sched == nil {
		return nil, ErrNoMedium
	}

	return c.sched, nil
}

// resolve replaces the default and transport encodings of wait and limit.
func (c *Client) resolve(wait time.Duration, limit int, m Medium) (time.Duration, int) {
	td, hasDefaults := m.(TransportDefaults)

	if wait == WaitDefault {
		wait = c.cfg.waitTime
	}
	if wait == WaitTransport {
		wait = DefaultWaitTime
		if hasDefaults {
			wait = td.DefaultWaitTime()
		}
	}

	if limit == ResendDefault {
		limit = c.cfg.resendLimit
	}
	if limit == ResendTransport {
		limit = DefaultResendLimit
		if hasDefaults {
			limit = td.DefaultResendLimit()
		}
	}

	return wait, limit
}

// notifyReply is called by the scheduler when p received its reply, timed out or failed.
func (c *Client) notifyReply(p *Packet) {
	c.waitMu.Lock()
	waiting := c.waiting == p
	c.waitMu.Unlock()

	if waiting {
		signal(c.replyEvent)
		return
	}
	if p.isSync() {
		// the synchronous sender returned already
		return
	}

	c.metrics.record(p.Status())
	c.hooks.received(p, true)
}

// notifyReceived hands an unsolicited frame to the client.
func (c *Client) notifyReceived(p *Packet) {
	c.metrics.Notifications.Add(1)
	c.hooks.received(p, false)
}

// notifyError reports err to the client. A blocked Send is aborted unless err is the send
// failure of another packet.
func (c *Client) notifyError(err error) {
	c.metrics.Errors.Add(1)

	c.waitMu.Lock()
	if c.waiting != nil {
		var sendErr *SendError
		if !errors.As(err, &sendErr) || sendErr.PacketID == c.waiting.ID() {
			c.lastErr = err
		}
	}
	c.waitMu.Unlock()

	c.hooks.onError(err)
	signal(c.replyEvent)
}

// releaseWait wakes a blocked Send so it rechecks its packet.
func (c *Client) releaseWait() {
	signal(c.replyEvent)
}
