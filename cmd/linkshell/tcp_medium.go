package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-packetlink/link"
	"github.com/arloliu/go-packetlink/logger"
)

const readBufferSize = 4096

var errNotConnected = errors.New("tcp medium: not connected")

// tcpMedium is a link.Medium over an outgoing TCP connection.
type tcpMedium struct {
	address     string
	dialTimeout time.Duration
	logger      logger.Logger

	mu     sync.Mutex
	conn   net.Conn
	readWg sync.WaitGroup

	listeners *xsync.MapOf[uint64, link.MediumListener]
	nextID    atomic.Uint64
}

var (
	_ link.Medium            = (*tcpMedium)(nil)
	_ link.TransportDefaults = (*tcpMedium)(nil)
)

func newTCPMedium(address string, dialTimeout time.Duration, l logger.Logger) *tcpMedium {
	return &tcpMedium{
		address:     address,
		dialTimeout: dialTimeout,
		logger:      l.With("medium", "tcp://"+address),
		listeners:   xsync.NewMapOf[uint64, link.MediumListener](),
	}
}

func (m *tcpMedium) Name() string { return "tcp://" + m.address }

// DefaultWaitTime scales the reply wait time with the dial timeout.
func (m *tcpMedium) DefaultWaitTime() time.Duration { return m.dialTimeout }

func (m *tcpMedium) DefaultResendLimit() int { return 2 }

func (m *tcpMedium) Open() error {
	m.mu.Lock()
	if m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	m.emitState(link.MediaOpening)

	ctx, cancel := context.WithTimeout(context.Background(), m.dialTimeout)
	defer cancel()

	dialer := &net.Dialer{KeepAlive: 30 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", m.address)
	if err != nil {
		m.logger.Debug("dial failed", "error", err)
		m.emitState(link.MediaClosed)

		return fmt.Errorf("tcp medium: dial %s: %w", m.address, err)
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	m.readWg.Add(1)
	go m.readLoop(conn)

	m.logger.Debug("connected", "localAddr", conn.LocalAddr(), "remoteAddr", conn.RemoteAddr())
	m.emitState(link.MediaOpen)

	return nil
}

func (m *tcpMedium) Close() error {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn == nil {
		return nil
	}

	m.emitState(link.MediaClosing)
	err := conn.Close()
	m.readWg.Wait()
	m.emitState(link.MediaClosed)

	return err
}

func (m *tcpMedium) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.conn != nil
}

func (m *tcpMedium) Send(data []byte, _ string) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return errNotConnected
	}

	_, err := conn.Write(data)

	return err
}

func (m *tcpMedium) Subscribe(l link.MediumListener) func() {
	id := m.nextID.Add(1)
	m.listeners.Store(id, l)

	return func() { m.listeners.Delete(id) }
}

func (m *tcpMedium) readLoop(conn net.Conn) {
	defer m.readWg.Done()

	remote := conn.RemoteAddr().String()
	buf := make([]byte, readBufferSize)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			m.listeners.Range(func(_ uint64, l link.MediumListener) bool {
				l.OnDataReceived(data, remote)
				return true
			})
		}

		if err == nil {
			continue
		}

		if errors.Is(err, io.EOF) {
			m.logger.Info("peer closed connection")
			go m.dropPeer(conn)
		} else if !errors.Is(err, net.ErrClosed) {
			m.emitError(fmt.Errorf("tcp medium: read: %w", err))
			go m.dropPeer(conn)
		}

		return
	}
}

// dropPeer closes conn after the remote side went away, unless the medium has moved on.
func (m *tcpMedium) dropPeer(conn net.Conn) {
	m.mu.Lock()
	current := m.conn == conn
	m.mu.Unlock()

	if current {
		_ = m.Close()
	}
}

func (m *tcpMedium) emitState(state link.MediaState) {
	m.listeners.Range(func(_ uint64, l link.MediumListener) bool {
		l.OnStateChanged(state)
		return true
	})
}

func (m *tcpMedium) emitError(err error) {
	m.listeners.Range(func(_ uint64, l link.MediumListener) bool {
		l.OnError(err)
		return true
	})
}
