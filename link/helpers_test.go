package link

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-packetlink/logger"
)

func TestMain(m *testing.M) {
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	os.Exit(m.Run())
}

// fakeMedium is an in-memory Medium. Frames passed to Send are recorded and, when a
// responder is set, its return value is injected back as received data.
type fakeMedium struct {
	name string

	mu        sync.Mutex
	open      bool
	listeners map[int]MediumListener
	nextID    int
	sent      [][]byte
	sentAt    []time.Time
	sendErr   error
	responder func(data []byte) []byte
}

func newFakeMedium(name string) *fakeMedium {
	return &fakeMedium{name: name, listeners: make(map[int]MediumListener)}
}

func (m *fakeMedium) Name() string { return m.name }

func (m *fakeMedium) Open() error {
	m.emitState(MediaOpening)
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
	m.emitState(MediaOpen)

	return nil
}

func (m *fakeMedium) Close() error {
	m.emitState(MediaClosing)
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()
	m.emitState(MediaClosed)

	return nil
}

func (m *fakeMedium) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.open
}

func (m *fakeMedium) Send(data []byte, _ string) error {
	m.mu.Lock()
	if m.sendErr != nil {
		err := m.sendErr
		m.mu.Unlock()
		return err
	}
	m.sent = append(m.sent, append([]byte(nil), data...))
	m.sentAt = append(m.sentAt, time.Now())
	responder := m.responder
	m.mu.Unlock()

	if responder != nil {
		if reply := responder(data); len(reply) > 0 {
			m.inject(reply, "peer")
		}
	}

	return nil
}

func (m *fakeMedium) Subscribe(l MediumListener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *fakeMedium) setResponder(fn func(data []byte) []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = fn
}

func (m *fakeMedium) setSendErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

func (m *fakeMedium) sentFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([][]byte(nil), m.sent...)
}

func (m *fakeMedium) sentTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]time.Time(nil), m.sentAt...)
}

func (m *fakeMedium) listenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.listeners)
}

func (m *fakeMedium) snapshot() []MediumListener {
	m.mu.Lock()
	defer m.mu.Unlock()

	ls := make([]MediumListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}

	return ls
}

func (m *fakeMedium) inject(data []byte, senderInfo string) {
	for _, l := range m.snapshot() {
		l.OnDataReceived(data, senderInfo)
	}
}

func (m *fakeMedium) emitState(state MediaState) {
	for _, l := range m.snapshot() {
		l.OnStateChanged(state)
	}
}

func (m *fakeMedium) emitError(err error) {
	for _, l := range m.snapshot() {
		l.OnError(err)
	}
}

// defaultsMedium adds TransportDefaults to fakeMedium.
type defaultsMedium struct {
	*fakeMedium
	wait   time.Duration
	resend int
}

func (m *defaultsMedium) DefaultWaitTime() time.Duration { return m.wait }
func (m *defaultsMedium) DefaultResendLimit() int        { return m.resend }

// newTestClient returns an attached, open client on its own registry.
func newTestClient(t *testing.T, m Medium, reg *Registry, opts ...ClientOption) *Client {
	t.Helper()

	if reg == nil {
		reg = NewRegistry(logger.GetLogger())
	}

	defaults := []ClientOption{
		WithRegistry(reg),
		WithWaitTime(100 * time.Millisecond),
	}

	c, err := NewClient(append(defaults, opts...)...)
	require.NoError(t, err)
	require.NoError(t, c.AssignMedium(m))
	require.NoError(t, c.Open())

	t.Cleanup(func() { _ = c.Close() })

	return c
}

// stxEtx is a frame format with 0x02 and 0x03 markers and no checksum.
func stxEtx() []ClientOption {
	return []ClientOption{
		WithBeginMarker(Uint8Marker(0x02)),
		WithEndMarker(Uint8Marker(0x03)),
	}
}

// echo answers every frame with the frame itself.
func echo(data []byte) []byte {
	return append([]byte(nil), data...)
}
