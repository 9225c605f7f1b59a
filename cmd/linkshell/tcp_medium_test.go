package main

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-packetlink/link"
	"github.com/arloliu/go-packetlink/logger"
)

// echoServer accepts one connection and writes every read back to the peer.
func echoServer(t *testing.T) (addr string, conns chan net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	conns = make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conns <- conn
		_, _ = io.Copy(conn, conn)
	}()

	return ln.Addr().String(), conns
}

func TestTCPMedium_RequestReply(t *testing.T) {
	require := require.New(t)

	addr, _ := echoServer(t)
	m := newTCPMedium(addr, time.Second, logger.GetLogger())

	c, err := link.NewClient(
		link.WithRegistry(link.NewRegistry(logger.GetLogger())),
		link.WithBeginMarker(link.Uint8Marker(0x02)),
		link.WithEndMarker(link.Uint8Marker(0x03)),
		link.WithWaitTime(time.Second),
	)
	require.NoError(err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(c.AssignMedium(m))
	require.NoError(c.Open())
	require.True(m.IsOpen())

	p := c.CreatePacket()
	p.SetPayload([]byte("ping"))
	require.NoError(c.Send(p))
	require.True(p.Status().Has(link.StatusReceived))
	require.Equal([]byte("ping"), p.Payload())
	require.Equal(addr, p.SenderInfo())

	snap := c.Scheduler().Metrics().Snapshot()
	require.Equal(uint64(1), snap.PacketsSent)
	require.Equal(uint64(1), snap.RepliesReceived)
	require.Equal(uint64(6), snap.BytesSent)

	require.NoError(c.CloseMedium())
	require.False(m.IsOpen())
	require.ErrorIs(m.Send([]byte{0x01}, ""), errNotConnected)
}

func TestTCPMedium_PeerClose(t *testing.T) {
	require := require.New(t)

	addr, conns := echoServer(t)
	m := newTCPMedium(addr, time.Second, logger.GetLogger())

	states := make(chan link.MediaState, 8)
	unsubscribe := m.Subscribe(stateRecorder(states))
	defer unsubscribe()

	require.NoError(m.Open())
	require.Equal(link.MediaOpening, <-states)
	require.Equal(link.MediaOpen, <-states)

	conn := <-conns
	require.NoError(conn.Close())

	require.Eventually(func() bool { return !m.IsOpen() }, time.Second, 5*time.Millisecond)
	require.Equal(link.MediaClosing, <-states)
	require.Equal(link.MediaClosed, <-states)
}

func TestTCPMedium_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	m := newTCPMedium(addr, 200*time.Millisecond, logger.GetLogger())
	require.Error(t, m.Open())
	require.False(t, m.IsOpen())
	require.Equal(t, 200*time.Millisecond, m.DefaultWaitTime())
	require.Equal(t, 2, m.DefaultResendLimit())
}

type stateRecorder chan link.MediaState

func (r stateRecorder) OnDataReceived([]byte, string) {}
func (r stateRecorder) OnStateChanged(s link.MediaState) { r <- s }
func (r stateRecorder) OnError(error)                    {}
func (r stateRecorder) OnClientConnected(string)         {}
func (r stateRecorder) OnClientDisconnected(string)      {}

func TestRenderTables(t *testing.T) {
	require := require.New(t)

	var cm link.ClientMetrics
	cm.Replies.Add(3)
	out := renderStats(link.Snapshot{PacketsSent: 7, Outstanding: 1}, &cm)
	require.Contains(out, "packets sent")
	require.Contains(out, "7")
	require.Contains(out, "replies")
	require.Contains(out, "COUNTER")

	reg := link.NewRegistry(logger.GetLogger())
	require.Contains(renderMedia(reg), "MEDIUM")
}
