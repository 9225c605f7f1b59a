package link

import "sync/atomic"

// SchedulerMetrics contains atomic counters of a scheduler.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SchedulerMetrics struct {
	// PacketsSent counts first transmissions.
	PacketsSent atomic.Uint64
	// PacketsResent counts retransmissions.
	PacketsResent atomic.Uint64
	// PacketsLost counts packets that ran out of resends.
	PacketsLost atomic.Uint64
	// SendFailures counts packets the medium failed to send.
	SendFailures atomic.Uint64
	// RepliesReceived counts frames matched to an outstanding packet.
	RepliesReceived atomic.Uint64
	// NotificationsReceived counts frames broadcast to every client.
	NotificationsReceived atomic.Uint64
	// CorruptData counts receive buffer discards requested by a verify hook.
	CorruptData atomic.Uint64
	// BytesSent counts frame bytes handed to the medium.
	BytesSent atomic.Uint64
	// BytesReceived counts bytes accepted into the receive buffer.
	BytesReceived atomic.Uint64
	// Outstanding is the number of packets awaiting a reply or their first transmission.
	Outstanding atomic.Int64
}

// Snapshot is a point in time copy of SchedulerMetrics.
type Snapshot struct {
	PacketsSent           uint64
	PacketsResent         uint64
	PacketsLost           uint64
	SendFailures          uint64
	RepliesReceived       uint64
	NotificationsReceived uint64
	CorruptData           uint64
	BytesSent             uint64
	BytesReceived         uint64
	Outstanding           int64
}

// Snapshot returns the current counter values.
func (m *SchedulerMetrics) Snapshot() Snapshot {
	return Snapshot{
		PacketsSent:           m.PacketsSent.Load(),
		PacketsResent:         m.PacketsResent.Load(),
		PacketsLost:           m.PacketsLost.Load(),
		SendFailures:          m.SendFailures.Load(),
		RepliesReceived:       m.RepliesReceived.Load(),
		NotificationsReceived: m.NotificationsReceived.Load(),
		CorruptData:           m.CorruptData.Load(),
		BytesSent:             m.BytesSent.Load(),
		BytesReceived:         m.BytesReceived.Load(),
		Outstanding:           m.Outstanding.Load(),
	}
}

func (m *SchedulerMetrics) incSent(n int) {
	m.PacketsSent.Add(1)
	m.BytesSent.Add(uint64(n))
}

func (m *SchedulerMetrics) incResent(n int) {
	m.PacketsResent.Add(1)
	m.BytesSent.Add(uint64(n))
}

func (m *SchedulerMetrics) incLost() {
	m.PacketsLost.Add(1)
}

func (m *SchedulerMetrics) incSendFailures() {
	m.SendFailures.Add(1)
}

func (m *SchedulerMetrics) incReplies() {
	m.RepliesReceived.Add(1)
}

func (m *SchedulerMetrics) incNotifications() {
	m.NotificationsReceived.Add(1)
}

func (m *SchedulerMetrics) incCorrupt() {
	m.CorruptData.Add(1)
}

func (m *SchedulerMetrics) addBytesReceived(n int) {
	m.BytesReceived.Add(uint64(n))
}

func (m *SchedulerMetrics) setOutstanding(n int) {
	m.Outstanding.Store(int64(n))
}

// ClientMetrics contains atomic counters of one client.
type ClientMetrics struct {
	// PacketsQueued counts packets handed to the scheduler.
	PacketsQueued atomic.Uint64
	// Replies counts packets completed by a reply.
	Replies atomic.Uint64
	// Timeouts counts packets that ended without a reply.
	Timeouts atomic.Uint64
	// SendFailures counts packets ending in StatusSendFailed.
	SendFailures atomic.Uint64
	// Notifications counts unsolicited frames delivered to the client.
	Notifications atomic.Uint64
	// Errors counts error notifications.
	Errors atomic.Uint64
}

// record counts the final status of p.
func (m *ClientMetrics) record(s Status) {
	switch {
	case s&StatusSendFailed != 0:
		m.SendFailures.Add(1)
	case s&StatusReceived != 0:
		m.Replies.Add(1)
	case s&StatusTimeout != 0:
		m.Timeouts.Add(1)
	}
}
