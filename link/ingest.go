package link

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-packetlink/internal/util"
)

// ingest appends data received from the medium to the receive buffer and dispatches
// every complete frame it now holds.
//
// Frames are cut under ingestMu; reply matching and notification handlers run after it
// is released, in frame order.
func (s *Scheduler) ingest(data []byte, senderInfo string) {
	for _, reply := range s.extractFrames(data, senderInfo) {
		s.dispatch(reply)
	}
}

// extractFrames appends data to the receive buffer and returns the frames it completes.
//
// Frame extraction uses the hooks of the first attached client; the format is shared by
// every client of the scheduler.
func (s *Scheduler) extractFrames(data []byte, senderInfo string) []*Packet {
	if !s.state.isRunning() {
		return nil
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	primary := s.primary()
	if primary == nil {
		return nil
	}
	hooks := primary.hooks

	filtered, keep := hooks.receiveData(data, senderInfo)
	if !keep || len(filtered) == 0 {
		return nil
	}

	s.bufMu.Lock()
	s.buffer = append(s.buffer, filtered...)
	s.bufMu.Unlock()
	s.metrics.addBytesReceived(len(filtered))

	var frames []*Packet
	for {
		s.bufMu.Lock()
		buf := util.CloneSlice(s.buffer, 0)
		s.bufMu.Unlock()
		if len(buf) == 0 {
			return frames
		}

		reply := NewPacket(s.format)
		reply.framer.Engine = s.engine
		reply.framer.Counter = hooks.countChecksum
		reply.senderInfo = senderInfo

		consumed, ok := s.extractFrame(hooks, buf, reply)
		if !ok {
			return frames
		}

		switch hooks.verify(reply) {
		case VerifyIncomplete:
			return frames
		case VerifyCorrupt:
			s.clearBuffer()
			s.metrics.incCorrupt()
			s.logger.Warn("link: corrupt data discarded", "len", len(buf), "data", util.HexDump(buf))
			return frames
		case VerifyComplete:
		}

		s.consume(consumed)
		frames = append(frames, reply)
	}
}

// extractFrame loads the next frame of buf into reply and returns the number of buffer
// bytes it occupies. ok is false when buf holds no complete frame or was discarded.
func (s *Scheduler) extractFrame(hooks hookSet, buf []byte, reply *Packet) (int, bool) {
	if s.customParse {
		n := hooks.parse(buf, reply)
		if n <= 0 {
			return 0, false
		}
		return min(n, len(buf)), true
	}

	frame, err := reply.framer.Parse(buf)
	if errors.Is(err, ErrIncomplete) {
		return 0, false
	}
	if err != nil {
		s.logger.Error("link: parse failed, receive buffer discarded", "error", err)
		s.clearBuffer()
		s.notifyErrors(fmt.Errorf("link: parse received data: %w", err))
		return 0, false
	}

	reply.payload = frame.Payload

	return frame.End(), true
}

// consume drops the first n bytes of the receive buffer.
func (s *Scheduler) consume(n int) {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()

	n = min(n, len(s.buffer))
	s.buffer = append(s.buffer[:0], s.buffer[n:]...)
}

// dispatch completes the outstanding packet reply answers, or broadcasts reply to every
// client as a notification.
func (s *Scheduler) dispatch(reply *Packet) {
	if sent := s.matchReply(reply); sent != nil {
		s.metrics.incReplies()
		s.deliver(sent)
		return
	}

	primary := s.primary()
	if primary != nil && !primary.hooks.acceptNotify(reply) {
		s.logger.Debug("link: notification rejected", "packet", reply.String())
		return
	}

	s.metrics.incNotifications()
	for _, c := range s.clientList() {
		c.notifyReceived(reply)
	}
}

// matchReply returns the first outstanding packet, in send order, whose owner accepts
// reply as its answer. A matcher error fails the packet and returns it as well.
func (s *Scheduler) matchReply(reply *Packet) *Packet {
	s.outMu.Lock()
	candidates := make([]*Packet, len(s.outstanding))
	copy(candidates, s.outstanding)
	s.outMu.Unlock()

	payload := reply.Payload()
	senderInfo := reply.SenderInfo()

	for _, p := range candidates {
		p.mu.Lock()
		skip := p.resendLimit == ResendNever || p.status.Terminal() || p.status&StatusSent == 0
		owner := p.owner
		p.mu.Unlock()
		if skip || owner == nil {
			continue
		}

		match, err := owner.hooks.isReply(p, reply)
		if err != nil {
			p.mu.Lock()
			if !p.status.Terminal() {
				p.status |= StatusSendFailed
				p.sendErr = err.Error()
			}
			p.mu.Unlock()
			s.logger.Warn("link: reply matcher failed", "id", p.ID(), "error", err)

			return p
		}
		if !match {
			continue
		}

		p.mu.Lock()
		if p.status.Terminal() {
			// timed out while the matcher ran
			p.mu.Unlock()
			continue
		}
		p.status |= StatusReceived
		p.status &^= StatusTransactionTimeReset
		p.setPayload(payload)
		p.senderInfo = senderInfo
		p.replyTime = time.Now()
		p.mu.Unlock()

		return p
	}

	return nil
}
