package link

import (
	"context"
	"time"

	"github.com/arloliu/go-packetlink/internal/pool"
)

// senderLoop is one iteration of the sender task: transmit the next due packet or sleep
// until the nearest resend deadline or a new packet arrives.
func (s *Scheduler) senderLoop(ctx context.Context) bool {
	p, wait := s.nextToSend(time.Now())
	if p != nil {
		s.transmit(p)
		return true
	}

	return pool.Wait(ctx, wait, s.sendSignal) != pool.Canceled
}

// nextToSend picks the first packet to transmit at now. When none is due it returns the
// time until the nearest deadline, or -1 when nothing is pending.
//
// A packet is due when it was never sent, or when its deadline passed and it has resends
// left. The deadline of a packet grows with every resend: sendTime + wait*(sendCount+1).
// Packets out of resends are timed out and delivered to their owners.
func (s *Scheduler) nextToSend(now time.Time) (*Packet, time.Duration) {
	var (
		picked  *Packet
		expired []*Packet
		nearest = time.Duration(-1)
	)

	s.outMu.Lock()
	for i := 0; i < len(s.outstanding); i++ {
		p := s.outstanding[i]
		p.mu.Lock()

		if p.status.Terminal() {
			p.mu.Unlock()
			continue
		}

		if p.status&StatusSent == 0 {
			p.status |= StatusSent
			p.sendTime = now
			if p.resendLimit == ResendNever {
				s.outstanding = append(s.outstanding[:i], s.outstanding[i+1:]...)
				s.metrics.setOutstanding(len(s.outstanding))
			}
			p.mu.Unlock()
			picked = p
			break
		}

		if p.waitTime < 0 {
			p.mu.Unlock()
			continue
		}

		deadline := p.waitTime * time.Duration(p.sendCount+1)
		elapsed := now.Sub(p.sendTime)
		if elapsed < deadline {
			remaining := deadline - elapsed
			if nearest < 0 || remaining < nearest {
				nearest = remaining
			}
			p.mu.Unlock()
			continue
		}

		if p.status&StatusTransactionTimeReset != 0 {
			p.status &^= StatusTransactionTimeReset
			p.sendTime = now
			if nearest < 0 || deadline < nearest {
				nearest = deadline
			}
			p.mu.Unlock()
			continue
		}

		p.sendCount++
		if p.sendCount <= p.resendLimit {
			p.sendTime = now
			p.mu.Unlock()
			picked = p
			break
		}

		p.status |= StatusTimeout
		p.mu.Unlock()
		s.metrics.incLost()
		expired = append(expired, p)
	}
	s.outMu.Unlock()

	for _, p := range expired {
		s.logger.Debug("link: packet timed out", "id", p.ID(), "resends", p.SendCount())
		s.deliver(p)
	}

	if picked != nil {
		return picked, 0
	}

	return nil, nearest
}

// transmit hands the frame of p to the medium.
func (s *Scheduler) transmit(p *Packet) {
	p.mu.Lock()
	data, err := p.extract()
	id, dst, resend := p.id, p.destination, p.sendCount > 0
	p.mu.Unlock()

	if err == nil {
		err = s.medium.Send(data, dst)
	}
	if err != nil {
		s.failPacket(p, err)
		return
	}

	if resend {
		s.metrics.incResent(len(data))
		s.logger.Debug("link: packet resent", "id", id, "attempt", p.SendCount())
	} else {
		s.metrics.incSent(len(data))
		s.logger.Debug("link: packet sent", "id", id, "len", len(data))
	}
}

// failPacket marks p as failed. Packets expecting a reply are delivered to their owner;
// every client is notified of the error.
func (s *Scheduler) failPacket(p *Packet, err error) {
	p.mu.Lock()
	p.status |= StatusSendFailed
	p.sendErr = err.Error()
	id := p.id
	expectsReply := p.resendLimit != ResendNever
	p.mu.Unlock()

	s.metrics.incSendFailures()
	s.logger.Warn("link: send failed", "id", id, "error", err)

	if expectsReply {
		s.deliver(p)
	}
	s.notifyErrors(&SendError{PacketID: id, Reason: err.Error()})
}
