package link

import (
	"context"

	"github.com/arloliu/go-packetlink/internal/pool"
)

// receiverLoop is one iteration of the receiver task: hand the next delivered packet to
// its owner, or sleep until one is delivered.
func (s *Scheduler) receiverLoop(ctx context.Context) bool {
	if p, ok := s.popDelivered(); ok {
		s.handleDelivered(p)
		return true
	}

	return pool.Wait(ctx, -1, s.deliverSignal) != pool.Canceled
}

// handleDelivered removes p from the outstanding list and notifies its owner. A packet
// already removed was released or canceled by its owner and is dropped.
func (s *Scheduler) handleDelivered(p *Packet) {
	if !s.removeOutstanding(p) {
		return
	}

	owner := p.Owner()
	if owner == nil {
		return
	}
	owner.notifyReply(p)
}
