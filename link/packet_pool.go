package link

import "sync"

// DefaultPoolSize is the default number of idle packets a client keeps for reuse.
const DefaultPoolSize = 100

// PacketPool is a bounded free list of packets.
//
// It only bounds idle memory; Get allocates when the list is empty.
type PacketPool struct {
	mu    sync.Mutex
	free  []*Packet
	limit int
}

// NewPacketPool returns a pool keeping at most limit idle packets.
func NewPacketPool(limit int) *PacketPool {
	return &PacketPool{limit: max(limit, 0)}
}

// Get returns an idle packet configured with f, or a new one.
func (pp *PacketPool) Get(f Format) *Packet {
	pp.mu.Lock()
	n := len(pp.free)
	if n == 0 {
		pp.mu.Unlock()
		return NewPacket(f)
	}
	p := pp.free[n-1]
	pp.free[n-1] = nil
	pp.free = pp.free[:n-1]
	p.pooled = false
	pp.mu.Unlock()

	p.mu.Lock()
	p.setFormat(f)
	p.mu.Unlock()

	return p
}

// Put clears p and keeps it for reuse. It reports false when the pool is full and p was
// dropped, or when p is already idle in the pool.
func (pp *PacketPool) Put(p *Packet) bool {
	if p == nil {
		return false
	}

	pp.mu.Lock()
	defer pp.mu.Unlock()

	if p.pooled || len(pp.free) >= pp.limit {
		return false
	}
	p.Clear()
	p.pooled = true
	pp.free = append(pp.free, p)

	return true
}

// Len returns the number of idle packets.
func (pp *PacketPool) Len() int {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	return len(pp.free)
}
