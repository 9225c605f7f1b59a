package link

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-packetlink/logger"
)

// Registry maps medium names to their schedulers so clients assigned to the same medium
// share one scheduler.
//
// DefaultRegistry is used by clients that are not given one with WithRegistry.
type Registry struct {
	schedulers *xsync.MapOf[string, *Scheduler]
	logger     logger.Logger
}

// DefaultRegistry is the process wide scheduler registry. Its schedulers log through
// the logger of the client that created them.
var DefaultRegistry = NewRegistry(nil)

// NewRegistry returns an empty registry whose schedulers log with l.
// A nil l makes each scheduler use the logger of its first client.
func NewRegistry(l logger.Logger) *Registry {
	return &Registry{
		schedulers: xsync.NewMapOf[string, *Scheduler](),
		logger:     l,
	}
}

// Lookup returns the scheduler driving the medium named name.
func (r *Registry) Lookup(name string) (*Scheduler, bool) {
	return r.schedulers.Load(name)
}

// Len returns the number of running schedulers.
func (r *Registry) Len() int {
	return r.schedulers.Size()
}

// Range calls fn for every scheduler until fn returns false.
func (r *Registry) Range(fn func(name string, s *Scheduler) bool) {
	r.schedulers.Range(fn)
}

// attach attaches c to the scheduler of m, creating and starting it for the first client.
func (r *Registry) attach(m Medium, c *Client) (*Scheduler, error) {
	var attachErr error

	s, _ := r.schedulers.Compute(m.Name(), func(old *Scheduler, loaded bool) (*Scheduler, bool) {
		if loaded {
			attachErr = old.attach(c)
			return old, false
		}

		s, err := newScheduler(m, c, r.schedulerLogger(c))
		if err != nil {
			attachErr = err
			return nil, true
		}

		return s, false
	})
	if attachErr != nil {
		return nil, attachErr
	}

	return s, nil
}

// detach removes c from s and tears s down when c was its last client.
func (r *Registry) detach(s *Scheduler, c *Client) error {
	last := false

	r.schedulers.Compute(s.Name(), func(old *Scheduler, loaded bool) (*Scheduler, bool) {
		if !loaded || old != s {
			// already replaced; detach from the stale instance only
			last = s.detach(c) == 0
			return old, !loaded
		}
		if s.detach(c) == 0 {
			last = true
			return nil, true
		}

		return old, false
	})

	if last {
		return s.Close()
	}

	return nil
}

func (r *Registry) schedulerLogger(first *Client) logger.Logger {
	if r.logger != nil {
		return r.logger
	}

	return first.cfg.logger
}
