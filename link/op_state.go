package link

import "sync/atomic"

// schedState is the lifecycle state of a scheduler.
type schedState uint32

const (
	schedStopped schedState = iota
	schedStopping
	schedStarting
	schedRunning
)

func (s schedState) String() string {
	switch s {
	case schedStopped:
		return "Stopped"
	case schedStopping:
		return "Stopping"
	case schedStarting:
		return "Starting"
	case schedRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// atomicSchedState allows only the transitions
// Stopped -> Starting -> Running -> Stopping -> Stopped and Starting -> Stopping.
type atomicSchedState struct {
	state atomic.Uint32
}

func (st *atomicSchedState) get() schedState {
	return schedState(st.state.Load())
}

func (st *atomicSchedState) isRunning() bool {
	return st.get() == schedRunning
}

func (st *atomicSchedState) cas(from, to schedState) bool {
	return st.state.CompareAndSwap(uint32(from), uint32(to))
}

func (st *atomicSchedState) toStarting() bool {
	return st.cas(schedStopped, schedStarting)
}

func (st *atomicSchedState) toRunning() bool {
	return st.cas(schedStarting, schedRunning)
}

func (st *atomicSchedState) toStopping() bool {
	if st.cas(schedRunning, schedStopping) {
		return true
	}

	return st.cas(schedStarting, schedStopping)
}

func (st *atomicSchedState) toStopped() bool {
	return st.cas(schedStopping, schedStopped)
}
