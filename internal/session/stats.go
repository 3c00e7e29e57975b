package session

import "sync/atomic"

// Stats holds the four monotonically increasing counters the lifecycle
// must maintain. They are wide (64-bit) atomics so they never overflow
// for the life of the process and can be bumped from many connections
// concurrently.
type Stats struct {
	dispatched atomic.Int64
	completed  atomic.Int64
	abortions  atomic.Int64
	rejections atomic.Int64
}

// IncDispatched bumps the dispatched counter.
func (s *Stats) IncDispatched() { s.dispatched.Add(1) }

// IncCompleted bumps the completed counter.
func (s *Stats) IncCompleted() { s.completed.Add(1) }

// IncAbortions bumps the abortions counter.
func (s *Stats) IncAbortions() { s.abortions.Add(1) }

// IncRejections bumps the rejections counter.
func (s *Stats) IncRejections() { s.rejections.Add(1) }

// Dispatched returns the current dispatched count.
func (s *Stats) Dispatched() int64 { return s.dispatched.Load() }

// Completed returns the current completed count.
func (s *Stats) Completed() int64 { return s.completed.Load() }

// Abortions returns the current abortions count.
func (s *Stats) Abortions() int64 { return s.abortions.Load() }

// Rejections returns the current rejections count.
func (s *Stats) Rejections() int64 { return s.rejections.Load() }

// Drained reports whether dispatched == completed + abortions + rejections,
// the invariant that must hold once the server is drained.
func (s *Stats) Drained() bool {
	return s.Dispatched() == s.Completed()+s.Abortions()+s.Rejections()
}
