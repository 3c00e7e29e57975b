package multiplex

import "sync/atomic"

// State is the gateway's lifecycle state. It only ever moves forward.
type State int32

const (
	Uninitialized State = iota
	Bootstrapped
	Listening
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Bootstrapped:
		return "bootstrapped"
	case Listening:
		return "listening"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// stateBox is an atomically-swapped State.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) load() State { return State(b.v.Load()) }

func (b *stateBox) store(s State) { b.v.Store(int32(s)) }

// compareAndSwap transitions from "from" to "to", reporting success.
func (b *stateBox) compareAndSwap(from, to State) bool {
	return b.v.CompareAndSwap(int32(from), int32(to))
}
