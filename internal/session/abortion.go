package session

import "sync"

// Abortion is a single-shot cancellation token carrying an optional
// reason. Firing is idempotent and the first reason wins; observers
// registered at construction are notified exactly once.
type Abortion struct {
	mu        sync.Mutex
	once      sync.Once
	fired     bool
	reason    error
	done      chan struct{}
	observers []func(error)
}

// NewAbortion creates an unfired abortion token.
func NewAbortion() *Abortion {
	return &Abortion{done: make(chan struct{})}
}

// Observe registers a callback invoked with the fire reason. If the token
// has already fired, the callback runs synchronously and immediately.
func (a *Abortion) Observe(fn func(reason error)) {
	a.mu.Lock()
	if a.fired {
		reason := a.reason
		a.mu.Unlock()
		fn(reason)
		return
	}
	a.observers = append(a.observers, fn)
	a.mu.Unlock()
}

// Abort fires the token with the given reason (may be nil). Only the
// first call has any effect; later calls are no-ops.
func (a *Abortion) Abort(reason error) {
	a.once.Do(func() {
		a.mu.Lock()
		a.fired = true
		a.reason = reason
		observers := a.observers
		a.observers = nil
		a.mu.Unlock()
		close(a.done)
		for _, fn := range observers {
			fn(reason)
		}
	})
}

// Fired reports whether the token has fired.
func (a *Abortion) Fired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fired
}

// Reason returns the first abort reason, or nil if not fired or fired
// with no reason (a plain "ended normally" abort).
func (a *Abortion) Reason() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reason
}

// Done returns a channel closed when the token fires, for select-based
// cooperative cancellation.
func (a *Abortion) Done() <-chan struct{} {
	return a.done
}
