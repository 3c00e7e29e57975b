package session

import (
	"context"
	"sync"
	"unsafe"
)

// Chain is the ordered, cursor-driven dispatcher chain: each dispatcher
// appears at most once, the cursor only moves forward, and insertion
// after the cursor is the only permitted structural mutation during
// traversal. A Chain is owned by exactly one Session and is never
// shared.
type Chain struct {
	mu          sync.Mutex
	dispatchers []Dispatcher
	index       int
}

// NewChain builds a chain from an initial, already-deduplicated list
// of dispatchers.
func NewChain(dispatchers ...Dispatcher) *Chain {
	return &Chain{dispatchers: append([]Dispatcher(nil), dispatchers...)}
}

// Index returns the cursor's current position.
func (c *Chain) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Splice inserts more dispatchers immediately after the cursor,
// deduplicating against every dispatcher already present in the chain
// (I1 is enforced here, at splice time, not at execution time). A
// dispatcher already present anywhere in the chain is dropped from the
// insertion rather than raising an error — this is what lets header
// middleware run content negotiation without risking cycles.
func (c *Chain) Splice(dispatchers ...Dispatcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make([]Dispatcher, 0, len(dispatchers))
	for _, d := range dispatchers {
		if !containsIdentity(c.dispatchers, d) {
			fresh = append(fresh, d)
		}
	}
	if len(fresh) == 0 {
		return
	}

	insertAt := c.index + 1
	tail := append([]Dispatcher(nil), c.dispatchers[insertAt:]...)
	c.dispatchers = append(c.dispatchers[:insertAt:insertAt], fresh...)
	c.dispatchers = append(c.dispatchers, tail...)
}

// Run executes the chain from the current cursor position: invoking
// each dispatcher in order, awaiting its completion before advancing.
// It stops when the cursor passes the last element, when abort fires,
// or when a dispatcher's call fails, and returns that failure.
func (c *Chain) Run(ctx context.Context, req *Request, sess *Session) error {
	for {
		c.mu.Lock()
		if c.index >= len(c.dispatchers) {
			c.mu.Unlock()
			return nil
		}
		if sess.Abortion.Fired() {
			c.mu.Unlock()
			return nil
		}
		d := c.dispatchers[c.index]
		c.mu.Unlock()

		if err := d.Dispatch(ctx, req, sess); err != nil {
			return err
		}

		c.mu.Lock()
		c.index++
		c.mu.Unlock()
	}
}

// containsIdentity reports whether target is already present in list,
// comparing DispatcherFunc values by their func value (so two closures
// built from the same literal are distinct) and everything else by
// interface equality (pointer identity for the common case of a
// *struct implementing Dispatcher).
func containsIdentity(list []Dispatcher, target Dispatcher) bool {
	for _, d := range list {
		if identityEqual(d, target) {
			return true
		}
	}
	return false
}

func identityEqual(a, b Dispatcher) bool {
	af, aIsFunc := a.(DispatcherFunc)
	bf, bIsFunc := b.(DispatcherFunc)
	if aIsFunc && bIsFunc {
		// A func value is a pointer to its closure record; comparing
		// those pointers tells closures of one literal apart, which
		// reflect.Value.Pointer (the shared code pointer) does not.
		return *(*unsafe.Pointer)(unsafe.Pointer(&af)) == *(*unsafe.Pointer)(unsafe.Pointer(&bf))
	}
	if aIsFunc != bIsFunc {
		return false
	}
	return a == b
}
