// Package routing provides the default in-memory Router, a concrete
// implementation that makes the gateway runnable end to end without
// requiring an embedder to supply its own route resolver.
package routing

import "github.com/dispatchgate/multiplex/internal/session"

// Entry is a route entry keyed by criteria strings, including the
// reserved method.<verb>, accept.<media-type> and content-type.<media-type>
// prefixes the negotiation dispatchers interpret.
type Entry map[string][]session.Dispatcher

// Table maps a request's criteria string (the URL path with trailing
// slashes stripped) to its route entry.
type Table map[string]Entry
