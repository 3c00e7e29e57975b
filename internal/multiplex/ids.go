package multiplex

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/dispatchgate/multiplex/internal/session"
)

type requestCounterKey struct{}
type connSessionIDKey struct{}

// uint32Counter is a per-connection request/stream sequence number.
type uint32Counter struct {
	v atomic.Uint32
}

func (c *uint32Counter) next() uint32 { return c.v.Add(1) - 1 }

// withConnIdentity stashes the connection's session id and request
// counter on ctx so h1 (via http.Server.ConnContext) and h2 (via
// http2.ServeConnOpts.Context) can each derive per-request ids without
// either engine knowing about the other's framing.
func withConnIdentity(ctx context.Context, connID string, counter *uint32Counter) context.Context {
	ctx = context.WithValue(ctx, connSessionIDKey{}, connID)
	return context.WithValue(ctx, requestCounterKey{}, counter)
}

// newRequestID derives this request's connection-scoped session id and
// composed request id from the values withConnIdentity stashed on r's
// context: "<sessionID>.<4-char base36 request index>" for h1,
// "<sessionID>.<4-char base36 stream id>" for h2 — approximated here
// with our own per-connection counter, since golang.org/x/net/http2
// does not surface the real HTTP/2 stream id to http.Handler code.
func newRequestID(r *http.Request) (connID string, requestID string, err error) {
	ctx := r.Context()
	id, _ := ctx.Value(connSessionIDKey{}).(string)
	if id == "" {
		id, err = session.NewSessionID()
		if err != nil {
			return "", "", err
		}
	}
	counter, _ := ctx.Value(requestCounterKey{}).(*uint32Counter)
	var index uint32
	if counter != nil {
		index = counter.next()
	}
	if r.ProtoMajor >= 2 {
		return id, session.HTTP2RequestID(id, index), nil
	}
	return id, session.HTTP1RequestID(id, int64(index)), nil
}
