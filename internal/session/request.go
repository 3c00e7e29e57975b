package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
)

// PendingBody is the initial value of Request.Body: a handle that
// resolves to the raw upstream byte buffer once fully read. Middleware
// such as the JSON body decoder replaces Request.Body with the decoded
// value once it has awaited this.
type PendingBody struct {
	once  sync.Once
	bytes []byte
	err   error
	ready chan struct{}
}

// NewPendingBody starts buffering r in the background and returns a
// handle that resolves once the upstream body has been fully read (or
// fails with a gwerrors.KindUpstreamClosed error wrapping the read
// failure).
func NewPendingBody(ctx context.Context, r io.Reader) *PendingBody {
	p := &PendingBody{ready: make(chan struct{})}
	go func() {
		defer close(p.ready)
		buf, err := io.ReadAll(r)
		if err != nil {
			err = gwerrors.New(gwerrors.KindUpstreamClosed, "failed to read upstream body").WithCause(err)
		}
		p.bytes, p.err = buf, err
	}()
	return p
}

// Await blocks until the body is fully buffered, or the context is
// cancelled first.
func (p *PendingBody) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-p.ready:
		return p.bytes, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Request is the inbound request, immutable to dispatchers except for
// Body and Criteria (which middleware may replace/refine).
type Request struct {
	Method   string
	Headers  http.Header
	URL      *url.URL
	Criteria string
	Body     any
}

// NewRequest builds a Request from an *http.Request, computing Criteria
// as the pathname with trailing slashes stripped and seeding Body with a
// PendingBody that buffers the upstream in the background.
func NewRequest(r *http.Request) *Request {
	return &Request{
		Method:   strings.ToUpper(r.Method),
		Headers:  r.Header,
		URL:      r.URL,
		Criteria: strings.TrimRight(r.URL.Path, "/"),
		Body:     NewPendingBody(r.Context(), r.Body),
	}
}

// RawBody awaits Request.Body if it is still a *PendingBody, otherwise
// returns an error: once a dispatcher has replaced Body with a decoded
// value, raw-byte access is no longer meaningful.
func (req *Request) RawBody(ctx context.Context) ([]byte, error) {
	pending, ok := req.Body.(*PendingBody)
	if !ok {
		return nil, fmt.Errorf("session: request body is no longer pending (type %T)", req.Body)
	}
	return pending.Await(ctx)
}

// BodyReader is a convenience for dispatchers that want an io.Reader
// over the still-pending raw body.
func (req *Request) BodyReader(ctx context.Context) (io.Reader, error) {
	raw, err := req.RawBody(ctx)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}
