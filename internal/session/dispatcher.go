package session

import "context"

// Dispatcher is the single operation every chain element exposes.
// Implementations may mutate sess.View, replace req.Body, splice more
// dispatchers into sess.Chain after the cursor, or abort via
// sess.Abortion.Abort. Returning a non-nil error rejects the request;
// returning nil yields control to the next dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *Request, sess *Session) error
}

// DispatcherFunc adapts a plain function to the Dispatcher interface,
// the same convenience http.HandlerFunc offers for http.Handler.
type DispatcherFunc func(ctx context.Context, req *Request, sess *Session) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, req *Request, sess *Session) error {
	return f(ctx, req, sess)
}
