// Package multiplex implements the connection-level protocol
// multiplexer: one listening socket serving HTTP/1.1 and HTTP/2
// (cleartext and TLS) by sniffing each connection's preface and
// handing it to the matching engine.
package multiplex

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/sync/errgroup"

	"github.com/dispatchgate/multiplex/internal/dispatch"
	"github.com/dispatchgate/multiplex/internal/gwerrors"
	"github.com/dispatchgate/multiplex/internal/routing"
	"github.com/dispatchgate/multiplex/internal/session"
)

// h2Session is the bookkeeping the live-session set keeps per
// HTTP/2 connection so Close can drain it.
type h2Session struct {
	cancel context.CancelFunc
	done   chan struct{}
	nextID *uint32Counter
}

// defaultKeepAliveTimeout is used when the caller passes a zero
// keepAliveTimeout to New, matching the h2 engine's IdleTimeout below.
const defaultKeepAliveTimeout = 5 * time.Minute

// Gateway ties the raw listener, the h1 and h2 engines and the router
// together behind a single lifecycle state machine.
type Gateway struct {
	Router           *routing.Router
	Stats            *session.Stats
	Logger           *slog.Logger
	TLS              *tls.Config
	KeepAliveTimeout time.Duration

	state      stateBox
	rawLn      net.Listener
	h1Listener *chanListener
	h1Server   *http.Server
	h2Server   *http2.Server
	handler    http.HandlerFunc

	mu     sync.Mutex
	liveH2 map[net.Conn]*h2Session
}

// New builds a Gateway in the Bootstrapped state. keepAliveTimeout is
// the HTTP/1.1 idle-connection timeout surfaced in the Keep-Alive
// response header; a zero value falls back to defaultKeepAliveTimeout.
func New(router *routing.Router, stats *session.Stats, logger *slog.Logger, tlsConfig *tls.Config, keepAliveTimeout time.Duration) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if keepAliveTimeout <= 0 {
		keepAliveTimeout = defaultKeepAliveTimeout
	}
	g := &Gateway{
		Router:           router,
		Stats:            stats,
		Logger:           logger,
		TLS:              tlsConfig,
		KeepAliveTimeout: keepAliveTimeout,
		h2Server: &http2.Server{
			IdleTimeout: 5 * time.Minute,
		},
		liveH2: make(map[net.Conn]*h2Session),
	}
	g.handler = g.serveHTTP
	g.state.store(Bootstrapped)
	return g
}

// Listen accepts connections on addr until ctx is cancelled or Close
// is called, sniffing each connection's preface and routing it to the
// h1 or h2 engine. It is only valid from the Bootstrapped state.
func (g *Gateway) Listen(ctx context.Context, addr string) error {
	if !g.state.compareAndSwap(Bootstrapped, Listening) {
		return gwerrors.New(gwerrors.KindNotAvailable, "gateway must be bootstrapped before Listen").WithCause(gwerrors.ErrNotAvailable)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if g.TLS != nil {
		ln = tls.NewListener(ln, g.TLS)
	}
	g.rawLn = ln

	g.h1Listener = newChanListener(ln.Addr())
	g.h1Server = &http.Server{
		Handler:     g.handler,
		IdleTimeout: g.KeepAliveTimeout,
		ConnContext: func(ctx context.Context, _ net.Conn) context.Context {
			connID, err := session.NewSessionID()
			if err != nil {
				connID = "unknown"
			}
			return withConnIdentity(ctx, connID, &uint32Counter{})
		},
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := g.h1Server.Serve(g.h1Listener); err != nil && err != http.ErrServerClosed {
			g.Logger.Error("h1 engine stopped", "err", err)
		}
	}()

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- g.acceptLoop(ctx) }()

	select {
	case <-ctx.Done():
		_ = g.Close(context.Background())
		wg.Wait()
		return ctx.Err()
	case err := <-acceptErr:
		wg.Wait()
		return err
	}
}

func (g *Gateway) acceptLoop(ctx context.Context) error {
	for {
		conn, err := g.rawLn.Accept()
		if err != nil {
			if g.state.load() != Listening {
				return nil
			}
			return err
		}
		go g.handleConn(ctx, conn)
	}
}

func (g *Gateway) handleConn(ctx context.Context, raw net.Conn) {
	pc := newPeekConn(raw)
	isH2, err := sniff(pc)
	if err != nil {
		g.Logger.Debug("preface sniff failed, dropping connection", "remote", raw.RemoteAddr(), "err", err)
		_ = raw.Close()
		return
	}

	if !isH2 {
		if err := g.h1Listener.handoff(pc); err != nil {
			_ = raw.Close()
		}
		return
	}

	g.serveH2(ctx, pc)
}

func (g *Gateway) serveH2(parent context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(parent)
	connID, err := session.NewSessionID()
	if err != nil {
		connID = "unknown"
	}
	sess := &h2Session{cancel: cancel, done: make(chan struct{}), nextID: &uint32Counter{}}

	g.mu.Lock()
	g.liveH2[conn] = sess
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.liveH2, conn)
		g.mu.Unlock()
		close(sess.done)
	}()

	g.h2Server.ServeConn(conn, &http2.ServeConnOpts{
		Context: withConnIdentity(ctx, connID, sess.nextID),
		Handler: g.handler,
	})
}

// Close transitions the gateway to Closed, stopping the accept loop,
// gracefully draining the h1 server and cancelling every live h2
// session concurrently via errgroup, grounded on the one x/sync
// consumer in the example pack.
func (g *Gateway) Close(ctx context.Context) error {
	if !g.state.compareAndSwap(Listening, Closing) {
		return gwerrors.New(gwerrors.KindNotAvailable, "gateway is not listening").WithCause(gwerrors.ErrNotAvailable)
	}
	defer g.state.store(Closed)

	if g.rawLn != nil {
		_ = g.rawLn.Close()
	}
	if g.h1Listener != nil {
		_ = g.h1Listener.Close()
	}

	var eg errgroup.Group
	if g.h1Server != nil {
		eg.Go(func() error { return g.h1Server.Shutdown(ctx) })
	}

	g.mu.Lock()
	sessions := make([]*h2Session, 0, len(g.liveH2))
	for _, s := range g.liveH2 {
		sessions = append(sessions, s)
	}
	g.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
		eg.Go(func() error {
			select {
			case <-s.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	return eg.Wait()
}

// Addr returns the address the gateway is listening on, or nil before
// Listen has bound a socket.
func (g *Gateway) Addr() net.Addr {
	if g.rawLn == nil {
		return nil
	}
	return g.rawLn.Addr()
}

// writeConnectionHeaders echoes the request's Connection header onto
// the response and, for HTTP/1.1 connections requesting keep-alive,
// advertises the transport's native idle timeout via the Keep-Alive
// header. HTTP/2 has no equivalent connection-level header and is left
// untouched.
func (g *Gateway) writeConnectionHeaders(w http.ResponseWriter, r *http.Request) {
	if r.ProtoMajor != 1 {
		return
	}
	conn := r.Header.Get("Connection")
	if conn == "" {
		return
	}
	w.Header().Set("Connection", conn)
	if strings.EqualFold(conn, "keep-alive") {
		w.Header().Set("Keep-Alive", fmt.Sprintf("timeout=%d", int64(g.KeepAliveTimeout/time.Second)))
	}
}

// serveHTTP is the single root handler shared by both the h1 and h2
// engines: it builds a session, resolves the route and runs the chain.
func (g *Gateway) serveHTTP(w http.ResponseWriter, r *http.Request) {
	g.writeConnectionHeaders(w, r)

	req := session.NewRequest(r)

	_, id, err := newRequestID(r)
	if err != nil {
		id = "unknown"
	}

	sess := session.New(id, req, w, g.Stats, g.Logger)

	upstreamAborted, _, _, downstreamClose := sess.WireReactors()

	serveDone := make(chan struct{})
	go func() {
		select {
		case <-r.Context().Done():
			upstreamAborted(r.Context().Err())
		case <-serveDone:
		}
	}()
	defer close(serveDone)
	defer downstreamClose(nil)

	entry, err := g.Router.Resolve(req.Criteria)
	if err != nil {
		_ = sess.View.PresentError(err)
		return
	}

	sess.Chain = session.NewChain(dispatch.MethodGate(entry))
	_ = sess.Run(r.Context())
}
