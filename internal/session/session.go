package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
	"github.com/dispatchgate/multiplex/internal/view"
)

// Session is the per-request (h1) or per-stream (h2) record binding the
// upstream request, the view, the cancellation token and the dispatcher
// chain. A back-reference lets the view reach the raw downstream writer
// for header access; everything else flows through the exported
// fields.
type Session struct {
	ID        string
	Request   *Request
	View      *view.Model
	Abortion  *Abortion
	Chain     *Chain
	Stats     *Stats
	Logger    *slog.Logger
	downstream http.ResponseWriter
}

// New builds a session for one request/stream. Chain may be nil and
// assigned later once the Router has resolved it for req.Criteria.
func New(id string, req *Request, w http.ResponseWriter, stats *Stats, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:         id,
		Request:    req,
		View:       view.NewModel(w),
		Abortion:   NewAbortion(),
		Stats:      stats,
		Logger:     logger,
		downstream: w,
	}
}

// WireReactors installs the standard transport-fault → abort/log
// mappings. Transport adapters (the h1/h2 engines) call the returned
// functions from their own event hooks; Session does not observe
// transport events directly since the shape of those events differs
// between net/http and golang.org/x/net/http2.
func (s *Session) WireReactors() (upstreamAborted, upstreamError, downstreamError, downstreamClose func(error)) {
	upstreamAborted = func(err error) {
		s.Abortion.Abort(gwerrors.New(gwerrors.KindUpstreamAborted, "upstream aborted the request").WithCause(err))
	}
	upstreamError = func(err error) {
		s.Logger.Error("upstream error", "session", s.ID, "err", err)
	}
	downstreamError = func(err error) {
		s.Logger.Error("downstream error", "session", s.ID, "err", err)
	}
	downstreamClose = func(err error) {
		s.Abortion.Abort(gwerrors.New(gwerrors.KindStreamClosed, "downstream closed").WithCause(err))
		path := ""
		if s.Request.URL != nil {
			path = s.Request.URL.Path
		}
		s.Logger.Info("downstream closed",
			"session", s.ID,
			"status", s.View.Status(),
			"method", s.Request.Method,
			"path", path,
		)
	}
	return upstreamAborted, upstreamError, downstreamError, downstreamClose
}

// Run drives the dispatch-chain lifecycle: bumps dispatched, runs the
// chain to completion, and maps the outcome to a present/presentError
// call exactly once. Chain must already be set. The context handed to
// the chain is cancelled when Run returns.
func (s *Session) Run(ctx context.Context) error {
	s.Stats.IncDispatched()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Chain.Run(ctx, s.Request, s) }()

	select {
	case err := <-done:
		if err != nil {
			s.Stats.IncRejections()
			s.Logger.Error("dispatch rejected", "session", s.ID, "err", err)
			return s.View.PresentError(err)
		}
		if s.Abortion.Fired() {
			s.Stats.IncAbortions()
			if reason := s.Abortion.Reason(); reason != nil {
				return s.View.PresentError(reason)
			}
			return s.View.Present()
		}
		s.Stats.IncCompleted()
		return s.View.Present()

	case <-s.Abortion.Done():
		s.Stats.IncAbortions()
		if reason := s.Abortion.Reason(); reason != nil {
			return s.View.PresentError(reason)
		}
		return s.View.Present()
	}
}
