// Package gateway is the embeddable public surface of multiplex: it
// wires the router, the session lifecycle and the connection-level
// multiplexer behind a small constructor/Listen/Close API.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pkcs12"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/dispatchgate/multiplex/internal/config"
	"github.com/dispatchgate/multiplex/internal/gwerrors"
	"github.com/dispatchgate/multiplex/internal/multiplex"
	"github.com/dispatchgate/multiplex/internal/routing"
	"github.com/dispatchgate/multiplex/internal/session"
	"github.com/dispatchgate/multiplex/internal/statusdispatcher"
	"github.com/dispatchgate/multiplex/internal/telemetry"
)

// Server is the embeddable HTTP/1.1+HTTP/2 multiplexing gateway.
// Build one with New, register routes with Register, then call Listen.
type Server struct {
	cfg        *config.Config
	instanceID string
	router     *routing.Router
	stats      *session.Stats
	gw         *multiplex.Gateway

	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
}

// New builds a Server from the given options. The server starts in
// the gateway's Bootstrapped state (see internal/multiplex) — call
// Listen to start accepting connections.
func New(opts ...Option) (*Server, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	instanceID := uuid.NewString()

	logger := o.logger
	if logger == nil {
		logger = telemetry.NewLogger(cfg.Log.Mute)
	}
	logger = logger.With("instance", instanceID)

	table := o.table
	if table == nil {
		table = make(routing.Table)
	}
	router := routing.New(table, cfg.Router.Seperators, o.cacheSize)

	stats := &session.Stats{}

	if o.statusRoute != "" {
		var metrics *statusdispatcher.Metrics
		if o.metricsReg != nil {
			metrics = statusdispatcher.NewMetrics(o.metricsReg)
		}
		d := statusdispatcher.New(time.Now(), stats, metrics, statusdispatcher.BuildInfo{
			Version: o.buildInfo.Version,
			Commit:  o.buildInfo.Commit,
		})
		router.Register(o.statusRoute, routing.Entry{
			"method.get": {session.DispatcherFunc(d.Dispatch)},
		})
	}

	tlsConfig := o.tlsConfig
	if tlsConfig == nil && cfg.Server.TLSMode() {
		built, err := buildTLSConfig(cfg.Server)
		if err != nil {
			return nil, &TLSError{Err: err}
		}
		tlsConfig = built
	}

	keepAliveTimeout := time.Duration(cfg.Server.KeepAliveTimeoutMS) * time.Millisecond
	gw := multiplex.New(router, stats, logger, tlsConfig, keepAliveTimeout)

	s := &Server{cfg: cfg, instanceID: instanceID, router: router, stats: stats, gw: gw}

	if o.tracing {
		tp, err := telemetry.NewTracerProvider(context.Background())
		if err != nil {
			return nil, fmt.Errorf("gateway: tracing setup: %w", err)
		}
		s.tracerProvider = tp
		otel.SetTracerProvider(tp)
		s.tracer = tp.Tracer("github.com/dispatchgate/multiplex")
	}

	return s, nil
}

// Register adds or replaces the route entry for criteria. Safe to
// call before or after Listen.
func (s *Server) Register(criteria string, entry routing.Entry) {
	s.router.Register(criteria, entry)
}

// Listen binds addr and serves HTTP/1.1 and HTTP/2 until ctx is
// cancelled or Close is called.
func (s *Server) Listen(ctx context.Context, addr string) error {
	if err := s.gw.Listen(ctx, addr); err != nil {
		if errors.Is(err, gwerrors.ErrNotAvailable) {
			err = fmt.Errorf("%w: %w", ErrAlreadyListening, err)
		}
		return &ListenError{Addr: addr, Err: err}
	}
	return nil
}

// Close stops accepting new connections and gracefully drains every
// open session.
func (s *Server) Close(ctx context.Context) error {
	err := s.gw.Close(ctx)
	if errors.Is(err, gwerrors.ErrNotAvailable) {
		err = fmt.Errorf("%w: %w", ErrNotListening, err)
	}
	if s.tracerProvider != nil {
		_ = s.tracerProvider.Shutdown(ctx)
	}
	return err
}

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr { return s.gw.Addr() }

// InstanceID returns the random identifier generated for this Server at
// construction time, tagged onto every log line it emits. It disambiguates
// log output from embedders that run more than one Server in a process.
func (s *Server) InstanceID() string { return s.instanceID }

// Stats exposes the live session counters.
func (s *Server) Stats() *session.Stats { return s.stats }

// Tracer returns the server's tracer, or nil if WithTracing was never
// set. The gateway does not start spans with it on its own.
func (s *Server) Tracer() trace.Tracer { return s.tracer }

// buildTLSConfig turns the configured key/cert or pfx material into a
// *tls.Config for native TLS termination on the multiplexed port.
func buildTLSConfig(s config.ServerConfig) (*tls.Config, error) {
	var cert tls.Certificate
	var err error

	switch {
	case s.Pfx != "":
		cert, err = loadPfx(s.Pfx)
	case s.Key != "" && s.Cert != "":
		cert, err = tls.LoadX509KeyPair(s.Cert, s.Key)
	default:
		return nil, fmt.Errorf("no key/cert or pfx material configured")
	}
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tlsVersion(s.MinVersion, tls.VersionTLS12),
		MaxVersion:   tlsVersion(s.MaxVersion, tls.VersionTLS13),
		NextProtos:   []string{"h2", "http/1.1"},
	}, nil
}

// loadPfx decodes a PKCS#12 bundle into a tls.Certificate.
func loadPfx(path string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, err
	}
	key, leaf, err := pkcs12.Decode(data, "")
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode pfx: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

func tlsVersion(name string, fallback uint16) uint16 {
	switch name {
	case "TLSv1.2":
		return tls.VersionTLS12
	case "TLSv1.3":
		return tls.VersionTLS13
	default:
		return fallback
	}
}
