package gateway

import (
	"crypto/tls"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dispatchgate/multiplex/internal/config"
	"github.com/dispatchgate/multiplex/internal/routing"
)

// options accumulates the functional-option settings before New builds
// a Server.
type options struct {
	cfg         *config.Config
	table       routing.Table
	logger      *slog.Logger
	tlsConfig   *tls.Config
	cacheSize   int
	tracing     bool
	metricsReg  prometheus.Registerer
	statusRoute string
	buildInfo   BuildInfo
}

// BuildInfo is the static version metadata surfaced by the optional
// status route.
type BuildInfo struct {
	Version string
	Commit  string
}

// Option configures a Server at construction time.
type Option func(*options)

// WithConfig supplies the bootstrap configuration. If not given, New
// uses an empty Config with defaults applied.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithRoutes seeds the router's initial table. Routes may also be
// added after construction via Server.Register.
func WithRoutes(table routing.Table) Option {
	return func(o *options) { o.table = table }
}

// WithLogger overrides the gateway's structured logger. If not given,
// New builds one from Config.Log.Mute via internal/telemetry.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTLSConfig overrides the TLS configuration New would otherwise
// build from Config.Server's key/cert/pfx fields. Useful for
// embedders that already manage their own certificate material.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(o *options) { o.tlsConfig = tlsConfig }
}

// WithCacheSize bounds the router's resolution cache. 0 selects a
// sensible default.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithTracing builds an OpenTelemetry tracer provider that exports to
// stdout, installs it as the global provider and exposes its tracer via
// Server.Tracer. Sessions served by the gateway do not start spans on
// their own; telemetry.SessionSpan is there for dispatchers to call.
func WithTracing(enabled bool) Option {
	return func(o *options) { o.tracing = enabled }
}

// WithMetricsRegisterer registers the gateway's Prometheus status
// gauges with reg. Only takes effect combined with WithStatusRoute.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.metricsReg = reg }
}

// WithStatusRoute registers the built-in status dispatcher (uptime,
// session counters, build info) at criteria, e.g. "/status".
func WithStatusRoute(criteria string) Option {
	return func(o *options) { o.statusRoute = criteria }
}

// WithBuildInfo sets the version/commit the status route reports.
func WithBuildInfo(info BuildInfo) Option {
	return func(o *options) { o.buildInfo = info }
}
