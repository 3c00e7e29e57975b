// Package statusdispatcher provides a trivial example session.Dispatcher
// exposing gateway uptime, the four session counters and build info as
// the view body.
package statusdispatcher

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dispatchgate/multiplex/internal/session"
)

// Metrics are the gateway-wide Prometheus collectors the status
// dispatcher both registers and reads back into the view body.
type Metrics struct {
	Dispatched prometheus.Gauge
	Completed  prometheus.Gauge
	Abortions  prometheus.Gauge
	Rejections prometheus.Gauge
}

// NewMetrics registers the status gauges with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Dispatched: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "multiplex", Name: "dispatched_total", Help: "Requests dispatched to the router.",
		}),
		Completed: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "multiplex", Name: "completed_total", Help: "Requests completed successfully.",
		}),
		Abortions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "multiplex", Name: "abortions_total", Help: "Requests terminated by abortion.",
		}),
		Rejections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "multiplex", Name: "rejections_total", Help: "Requests rejected by a dispatcher.",
		}),
	}
}

// BuildInfo is the static build metadata surfaced alongside uptime.
type BuildInfo struct {
	Version string
	Commit  string
}

// Dispatcher is the example status-page session.Dispatcher: it sets
// the view body to uptime, the four session counters and build info,
// and refreshes the gauges from the same Stats snapshot on every call.
// Per the redesigned uptime calculation, uptime is time.Since(started),
// not the inverted started.Sub(now) the flagged original used.
type Dispatcher struct {
	Started time.Time
	Stats   *session.Stats
	Metrics *Metrics
	Build   BuildInfo
}

// New builds a status Dispatcher. started should be recorded once, at
// gateway construction time.
func New(started time.Time, stats *session.Stats, metrics *Metrics, build BuildInfo) *Dispatcher {
	return &Dispatcher{Started: started, Stats: stats, Metrics: metrics, Build: build}
}

// Dispatch implements session.Dispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, req *session.Request, sess *session.Session) error {
	dispatched := d.Stats.Dispatched()
	completed := d.Stats.Completed()
	abortions := d.Stats.Abortions()
	rejections := d.Stats.Rejections()

	if d.Metrics != nil {
		d.Metrics.Dispatched.Set(float64(dispatched))
		d.Metrics.Completed.Set(float64(completed))
		d.Metrics.Abortions.Set(float64(abortions))
		d.Metrics.Rejections.Set(float64(rejections))
	}

	sess.View.SetBody(map[string]any{
		"uptimeSeconds": time.Since(d.Started).Seconds(),
		"stats": map[string]any{
			"dispatched": dispatched,
			"completed":  completed,
			"abortions":  abortions,
			"rejections": rejections,
		},
		"build": map[string]any{
			"version": d.Build.Version,
			"commit":  d.Build.Commit,
		},
	})
	return nil
}
