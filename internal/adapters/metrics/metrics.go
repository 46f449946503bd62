// Package metrics provides the Prometheus implementation of ports.Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/bake/internal/core/ports"
)

const namespace = "bake"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus records export activity in its own registry.
type Prometheus struct {
	registry   *prometheus.Registry
	jobs       *prometheus.CounterVec
	coalesced  *prometheus.CounterVec
	canceled   *prometheus.CounterVec
	failures   *prometheus.CounterVec
	generation *prometheus.HistogramVec
}

// New creates the collectors and registers them, along with the Go runtime and
// process collectors, on a fresh registry.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_started_total",
			Help:      "Total number of converter runs started.",
		}, []string{"format"}),
		coalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_coalesced_total",
			Help:      "Total number of requests attached to an export already in flight.",
		}, []string{"format"}),
		canceled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_canceled_total",
			Help:      "Total number of requests whose client went away.",
		}, []string{"format"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_failed_total",
			Help:      "Total number of converter runs that failed.",
		}, []string{"format"}),
		generation: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent producing an artifact, from introspection to converter exit.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"format"}),
	}
}

// JobStarted counts a new converter run.
func (p *Prometheus) JobStarted(format string) {
	p.jobs.WithLabelValues(format).Inc()
}

// RequestCoalesced counts a request served by a run already in flight.
func (p *Prometheus) RequestCoalesced(format string) {
	p.coalesced.WithLabelValues(format).Inc()
}

// RequestCanceled counts a request whose client went away.
func (p *Prometheus) RequestCanceled(format string) {
	p.canceled.WithLabelValues(format).Inc()
}

// JobFinished observes the generation time and counts failures.
func (p *Prometheus) JobFinished(format string, elapsed time.Duration, err error) {
	p.generation.WithLabelValues(format).Observe(elapsed.Seconds())
	if err != nil {
		p.failures.WithLabelValues(format).Inc()
	}
}

// Handler returns the HTTP handler exposing the registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
