// Package metrics instruments the server's five RPC handlers with
// Prometheus counters and a latency histogram, served on /metrics. This is
// ambient observability the spec.md distillation never names but the
// project's ambient-stack rule still calls for.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the per-operation instruments for the five RPCs.
type Registry struct {
	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reg      *prometheus.Registry
}

func New() *Registry {
	reg := prometheus.NewRegistry()

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surfsync",
		Subsystem: "server",
		Name:      "rpc_calls_total",
		Help:      "Number of RPC calls handled, by operation.",
	}, []string{"op"})

	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surfsync",
		Subsystem: "server",
		Name:      "rpc_errors_total",
		Help:      "Number of RPC calls that returned an error or rejection, by operation.",
	}, []string{"op"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "surfsync",
		Subsystem: "server",
		Name:      "rpc_duration_seconds",
		Help:      "RPC handler latency, by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	reg.MustRegister(calls, errs, duration)

	return &Registry{calls: calls, errors: errs, duration: duration, reg: reg}
}

// Observe records one call to op, its duration, and whether it failed.
func (r *Registry) Observe(op string, failed bool, d time.Duration) {
	r.calls.WithLabelValues(op).Inc()
	if failed {
		r.errors.WithLabelValues(op).Inc()
	}
	r.duration.WithLabelValues(op).Observe(d.Seconds())
}

// Track is a convenience wrapper: call it with defer to time and record a
// handler's outcome in one line.
//
//	defer r.Track("get_block", &failed)()
func (r *Registry) Track(op string, failed *bool) func() {
	start := time.Now()
	return func() {
		r.Observe(op, *failed, time.Since(start))
	}
}

// Handler exposes the registry on /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
