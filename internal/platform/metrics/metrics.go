// Package metrics exposes Prometheus collectors for the portal client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the session manager and API client report into.
// Nop satisfies it for callers that do not export metrics.
type Recorder interface {
	RecordAPICall(route string, status int, latency time.Duration)
	RecordAPITransportError(route string)
	RecordSessionTransition(to string)
	RecordForcedLogout(status int)
	RecordStaleResponse(op string)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	apiCalls       *prometheus.CounterVec
	apiLatency     *prometheus.HistogramVec
	apiTransport   *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	forcedLogouts  *prometheus.CounterVec
	staleResponses *prometheus.CounterVec
}

// NewCollector registers the portal collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_api_requests_total",
			Help: "Remote API responses by route and HTTP status.",
		}, []string{"route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_api_request_duration_seconds",
			Help:    "Remote API round-trip latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		apiTransport: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_api_transport_errors_total",
			Help: "Remote API calls that failed before a response arrived.",
		}, []string{"route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_session_transitions_total",
			Help: "Session state machine transitions by target state.",
		}, []string{"to"}),
		forcedLogouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_session_forced_logouts_total",
			Help: "Logouts triggered by a 401/403 from the remote API.",
		}, []string{"status"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_session_stale_responses_total",
			Help: "Authentication responses discarded because the session moved on.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.apiCalls,
		c.apiLatency,
		c.apiTransport,
		c.transitions,
		c.forcedLogouts,
		c.staleResponses,
	)
	return c
}

func (c *Collector) RecordAPICall(route string, status int, latency time.Duration) {
	c.apiCalls.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.apiLatency.WithLabelValues(route).Observe(latency.Seconds())
}

func (c *Collector) RecordAPITransportError(route string) {
	c.apiTransport.WithLabelValues(route).Inc()
}

func (c *Collector) RecordSessionTransition(to string) {
	c.transitions.WithLabelValues(to).Inc()
}

func (c *Collector) RecordForcedLogout(status int) {
	c.forcedLogouts.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordStaleResponse(op string) {
	c.staleResponses.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAPICall(string, int, time.Duration) {}
func (Nop) RecordAPITransportError(string)           {}
func (Nop) RecordSessionTransition(string)           {}
func (Nop) RecordForcedLogout(int)                   {}
func (Nop) RecordStaleResponse(string)               {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
