package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// Metrics records outbound request counts and latencies, and the state of
// any circuit breaker wrapping the client. A nil *Metrics records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	state     *prometheus.GaugeVec
	fallbacks *prometheus.CounterVec
}

// NewMetrics creates request metrics under namespace and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_client_requests_total",
				Help:      "Outbound HTTP requests by method and status code (\"error\" for transport failures).",
			},
			[]string{"method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_client_request_duration_seconds",
				Help:      "Outbound HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
			},
			[]string{"name"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_fallback_invoked_total",
				Help:      "Requests refused by an open breaker and answered by its fallback.",
			},
			[]string{"name"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.state, m.fallbacks)
	return m
}

func (m *Metrics) observe(req *http.Request, resp *http.Response, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	m.requests.WithLabelValues(req.Method, code).Inc()
	m.duration.WithLabelValues(req.Method).Observe(elapsed.Seconds())
}

func (m *Metrics) breakerState(name string, state gobreaker.State) {
	if m == nil {
		return
	}
	var v float64
	switch state {
	case gobreaker.StateClosed:
		v = 0
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	default:
		v = -1
	}
	m.state.WithLabelValues(name).Set(v)
}

func (m *Metrics) fallbackInvoked(name string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(name).Inc()
}
