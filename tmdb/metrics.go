package tmdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes recorded in metrics
const (
	outcomeSuccess   = "success"
	outcomeRemote    = "remote_error"
	outcomeDecode    = "decode_error"
	outcomeTransport = "transport_error"
)

// Metrics holds the Prometheus collectors updated by the dispatcher.
// A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	breaker  *prometheus.GaugeVec
}

// NewMetrics creates the dispatcher collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmdb",
			Name:      "requests_total",
			Help:      "TMDB API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tmdb",
			Name:      "request_duration_seconds",
			Help:      "TMDB API request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		breaker: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tmdb",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.breaker} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) breakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breaker.WithLabelValues(name).Set(state)
}
