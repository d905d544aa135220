package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Observer receives one observation per backend call
type Observer interface {
	ObserveRequest(operation, outcome string, duration time.Duration)
}

// Recorder keeps backend call metrics in a private registry
type Recorder struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder registers the backend collectors
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviedesk",
		Name:      "backend_requests_total",
		Help:      "Total number of movie backend requests",
	}, []string{"operation", "outcome"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moviedesk",
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of movie backend requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(requestTotal, requestDuration)

	return &Recorder{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}
}

// ObserveRequest implements Observer
func (r *Recorder) ObserveRequest(operation, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.requestTotal.WithLabelValues(operation, outcome).Inc()
	r.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteText renders every collected metric in the Prometheus text format
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Nop discards observations
type Nop struct{}

// ObserveRequest implements Observer
func (Nop) ObserveRequest(string, string, time.Duration) {}
