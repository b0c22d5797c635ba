package fetch

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the fetch collectors. A nil *Metrics records nothing.
type Metrics struct {
	Fetches      *prometheus.CounterVec
	QuadsDecoded *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rdffetch",
				Name:      "fetches_total",
				Help:      "Total number of dataset fetches by scheme and result",
			},
			[]string{"scheme", "result"},
		),
		QuadsDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rdffetch",
				Name:      "quads_decoded_total",
				Help:      "Total number of quads decoded by content type",
			},
			[]string{"content_type"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rdffetch",
				Name:      "fetch_duration_seconds",
				Help:      "Dataset fetch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheme"},
		),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.Fetches, err = register(reg, m.Fetches); err != nil {
		return nil, err
	}
	if m.QuadsDecoded, err = register(reg, m.QuadsDecoded); err != nil {
		return nil, err
	}
	if m.Duration, err = register(reg, m.Duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

func (m *Metrics) observeFetch(scheme string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	if scheme == "" {
		scheme = "unknown"
	}
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(Code(err)))
	}
	m.Fetches.WithLabelValues(scheme, result).Inc()
	m.Duration.WithLabelValues(scheme).Observe(elapsed.Seconds())
}

func (m *Metrics) observeQuads(contentType string, n int) {
	if m == nil {
		return
	}
	m.QuadsDecoded.WithLabelValues(contentType).Add(float64(n))
}
