package transport

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/apicaller/pkg/status"
)

// Metrics holds the collectors updated by an instrumented engine.
type Metrics struct {
	transfers *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewMetrics creates the transfer collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apicaller",
			Name:      "transfers_total",
			Help:      "Transfers executed, partitioned by status class.",
		}, []string{"class"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apicaller",
			Name:      "transfer_duration_seconds",
			Help:      "Wall-clock duration of transfers.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.transfers, m.duration)
	}
	return m
}

// Instrument wraps engine so that every Execute updates m.
func Instrument(engine Engine, m *Metrics) Engine {
	return &instrumented{Engine: engine, metrics: m}
}

type instrumented struct {
	Engine
	metrics *Metrics
}

func (e *instrumented) Execute(ctx context.Context) ([]byte, error) {
	start := time.Now()
	raw, err := e.Engine.Execute(ctx)
	e.metrics.duration.Observe(time.Since(start).Seconds())
	code := int(e.Engine.Info(InfoStatusCode))
	if err != nil {
		code = status.ConnectionFailed
	}
	e.metrics.transfers.WithLabelValues(status.Class(code)).Inc()
	return raw, err
}
