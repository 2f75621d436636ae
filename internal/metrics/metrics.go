package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tallerapp/notifier/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	DeliveryOutcomes *prometheus.CounterVec
	DeliveryLatency  *prometheus.HistogramVec
	RenderDuration   prometheus.Histogram
	DispatchDepth    prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DeliveryOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_outcomes_total",
			Help: "Per-channel delivery outcomes by kind (delivered, failed, skipped reasons).",
		}, []string{"channel", "kind"}),

		DeliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_delivery_seconds",
			Help:    "Wall time of one channel Deliver call, successful or not.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),

		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "artifact_render_seconds",
			Help:    "Time spent rendering the order PDF.",
			Buckets: prometheus.DefBuckets,
		}),

		DispatchDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_queue_depth",
			Help: "Current number of queued background notification jobs.",
		}),
	}

	reg.MustRegister(
		m.DeliveryOutcomes,
		m.DeliveryLatency,
		m.RenderDuration,
		m.DispatchDepth,
	)

	return m
}

// Hooks returns the callbacks the orchestrator expects, so it stays free of
// prometheus imports.
func (m *Metrics) Hooks() (
	onOutcome func(domain.ChannelOutcome, time.Duration),
	onRender func(time.Duration),
) {
	onOutcome = func(o domain.ChannelOutcome, latency time.Duration) {
		m.DeliveryOutcomes.WithLabelValues(string(o.Channel), string(o.Kind)).Inc()
		if latency > 0 {
			m.DeliveryLatency.WithLabelValues(string(o.Channel)).Observe(latency.Seconds())
		}
	}
	onRender = func(d time.Duration) {
		m.RenderDuration.Observe(d.Seconds())
	}
	return
}
