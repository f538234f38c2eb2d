package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Recorder backed by Prometheus. Collectors
// are registered on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	recomputeTotal   *prometheus.CounterVec
	emittedTotal     *prometheus.CounterVec
}

var _ Recorder = (*PrometheusCollector)(nil)

// NewPrometheus creates a collector. A nil reg uses
// prometheus.DefaultRegisterer; an empty namespace defaults to "equip".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "equip"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.dispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "totals",
			Name:      "dispatch_total",
			Help:      "Mutation events dispatched by type and result (success, failure).",
		}, []string{"event_type", "result"})

		p.dispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "totals",
			Name:      "dispatch_duration_seconds",
			Help:      "Time to run a mutation event through every pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100us .. ~1.6s
		}, []string{"event_type"})

		p.recomputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "totals",
			Name:      "variant_recompute_total",
			Help:      "Variant recompute requests by cache result (hit, miss).",
		}, []string{"cache"})

		p.emittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "totals",
			Name:      "emitted_events_total",
			Help:      "Output events emitted by type.",
		}, []string{"event_type"})

		p.reg.MustRegister(p.dispatchTotal)
		p.reg.MustRegister(p.dispatchDuration)
		p.reg.MustRegister(p.recomputeTotal)
		p.reg.MustRegister(p.emittedTotal)
	})
}

// RecordDispatch records the outcome and latency of a dispatch
func (p *PrometheusCollector) RecordDispatch(eventType string, duration time.Duration, err error) {
	p.ensureRegistered()

	result := "success"
	if err != nil {
		result = "failure"
	}
	p.dispatchTotal.WithLabelValues(eventType, result).Inc()
	p.dispatchDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

// RecordRecompute records a recompute request
func (p *PrometheusCollector) RecordRecompute(cacheHit bool) {
	p.ensureRegistered()

	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	p.recomputeTotal.WithLabelValues(cache).Inc()
}

// RecordEmitted records an output event
func (p *PrometheusCollector) RecordEmitted(eventType string) {
	p.ensureRegistered()
	p.emittedTotal.WithLabelValues(eventType).Inc()
}
