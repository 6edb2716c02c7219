package nestgo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements MetricsCollector on Prometheus metrics.
type PrometheusCollector struct {
	preprocessLatency *prometheus.HistogramVec
	proposals         *prometheus.CounterVec
	evaluations       *prometheus.CounterVec
	proposalEvals     *prometheus.HistogramVec
	phantoms          *prometheus.CounterVec
	replaceLatency    *prometheus.HistogramVec
	slots             *prometheus.CounterVec
	failedSlots       *prometheus.CounterVec
	retries           *prometheus.CounterVec
}

var _ MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics
// with reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		preprocessLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nestgo_preprocess_duration_seconds",
			Help:    "Latency of sampler preprocessing",
			Buckets: prometheus.DefBuckets,
		}, []string{"sampler", "status"}),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nestgo_proposals_total",
			Help: "Total successful sampler invocations",
		}, []string{"sampler"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nestgo_likelihood_evaluations_total",
			Help: "Total model evaluations spent by successful invocations",
		}, []string{"sampler"}),
		proposalEvals: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nestgo_proposal_evaluations",
			Help:    "Model evaluations per invocation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"sampler"}),
		phantoms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nestgo_phantoms_total",
			Help: "Total phantom samples returned",
		}, []string{"sampler"}),
		replaceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nestgo_replace_duration_seconds",
			Help:    "Latency of batch replacements",
			Buckets: prometheus.DefBuckets,
		}, []string{"sampler"}),
		slots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nestgo_replace_slots_total",
			Help: "Total live-point slots submitted for replacement",
		}, []string{"sampler"}),
		failedSlots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nestgo_replace_failed_slots_total",
			Help: "Total slots that exhausted their retries",
		}, []string{"sampler"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nestgo_retries_total",
			Help: "Total invocations retried with a fresh key",
		}, []string{"sampler"}),
	}

	for _, col := range []prometheus.Collector{
		c.preprocessLatency,
		c.proposals,
		c.evaluations,
		c.proposalEvals,
		c.phantoms,
		c.replaceLatency,
		c.slots,
		c.failedSlots,
		c.retries,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RecordPreprocess implements MetricsCollector.
func (c *PrometheusCollector) RecordPreprocess(kind string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.preprocessLatency.WithLabelValues(kind, status).Observe(duration.Seconds())
}

// RecordProposal implements MetricsCollector.
func (c *PrometheusCollector) RecordProposal(kind string, evaluations, phantoms int) {
	c.proposals.WithLabelValues(kind).Inc()
	c.evaluations.WithLabelValues(kind).Add(float64(evaluations))
	c.proposalEvals.WithLabelValues(kind).Observe(float64(evaluations))
	c.phantoms.WithLabelValues(kind).Add(float64(phantoms))
}

// RecordReplace implements MetricsCollector.
func (c *PrometheusCollector) RecordReplace(kind string, slots, failed, retries int, duration time.Duration) {
	c.replaceLatency.WithLabelValues(kind).Observe(duration.Seconds())
	c.slots.WithLabelValues(kind).Add(float64(slots))
	c.failedSlots.WithLabelValues(kind).Add(float64(failed))
	c.retries.WithLabelValues(kind).Add(float64(retries))
}
