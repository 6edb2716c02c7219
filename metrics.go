package nestgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems;
// PrometheusCollector is provided for Prometheus.
type MetricsCollector interface {
	// RecordPreprocess is called after each preprocessing step.
	// kind names the sampler, err is nil if successful.
	RecordPreprocess(kind string, duration time.Duration, err error)

	// RecordProposal is called once per successful invocation with the
	// model evaluations it spent and the phantoms it returned.
	RecordProposal(kind string, evaluations, phantoms int)

	// RecordReplace is called after each batch replacement.
	// failed counts slots that exhausted their retries.
	RecordReplace(kind string, slots, failed, retries int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPreprocess(string, time.Duration, error)      {}
func (NoopMetricsCollector) RecordProposal(string, int, int)                    {}
func (NoopMetricsCollector) RecordReplace(string, int, int, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PreprocessCount      atomic.Int64
	PreprocessErrors     atomic.Int64
	PreprocessTotalNanos atomic.Int64
	ProposalCount        atomic.Int64
	Evaluations          atomic.Int64
	Phantoms             atomic.Int64
	ReplaceCount         atomic.Int64
	ReplaceSlots         atomic.Int64
	ReplaceFailed        atomic.Int64
	ReplaceRetries       atomic.Int64
	ReplaceTotalNanos    atomic.Int64
}

// RecordPreprocess implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPreprocess(_ string, duration time.Duration, err error) {
	b.PreprocessCount.Add(1)
	b.PreprocessTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PreprocessErrors.Add(1)
	}
}

// RecordProposal implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProposal(_ string, evaluations, phantoms int) {
	b.ProposalCount.Add(1)
	b.Evaluations.Add(int64(evaluations))
	b.Phantoms.Add(int64(phantoms))
}

// RecordReplace implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReplace(_ string, slots, failed, retries int, duration time.Duration) {
	b.ReplaceCount.Add(1)
	b.ReplaceSlots.Add(int64(slots))
	b.ReplaceFailed.Add(int64(failed))
	b.ReplaceRetries.Add(int64(retries))
	b.ReplaceTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PreprocessCount:    b.PreprocessCount.Load(),
		PreprocessErrors:   b.PreprocessErrors.Load(),
		PreprocessAvgNanos: avgNanos(b.PreprocessTotalNanos.Load(), b.PreprocessCount.Load()),
		ProposalCount:      b.ProposalCount.Load(),
		Evaluations:        b.Evaluations.Load(),
		Phantoms:           b.Phantoms.Load(),
		ReplaceCount:       b.ReplaceCount.Load(),
		ReplaceSlots:       b.ReplaceSlots.Load(),
		ReplaceFailed:      b.ReplaceFailed.Load(),
		ReplaceRetries:     b.ReplaceRetries.Load(),
		ReplaceAvgNanos:    avgNanos(b.ReplaceTotalNanos.Load(), b.ReplaceCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PreprocessCount    int64
	PreprocessErrors   int64
	PreprocessAvgNanos int64
	ProposalCount      int64
	Evaluations        int64
	Phantoms           int64
	ReplaceCount       int64
	ReplaceSlots       int64
	ReplaceFailed      int64
	ReplaceRetries     int64
	ReplaceAvgNanos    int64
}

// EvaluationsPerProposal returns the mean model evaluations per invocation.
func (s BasicMetricsStats) EvaluationsPerProposal() float64 {
	if s.ProposalCount == 0 {
		return 0
	}
	return float64(s.Evaluations) / float64(s.ProposalCount)
}
