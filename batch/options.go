package batch

import "runtime"

type options struct {
	maxWorkers           int
	invocationsPerSecond float64
	maxRetries           int
	onRetry              RetryHook
}

// RetryHook is called before a slot is retried with a fresh key.
// It may be called concurrently from several workers.
type RetryHook func(slot, attempt int, err error)

// Option configures a batch run.
type Option func(*options)

// WithMaxWorkers bounds the number of concurrent invocations.
// Defaults to GOMAXPROCS.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithInvocationsPerSecond caps how fast invocations start. 0 means unlimited.
func WithInvocationsPerSecond(rate float64) Option {
	return func(o *options) {
		o.invocationsPerSecond = rate
	}
}

// WithMaxRetries sets how often a slot failing with a retryable error is
// retried with a fresh key before it is recorded as failed.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// WithRetryHook registers a hook observing retries.
func WithRetryHook(fn RetryHook) Option {
	return func(o *options) {
		o.onRetry = fn
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		maxWorkers: runtime.GOMAXPROCS(0),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.maxWorkers <= 0 {
		o.maxWorkers = 1
	}
	if o.maxRetries < 0 {
		o.maxRetries = 0
	}
	return o
}
