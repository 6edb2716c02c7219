package resource

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrent invocations.
	// If 0, defaults to 1.
	MaxWorkers int64

	// InvocationsPerSecond caps how fast invocations may start.
	// If 0, unlimited.
	InvocationsPerSecond float64

	// Burst is the token bucket size. If 0, defaults to MaxWorkers.
	Burst int
}

// Controller manages the concurrency and invocation rate of a batch.
type Controller struct {
	cfg Config

	workers  *semaphore.Weighted
	inFlight atomic.Int64

	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.MaxWorkers)
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.InvocationsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.InvocationsPerSecond), cfg.Burst)
	}

	return c
}

// MaxWorkers returns the configured worker limit.
func (c *Controller) MaxWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MaxWorkers
}

// AcquireWorker reserves a worker slot, blocking while all slots are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if !c.workers.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.workers.Release(1)
}

// InFlight returns the number of reserved worker slots.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// WaitInvocation blocks until the rate limit allows one more invocation.
func (c *Controller) WaitInvocation(ctx context.Context) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// TryInvocation reports whether an invocation may start now, consuming a
// token if so.
func (c *Controller) TryInvocation() bool {
	if c == nil || c.limiter == nil {
		return true
	}
	return c.limiter.AllowN(time.Now(), 1)
}
