// Package batch replaces many live-point slots in parallel with one bound
// proposal.
//
// Slot i always runs with the i-th key split from the batch key, and results
// are stored by slot index, so the output does not depend on scheduling.
// Invocations are never interrupted; the context is checked between them.
package batch

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/nestgo/internal/resource"
	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/hupe1980/nestgo/sampler"
	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of a batch run, indexed by slot.
type Result struct {
	// Samples holds the replacement for each slot. Failed slots hold the zero Sample.
	Samples []model.Sample
	// Phantoms holds the phantom samples of each slot.
	Phantoms [][]model.Sample
	// Failed marks slots that exhausted their retries.
	Failed *roaring.Bitmap
	// NumEvaluations is the total model evaluations of successful invocations.
	NumEvaluations int
	// Retries is the number of retried invocations.
	Retries int
}

// Succeeded returns the number of slots that produced a sample.
func (r *Result) Succeeded() int {
	return len(r.Samples) - int(r.Failed.GetCardinality())
}

// Run invokes p once per threshold.
//
// Retryable failures (see sampler.IsRetryable) are retried with a fresh key
// up to the configured limit and then recorded in Result.Failed. Any other
// error aborts the run.
func Run(ctx context.Context, p sampler.Proposal, key rng.Key, thresholds []float64, optFns ...Option) (*Result, error) {
	opts := applyOptions(optFns)

	n := len(thresholds)
	res := &Result{
		Samples:  make([]model.Sample, n),
		Phantoms: make([][]model.Sample, n),
		Failed:   roaring.New(),
	}
	if n == 0 {
		return res, nil
	}

	rc := resource.NewController(resource.Config{
		MaxWorkers:           int64(opts.maxWorkers),
		InvocationsPerSecond: opts.invocationsPerSecond,
	})

	keys := key.Split(n)
	failed := make([]bool, n)
	var retries atomic.Int64

	g, gctx := errgroup.WithContext(ctx)

	for i := range n {
		if err := rc.AcquireWorker(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer rc.ReleaseWorker()

			slotKey := keys[i]
			for attempt := 0; ; attempt++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := rc.WaitInvocation(gctx); err != nil {
					return err
				}

				out, err := p.Propose(slotKey, thresholds[i])
				if err == nil {
					res.Samples[i] = out.Sample
					res.Phantoms[i] = out.Phantoms
					return nil
				}
				if !sampler.IsRetryable(err) {
					return fmt.Errorf("slot %d: %w", i, err)
				}
				if attempt >= opts.maxRetries {
					failed[i] = true
					return nil
				}

				if opts.onRetry != nil {
					opts.onRetry(i, attempt+1, err)
				}
				retries.Add(1)
				slotKey, _ = slotKey.Split2()
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// AcquireWorker only fails on cancellation, which g.Wait may not observe.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, f := range failed {
		if f {
			res.Failed.Add(uint32(i))
			continue
		}
		res.NumEvaluations += res.Samples[i].NumLikelihoodEvaluations
		for _, ph := range res.Phantoms[i] {
			res.NumEvaluations += ph.NumLikelihoodEvaluations
		}
	}
	res.Retries = int(retries.Load())

	return res, nil
}
