// Package resource bounds the parallel work of a batch run.
//
// The Controller manages two resources:
//
//   - Workers: a weighted semaphore caps concurrent sampler invocations
//   - Invocation rate: a token bucket caps how fast new invocations start
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:           8,
//	    InvocationsPerSecond: 500,
//	})
//
//	if err := rc.WaitInvocation(ctx); err != nil {
//	    return err
//	}
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
