package nestgo

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/nestgo/batch"
	"github.com/hupe1980/nestgo/config"
	"github.com/hupe1980/nestgo/ellipsoid"
	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/hupe1980/nestgo/sampler"
	"github.com/hupe1980/nestgo/sampler/multiellipsoid"
	"github.com/hupe1980/nestgo/sampler/slice"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/hupe1980/nestgo"

// Engine drives a constrained sampler for an outer nested-sampling loop.
//
// Engine is safe for concurrent use.
type Engine struct {
	strategy sampler.Strategy
	kind     string
	opts     options
	tracer   trace.Tracer
}

// New creates an Engine around strategy.
func New(strategy sampler.Strategy, optFns ...Option) (*Engine, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: strategy must not be nil", ErrInvalidConfig)
	}

	opts := applyOptions(optFns)

	return &Engine{
		strategy: strategy,
		kind:     samplerKind(strategy),
		opts:     opts,
		tracer:   opts.tracerProvider.Tracer(tracerName),
	}, nil
}

// NewFromConfig creates an Engine for m from cfg. optFns are applied after
// the options derived from cfg and take precedence.
func NewFromConfig(m model.Model, cfg config.Config, optFns ...Option) (*Engine, error) {
	strategy, err := NewStrategy(m, cfg)
	if err != nil {
		return nil, err
	}

	obs := cfg.Observability
	base := []Option{
		WithLogger(newLogger(os.Stderr, obs.LogFormat, parseLevel(obs.LogLevel))),
		WithMaxWorkers(cfg.Batch.MaxWorkers),
		WithInvocationsPerSecond(cfg.Batch.InvocationsPerSecond),
		WithMaxRetries(cfg.Batch.MaxRetries),
	}
	if obs.MetricsEnabled {
		base = append(base, WithMetricsCollector(&BasicMetricsCollector{}))
	}
	if !obs.TracingEnabled {
		base = append(base, WithTracerProvider(noop.NewTracerProvider()))
	}

	return New(strategy, append(base, optFns...)...)
}

// NewStrategy builds the sampler selected by cfg.
func NewStrategy(m model.Model, cfg config.Config) (sampler.Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, translateError(err)
	}

	switch cfg.Sampler.Kind {
	case config.KindSlice:
		s, err := slice.New(m, cfg.Slice.NumSlices, cfg.Slice.NumPhantomSave,
			slice.WithMidpointShrink(cfg.Slice.MidpointShrink),
			slice.WithPerfect(cfg.Slice.Perfect),
			slice.WithGradientSlice(cfg.Slice.GradientSlice),
			slice.WithMaxIterations(cfg.Sampler.MaxIterations),
		)
		if err != nil {
			return nil, translateError(err)
		}
		return s, nil
	case config.KindMultiEllipsoid:
		method, err := ellipsoid.ParseMethod(cfg.MultiEllipsoid.Method)
		if err != nil {
			return nil, translateError(err)
		}
		s, err := multiellipsoid.New(m, cfg.MultiEllipsoid.Depth, cfg.MultiEllipsoid.EfficiencyThreshold,
			multiellipsoid.WithMethod(method),
			multiellipsoid.WithMaxIterations(cfg.Sampler.MaxIterations),
		)
		if err != nil {
			return nil, translateError(err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown sampler kind %q", ErrInvalidConfig, cfg.Sampler.Kind)
	}
}

func samplerKind(s sampler.Strategy) string {
	switch s.(type) {
	case *slice.Sampler:
		return config.KindSlice
	case *multiellipsoid.Sampler:
		return config.KindMultiEllipsoid
	default:
		return "custom"
	}
}

// Kind names the sampler driven by the engine.
func (e *Engine) Kind() string { return e.kind }

// NumPhantom returns the phantoms returned per invocation.
func (e *Engine) NumPhantom() int { return e.strategy.NumPhantom() }

// Prepare preprocesses state into a Round. A Round is valid until the
// caller changes the state it was prepared from.
func (e *Engine) Prepare(ctx context.Context, key rng.Key, state sampler.State) (*Round, error) {
	runID := uuid.NewString()
	logger := e.opts.logger.WithRunID(runID).WithSampler(e.kind)
	livePoints := state.Front().Len()

	ctx, span := e.tracer.Start(ctx, "nestgo.Prepare", trace.WithAttributes(
		attribute.String("nestgo.run_id", runID),
		attribute.String("nestgo.sampler", e.kind),
		attribute.Int("nestgo.live_points", livePoints),
	))
	defer span.End()

	start := time.Now()
	proposal, err := e.strategy.Prepare(ctx, key, state)
	duration := time.Since(start)
	err = translateError(err)

	e.opts.metricsCollector.RecordPreprocess(e.kind, duration, err)
	logger.LogPreprocess(ctx, livePoints, duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &Round{
		engine:   e,
		proposal: proposal,
		runID:    runID,
		logger:   logger,
	}, nil
}

// Round is a sampler bound to one preprocessed state.
//
// Round is safe for concurrent use.
type Round struct {
	engine   *Engine
	proposal sampler.Proposal
	runID    string
	logger   *Logger
}

// RunID returns the id correlating the round's logs and spans.
func (r *Round) RunID() string { return r.runID }

// NumPhantom returns the phantoms returned per invocation.
func (r *Round) NumPhantom() int { return r.proposal.NumPhantom() }

// Propose draws one replacement for a live point at logLConstraint.
func (r *Round) Propose(key rng.Key, logLConstraint float64) (sampler.Result, error) {
	res, err := r.proposal.Propose(key, logLConstraint)
	if err != nil {
		return sampler.Result{}, translateError(err)
	}
	r.engine.opts.metricsCollector.RecordProposal(r.engine.kind, res.NumLikelihoodEvaluations(), len(res.Phantoms))
	return res, nil
}

// Replace draws one replacement per threshold in parallel. Slots that
// exhaust their retries are reported in the result's Failed bitmap.
func (r *Round) Replace(ctx context.Context, key rng.Key, thresholds []float64) (*batch.Result, error) {
	e := r.engine

	ctx, span := e.tracer.Start(ctx, "nestgo.Replace", trace.WithAttributes(
		attribute.String("nestgo.run_id", r.runID),
		attribute.String("nestgo.sampler", e.kind),
		attribute.Int("nestgo.slots", len(thresholds)),
	))
	defer span.End()

	batchOpts := []batch.Option{
		batch.WithInvocationsPerSecond(e.opts.invocationsPerSecond),
		batch.WithMaxRetries(e.opts.maxRetries),
		batch.WithRetryHook(func(slot, attempt int, err error) {
			r.logger.LogRetry(ctx, slot, attempt, err)
		}),
	}
	if e.opts.maxWorkers > 0 {
		batchOpts = append(batchOpts, batch.WithMaxWorkers(e.opts.maxWorkers))
	}

	start := time.Now()
	res, err := batch.Run(ctx, r.proposal, key, thresholds, batchOpts...)
	duration := time.Since(start)

	if err != nil {
		err = translateError(err)
		r.logger.LogReplace(ctx, len(thresholds), 0, 0, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	failed := int(res.Failed.GetCardinality())
	for i, smp := range res.Samples {
		if res.Failed.Contains(uint32(i)) {
			continue
		}
		evals := smp.NumLikelihoodEvaluations
		for _, ph := range res.Phantoms[i] {
			evals += ph.NumLikelihoodEvaluations
		}
		e.opts.metricsCollector.RecordProposal(e.kind, evals, len(res.Phantoms[i]))
	}
	e.opts.metricsCollector.RecordReplace(e.kind, len(thresholds), failed, res.Retries, duration)

	span.SetAttributes(
		attribute.Int("nestgo.failed_slots", failed),
		attribute.Int("nestgo.retries", res.Retries),
		attribute.Int("nestgo.evaluations", res.NumEvaluations),
	)
	r.logger.LogReplace(ctx, len(thresholds), failed, res.NumEvaluations, nil)

	return res, nil
}
