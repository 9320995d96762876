// Package contract binds a model adapter to input and output schemas and a
// prediction cache.
//
// A Model validates every input, serves repeated inputs from its cache, runs
// the adapter at most once per distinct input among concurrent callers, and
// validates every output before it is stored or returned.
package contract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/born-ml/contract/internal/adapter"
	"github.com/born-ml/contract/internal/cache"
	"github.com/born-ml/contract/internal/fingerprint"
	"github.com/born-ml/contract/internal/logging"
	"github.com/born-ml/contract/internal/schema"
	"github.com/born-ml/contract/internal/tensor"
)

// Model is an adapter wrapped in its input/output contract.
//
// Thread Safety:
//
//	Predict is safe for concurrent use.
type Model struct {
	id      uuid.UUID
	adapter adapter.Adapter
	input   *schema.Schema
	output  *schema.Schema
	cache   *cache.Cache
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *predictMetrics
}

type settings struct {
	id        uuid.UUID
	cache     *cache.Cache
	cacheOpts []cache.Option
	logger    *slog.Logger
	tracing   trace.TracerProvider
	metering  metric.MeterProvider
}

// Option configures a Model.
type Option func(*settings)

// WithCache uses c instead of a private cache. The cache is keyed by input
// only, so it must not be shared with a model computing something else.
func WithCache(c *cache.Cache) Option {
	return func(s *settings) { s.cache = c }
}

// WithCacheOptions configures the private cache.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(s *settings) { s.cacheOpts = append(s.cacheOpts, opts...) }
}

// WithCacheConfig configures the private cache from a whole option set.
func WithCacheConfig(o cache.Options) Option {
	return WithCacheOptions(cache.WithOptions(o))
}

// WithLogger sets the logger. The model adds its id and variant.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithTracerProvider sets the provider of prediction spans. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) { s.tracing = tp }
}

// WithMeterProvider sets the provider of prediction metrics. The global
// provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) { s.metering = mp }
}

// WithID sets the model id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(s *settings) { s.id = id }
}

// New binds a to the given schemas.
func New(a adapter.Adapter, input, output *schema.Schema, opts ...Option) (*Model, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil adapter", ErrInvalidModel)
	}
	if input == nil || output == nil {
		return nil, fmt.Errorf("%w: input and output schemas are required", ErrInvalidModel)
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	if s.logger == nil {
		s.logger = logging.New("contract")
	}
	if s.tracing == nil {
		s.tracing = otel.GetTracerProvider()
	}
	if s.metering == nil {
		s.metering = otel.GetMeterProvider()
	}
	logger := s.logger.With(
		slog.String("model_id", s.id.String()),
		slog.String("variant", a.Variant()),
	)

	metrics, err := newPredictMetrics(s.metering)
	if err != nil {
		logger.Warn("prediction metrics disabled", slog.String("error", err.Error()))
		metrics = noopMetrics()
	}

	c := s.cache
	if c == nil {
		c, err = cache.New(append([]cache.Option{cache.WithLogger(logger)}, s.cacheOpts...)...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}
	}

	return &Model{
		id:      s.id,
		adapter: a,
		input:   input,
		output:  output,
		cache:   c,
		logger:  logger,
		tracer:  s.tracing.Tracer(instrumentationName),
		metrics: metrics,
	}, nil
}

// Predict validates raw, returns the cached output for identical input or
// runs the adapter, and validates its output.
//
// Errors are *schema.ShapeMismatchError, *schema.DTypeMismatchError or
// *schema.RangeError for contract violations, *adapter.Error for backend
// failures, or ctx.Err(). The returned array is owned by the caller.
func (m *Model) Predict(ctx context.Context, raw *tensor.RawTensor) (*tensor.RawTensor, error) {
	start := time.Now()
	ctx, span := startPredictSpan(ctx, m)
	defer span.End()

	rec := newRecorder(span, m.logger)

	out, outcome, err := m.predict(ctx, rec, raw)
	if err != nil {
		rec.fail(err)
		m.metrics.record(ctx, m.adapter.Variant(), outcomeError, time.Since(start))
		return nil, err
	}

	rec.enter(Done)
	span.SetAttributes(attribute.String("contract.outcome", outcome))
	m.metrics.record(ctx, m.adapter.Variant(), outcome, time.Since(start))
	return out, nil
}

func (m *Model) predict(ctx context.Context, rec *recorder, raw *tensor.RawTensor) (*tensor.RawTensor, string, error) {
	rec.enter(ValidatingInput)
	sess := schema.NewSession()
	in, err := m.input.Validate(sess, raw)
	if err != nil {
		return nil, "", err
	}

	rec.enter(CacheLookup)
	fp := fingerprint.Of(in)
	rec.span.SetAttributes(attribute.String("contract.fingerprint", fp.String()))

	res, err := m.cache.GetOrCompute(ctx, fp, func(cctx context.Context) (schema.ValidatedArray, error) {
		rec.enter(CacheMiss)
		rec.enter(Predicting)
		rawOut, err := adapter.Invoke(cctx, m.adapter, in)
		if err != nil {
			m.logger.Warn("adapter failed",
				slog.String("fingerprint", fp.Short()),
				slog.String("error", err.Error()))
			return schema.ValidatedArray{}, err
		}

		rec.enter(ValidatingOutput)
		// The adapter may hand back its input or a buffer it keeps. A
		// conversion copies; otherwise the cache takes its own copy.
		if rawOut.DType() == m.output.DType() {
			rawOut = rawOut.Clone()
		}
		out, err := m.output.Validate(sess, rawOut)
		if err != nil {
			m.logger.Warn("adapter output violates contract",
				slog.String("fingerprint", fp.Short()),
				slog.String("error", err.Error()))
			return schema.ValidatedArray{}, err
		}

		rec.enter(CacheStore)
		return out, nil
	})
	if err != nil {
		return nil, "", err
	}

	outcome := outcomeMiss
	switch {
	case res.Hit:
		rec.enter(CacheHit)
		outcome = outcomeHit
	case rec.current() == CacheLookup:
		// Another caller's computation served this one.
		rec.enterIf(CacheLookup, CacheMiss)
		outcome = outcomeShared
	}

	return res.Output.Raw().Clone(), outcome, nil
}

// CompatibleWith reports whether other accepts and produces the same
// structures, so callers can swap one for the other.
func (m *Model) CompatibleWith(other *Model) bool {
	if other == nil {
		return false
	}
	return m.input.Equal(other.input) && m.output.Equal(other.output)
}

// Parameters returns the adapter parameters with one of the given
// relevance levels, or all of them when no level is given.
func (m *Model) Parameters(levels ...adapter.Relevance) map[string]adapter.Parameter {
	params := m.adapter.Parameters()
	if len(levels) == 0 {
		return params
	}
	return adapter.Filter(params, levels...)
}

// Describe returns a one-line summary of the model and its contract.
func (m *Model) Describe() string {
	return fmt.Sprintf("%s: %s -> %s", m.adapter.Describe(), m.input, m.output)
}

// CacheStats returns the prediction cache statistics.
func (m *Model) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// ClearCache drops every cached prediction.
func (m *Model) ClearCache() {
	m.cache.Purge()
	m.logger.Debug("cache cleared")
}

// Cache returns the prediction cache.
func (m *Model) Cache() *cache.Cache { return m.cache }

// ID returns the model id.
func (m *Model) ID() uuid.UUID { return m.id }

// Variant returns the adapter variant.
func (m *Model) Variant() string { return m.adapter.Variant() }

// InputSchema returns the input contract.
func (m *Model) InputSchema() *schema.Schema { return m.input }

// OutputSchema returns the output contract.
func (m *Model) OutputSchema() *schema.Schema { return m.output }

// Adapter returns the wrapped adapter.
func (m *Model) Adapter() adapter.Adapter { return m.adapter }
