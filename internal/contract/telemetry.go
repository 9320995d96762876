package contract

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName names the tracer and meter of this package.
const instrumentationName = "born.contract"

// Outcomes attached to prediction metrics.
const (
	outcomeHit    = "hit"
	outcomeMiss   = "miss"
	outcomeShared = "shared"
	outcomeError  = "error"
)

type predictMetrics struct {
	latency metric.Float64Histogram
	total   metric.Int64Counter
}

func newPredictMetrics(mp metric.MeterProvider) (*predictMetrics, error) {
	meter := mp.Meter(instrumentationName)

	latency, err := meter.Float64Histogram(
		"contract_predict_duration_seconds",
		metric.WithDescription("Duration of contracted predictions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create latency histogram: %w", err)
	}

	total, err := meter.Int64Counter(
		"contract_predict_total",
		metric.WithDescription("Total number of contracted predictions"),
	)
	if err != nil {
		return nil, fmt.Errorf("create predict counter: %w", err)
	}

	return &predictMetrics{latency: latency, total: total}, nil
}

// noopMetrics is used when the configured provider cannot create instruments.
func noopMetrics() *predictMetrics {
	pm, _ := newPredictMetrics(noop.NewMeterProvider())
	return pm
}

func (pm *predictMetrics) record(ctx context.Context, variant, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("outcome", outcome),
	)
	pm.total.Add(ctx, 1, attrs)
	pm.latency.Record(ctx, d.Seconds(), attrs)
}

func startPredictSpan(ctx context.Context, m *Model) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "Model.Predict",
		trace.WithAttributes(
			attribute.String("contract.model_id", m.id.String()),
			attribute.String("contract.variant", m.adapter.Variant()),
		),
	)
}
