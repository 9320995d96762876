// Package autoreg implements a vector autoregressive forecaster on first
// differences.
//
// Given a history of k series over T time steps, the model differences the
// history, forecasts the differences with
//
//	d[t] = Σ_l A[l] · d[t-l-1]
//
// integrates the forecast back onto the last observed level with a drift
// factor, and rounds to the nearest integer (ties to even).
package autoreg

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/born-ml/contract/internal/adapter"
	"github.com/born-ml/contract/internal/schema"
	"github.com/born-ml/contract/internal/statedict"
	"github.com/born-ml/contract/internal/tensor"
)

// Variant is the registry identifier of this backend.
const Variant = "autoreg"

// Defaults.
const (
	DefaultSteps = 1
	DefaultDrift = 1.005
)

func init() {
	adapter.Default.MustRegister(Variant, func() adapter.Adapter { return New() })
}

// Model is a VAR(p) forecaster without trend.
//
// Input shape is [time, series] with time > lags; output shape is
// [steps, series] float64.
type Model struct {
	mu    sync.RWMutex
	coef  *tensor.RawTensor // float64 [lags, series, series]
	steps int
	drift float64
	round bool

	calls atomic.Int64
}

// Option configures a Model.
type Option func(*Model)

// WithSteps sets the forecast horizon.
func WithSteps(n int) Option {
	return func(m *Model) { m.steps = n }
}

// WithDrift sets the factor applied to forecast differences.
func WithDrift(f float64) Option {
	return func(m *Model) { m.drift = f }
}

// WithRounding toggles rounding of the forecast.
func WithRounding(on bool) Option {
	return func(m *Model) { m.round = on }
}

// New returns an unloaded model.
func New(opts ...Option) *Model {
	m := &Model{steps: DefaultSteps, drift: DefaultDrift, round: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromCoefficients returns a loaded model. coef must be float64
// [lags, series, series]; coef[l][i][j] weighs series j at lag l+1 when
// forecasting series i.
func FromCoefficients(coef *tensor.RawTensor, opts ...Option) (*Model, error) {
	m := New(opts...)
	if err := m.set(coef, m.steps, m.drift, m.round); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) set(coef *tensor.RawTensor, steps int, drift float64, round bool) error {
	if coef == nil {
		return fmt.Errorf("autoreg: nil coefficients")
	}
	shape := coef.Shape()
	if coef.DType() != tensor.Float64 || len(shape) != 3 || shape[1] != shape[2] {
		return fmt.Errorf("autoreg: coefficients must be float64 [lags, k, k], got %s", coef)
	}
	if steps <= 0 {
		return fmt.Errorf("autoreg: steps must be positive, got %d", steps)
	}
	if math.IsNaN(drift) || math.IsInf(drift, 0) {
		return fmt.Errorf("autoreg: drift must be finite, got %v", drift)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.coef = coef.Clone()
	m.steps = steps
	m.drift = drift
	m.round = round
	return nil
}

// Lags returns the autoregressive order, or 0 when unloaded.
func (m *Model) Lags() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.coef == nil {
		return 0
	}
	return m.coef.Shape()[0]
}

// Variant implements adapter.Adapter.
func (m *Model) Variant() string { return Variant }

// Predict implements adapter.Adapter.
func (m *Model) Predict(ctx context.Context, in schema.ValidatedArray) (*tensor.RawTensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	coef, steps, drift, round := m.coef, m.steps, m.drift, m.round
	m.mu.RUnlock()
	if coef == nil {
		return nil, adapter.ErrNotLoaded
	}
	m.calls.Add(1)

	lags, k := coef.Shape()[0], coef.Shape()[1]
	x := in.Raw()
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != k {
		return nil, fmt.Errorf("input %v does not match %d series", shape, k)
	}
	rows := shape[0]
	if rows-1 < lags {
		return nil, fmt.Errorf("need at least %d time steps, got %d", lags+1, rows)
	}

	// Differences d[t] = x[t+1] - x[t]; only the last lags rows are needed.
	history := make([][]float64, lags, lags+steps)
	for l := 0; l < lags; l++ {
		t := rows - 1 - lags + l
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = x.Float64At((t+1)*k+j) - x.Float64At(t*k+j)
		}
		history[l] = row
	}

	a := coef.AsFloat64()
	level := make([]float64, k)
	for j := 0; j < k; j++ {
		level[j] = x.Float64At((rows-1)*k + j)
	}

	out := make([]float64, 0, steps*k)
	for s := 0; s < steps; s++ {
		next := make([]float64, k)
		for i := 0; i < k; i++ {
			var acc float64
			for l := 0; l < lags; l++ {
				prev := history[len(history)-1-l]
				base := (l*k + i) * k
				for j := 0; j < k; j++ {
					acc += a[base+j] * prev[j]
				}
			}
			next[i] = acc
		}
		history = append(history, next)

		for i := 0; i < k; i++ {
			level[i] += next[i] * drift
			v := level[i]
			if round {
				v = math.RoundToEven(v)
			}
			out = append(out, v)
		}
	}

	return tensor.FromSlice(out, tensor.Shape{steps, k})
}

// Parameters implements adapter.Adapter.
func (m *Model) Parameters() map[string]adapter.Parameter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	params := map[string]adapter.Parameter{
		"steps":         {Value: m.steps, Relevance: adapter.Tuning},
		"drift":         {Value: m.drift, Relevance: adapter.Tuning},
		"round":         {Value: m.round, Relevance: adapter.Tuning},
		"predict_calls": {Value: m.calls.Load(), Relevance: adapter.Diagnostic},
	}
	if m.coef != nil {
		c, _ := tensor.ToSlice[float64](m.coef)
		params["coefficients"] = adapter.Parameter{Value: c, Relevance: adapter.Core}
		params["lags"] = adapter.Parameter{Value: m.coef.Shape()[0], Relevance: adapter.Diagnostic}
		params["series"] = adapter.Parameter{Value: m.coef.Shape()[1], Relevance: adapter.Diagnostic}
	}
	return params
}

// Describe implements adapter.Adapter.
func (m *Model) Describe() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.coef == nil {
		return "autoreg (not loaded)"
	}
	return fmt.Sprintf("autoreg VAR(%d) over %d series, %d step forecast",
		m.coef.Shape()[0], m.coef.Shape()[1], m.steps)
}

// State implements adapter.Adapter.
func (m *Model) State() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.coef == nil {
		return nil, adapter.ErrNotLoaded
	}

	d := statedict.New(Variant)
	d.Set("coefficients", m.coef)
	d.Metadata["steps"] = strconv.Itoa(m.steps)
	d.Metadata["drift"] = strconv.FormatFloat(m.drift, 'g', -1, 64)
	d.Metadata["round"] = strconv.FormatBool(m.round)
	return d.MarshalBinary()
}

// Load implements adapter.Adapter.
func (m *Model) Load(state []byte) error {
	d, err := statedict.Decode(state)
	if err != nil {
		return fmt.Errorf("autoreg: %w", err)
	}
	if d.ModelType != Variant {
		return fmt.Errorf("autoreg: state belongs to %q", d.ModelType)
	}
	coef, err := d.Get("coefficients", tensor.Float64)
	if err != nil {
		return fmt.Errorf("autoreg: %w", err)
	}

	steps, err := strconv.Atoi(d.Metadata["steps"])
	if err != nil {
		return fmt.Errorf("autoreg: steps: %w", err)
	}
	drift, err := strconv.ParseFloat(d.Metadata["drift"], 64)
	if err != nil {
		return fmt.Errorf("autoreg: drift: %w", err)
	}
	round, err := strconv.ParseBool(d.Metadata["round"])
	if err != nil {
		return fmt.Errorf("autoreg: round: %w", err)
	}
	return m.set(coef, steps, drift, round)
}

// Calls returns how many forecasts the model has run.
func (m *Model) Calls() int64 {
	return m.calls.Load()
}
