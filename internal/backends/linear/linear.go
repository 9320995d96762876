// Package linear implements an affine reference backend: y = x·Wᵀ + b.
package linear

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/born-ml/contract/internal/adapter"
	"github.com/born-ml/contract/internal/parallel"
	"github.com/born-ml/contract/internal/schema"
	"github.com/born-ml/contract/internal/statedict"
	"github.com/born-ml/contract/internal/tensor"
)

// Variant is the registry identifier of this backend.
const Variant = "linear"

func init() {
	adapter.Default.MustRegister(Variant, func() adapter.Adapter { return New() })
}

// Model is a dense affine map. Weight has shape [out, in], bias [out].
//
// Inputs must be rank 2 ([batch, in]). Float32 inputs produce float32
// outputs; every other numeric input produces float64.
type Model struct {
	mu     sync.RWMutex
	weight *tensor.RawTensor
	bias   *tensor.RawTensor

	calls atomic.Int64
}

// New returns an unloaded model.
func New() *Model {
	return &Model{}
}

// FromWeights returns a model with the given float64 parameters.
// A nil bias means zero bias.
func FromWeights(weight, bias *tensor.RawTensor) (*Model, error) {
	m := New()
	if err := m.set(weight, bias); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) set(weight, bias *tensor.RawTensor) error {
	if weight == nil {
		return fmt.Errorf("linear: nil weight")
	}
	if weight.DType() != tensor.Float64 || len(weight.Shape()) != 2 {
		return fmt.Errorf("linear: weight must be float64 [out, in], got %s", weight)
	}
	out := weight.Shape()[0]
	if bias == nil {
		zero, err := tensor.NewRaw(tensor.Shape{out}, tensor.Float64)
		if err != nil {
			return err
		}
		bias = zero
	}
	if bias.DType() != tensor.Float64 || !bias.Shape().Equal(tensor.Shape{out}) {
		return fmt.Errorf("linear: bias must be float64 [%d], got %s", out, bias)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.weight = weight.Clone()
	m.bias = bias.Clone()
	return nil
}

// Variant implements adapter.Adapter.
func (m *Model) Variant() string { return Variant }

// Predict implements adapter.Adapter.
func (m *Model) Predict(ctx context.Context, in schema.ValidatedArray) (*tensor.RawTensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	weight, bias := m.weight, m.bias
	m.mu.RUnlock()
	if weight == nil {
		return nil, adapter.ErrNotLoaded
	}
	m.calls.Add(1)

	x := in.Raw()
	shape := x.Shape()
	outDim, inDim := weight.Shape()[0], weight.Shape()[1]
	if len(shape) != 2 || shape[1] != inDim {
		return nil, fmt.Errorf("input %v does not match weight [%d, %d]", shape, outDim, inDim)
	}
	batch := shape[0]

	w := weight.AsFloat64()
	b := bias.AsFloat64()
	y := make([]float64, batch*outDim)
	err := parallel.Rows(ctx, batch, parallel.DefaultConfig(), func(lo, hi int) {
		for n := lo; n < hi; n++ {
			for o := 0; o < outDim; o++ {
				acc := b[o]
				for i := 0; i < inDim; i++ {
					acc += x.Float64At(n*inDim+i) * w[o*inDim+i]
				}
				y[n*outDim+o] = acc
			}
		}
	})
	if err != nil {
		return nil, err
	}

	out, err := tensor.FromSlice(y, tensor.Shape{batch, outDim})
	if err != nil {
		return nil, err
	}
	if x.DType() == tensor.Float32 {
		return narrow(out)
	}
	return out, nil
}

func narrow(r *tensor.RawTensor) (*tensor.RawTensor, error) {
	src := r.AsFloat64()
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = float32(v)
	}
	return tensor.FromSlice(dst, r.Shape())
}

// Parameters implements adapter.Adapter.
func (m *Model) Parameters() map[string]adapter.Parameter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	params := map[string]adapter.Parameter{
		"predict_calls": {Value: m.calls.Load(), Relevance: adapter.Diagnostic},
	}
	if m.weight == nil {
		return params
	}
	w, _ := tensor.ToSlice[float64](m.weight)
	b, _ := tensor.ToSlice[float64](m.bias)
	params["weight"] = adapter.Parameter{Value: w, Relevance: adapter.Core}
	params["bias"] = adapter.Parameter{Value: b, Relevance: adapter.Core}
	params["in_features"] = adapter.Parameter{Value: m.weight.Shape()[1], Relevance: adapter.Diagnostic}
	params["out_features"] = adapter.Parameter{Value: m.weight.Shape()[0], Relevance: adapter.Diagnostic}
	return params
}

// Describe implements adapter.Adapter.
func (m *Model) Describe() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.weight == nil {
		return "linear (not loaded)"
	}
	return fmt.Sprintf("linear %d -> %d", m.weight.Shape()[1], m.weight.Shape()[0])
}

// State implements adapter.Adapter.
func (m *Model) State() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.weight == nil {
		return nil, adapter.ErrNotLoaded
	}

	d := statedict.New(Variant)
	d.Set("weight", m.weight)
	d.Set("bias", m.bias)
	return d.MarshalBinary()
}

// Load implements adapter.Adapter.
func (m *Model) Load(state []byte) error {
	d, err := statedict.Decode(state)
	if err != nil {
		return fmt.Errorf("linear: %w", err)
	}
	if d.ModelType != Variant {
		return fmt.Errorf("linear: state belongs to %q", d.ModelType)
	}
	weight, err := d.Get("weight", tensor.Float64)
	if err != nil {
		return fmt.Errorf("linear: %w", err)
	}
	bias, err := d.Get("bias", tensor.Float64)
	if err != nil {
		return fmt.Errorf("linear: %w", err)
	}
	return m.set(weight, bias)
}

// Calls returns how many predictions the model has run.
func (m *Model) Calls() int64 {
	return m.calls.Load()
}
