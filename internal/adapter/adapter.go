// Package adapter defines the capability interface model backends implement.
//
// The contract layer never branches on a backend's identity: it calls
// Predict, Parameters, State and Load through this interface, and resolves
// variants by identifier through a Registry when restoring saved models.
package adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/born-ml/contract/internal/schema"
	"github.com/born-ml/contract/internal/tensor"
)

// Adapter is implemented by every model backend.
//
// Predict returns an unvalidated array; the caller validates it against the
// output schema. Implementations must be safe for concurrent Predict calls
// once loaded. Load must not be called concurrently with Predict.
type Adapter interface {
	// Variant returns the registry identifier of the backend.
	Variant() string

	// Predict runs inference on a validated input.
	Predict(ctx context.Context, in schema.ValidatedArray) (*tensor.RawTensor, error)

	// Parameters returns every tunable or inspectable parameter by name.
	Parameters() map[string]Parameter

	// Describe returns a one-line human readable summary.
	Describe() string

	// State serializes the backend's internal representation.
	State() ([]byte, error)

	// Load restores a representation produced by State.
	Load(state []byte) error
}

// Parameter is a named backend parameter with its relevance tag.
type Parameter struct {
	Value     any       `json:"value"`
	Relevance Relevance `json:"relevance"`
}

// Filter returns the parameters whose relevance is one of levels.
// With no levels it returns only Core parameters.
func Filter(params map[string]Parameter, levels ...Relevance) map[string]Parameter {
	if len(levels) == 0 {
		levels = []Relevance{Core}
	}
	out := make(map[string]Parameter)
	for name, p := range params {
		for _, l := range levels {
			if p.Relevance == l {
				out[name] = p
				break
			}
		}
	}
	return out
}

// Names returns the sorted parameter names.
func Names(params map[string]Parameter) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls a.Predict, converting failures and panics into *Error.
func Invoke(ctx context.Context, a Adapter, in schema.ValidatedArray) (out *tensor.RawTensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Variant: a.Variant(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = a.Predict(ctx, in)
	if err != nil {
		return nil, Wrap(a.Variant(), err)
	}
	if out == nil {
		return nil, &Error{Variant: a.Variant(), Err: fmt.Errorf("predict returned no array")}
	}
	return out, nil
}
