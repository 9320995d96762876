// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package linear provides a dense affine backend: y = x·Wᵀ + b.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/contract/backend/linear"
//	    "github.com/born-ml/contract/contract"
//	    "github.com/born-ml/contract/tensor"
//	)
//
//	w, _ := tensor.FromSlice([]float64{1, 0, 2, 0, 1, -1}, tensor.Shape{2, 3})
//	a, _ := linear.FromWeights(w, nil)
//	m, _ := contract.New(a, in, out)
package linear

import (
	"github.com/born-ml/contract/adapter"
	"github.com/born-ml/contract/internal/backends/linear"
	"github.com/born-ml/contract/tensor"
)

// Variant is the registry name of the backend.
const Variant = linear.Variant

// Model is a dense affine map. Weight has shape [out, in], bias [out].
type Model = linear.Model

// Compile-time check that Model implements adapter.Adapter.
var _ adapter.Adapter = (*Model)(nil)

// New returns an unloaded model, ready for Load.
func New() *Model {
	return linear.New()
}

// FromWeights returns a model with the given float64 parameters.
// A nil bias means zero bias.
func FromWeights(weight, bias *tensor.RawTensor) (*Model, error) {
	return linear.FromWeights(weight, bias)
}
