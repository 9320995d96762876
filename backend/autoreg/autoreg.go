// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autoreg provides a vector autoregressive forecasting backend.
//
// The backend differences the input series once, forecasts the differences
// with a VAR(p) model and integrates them back onto the last observed level,
// scaled by a drift factor. Output is [steps, series].
package autoreg

import (
	"github.com/born-ml/contract/adapter"
	"github.com/born-ml/contract/internal/backends/autoreg"
	"github.com/born-ml/contract/tensor"
)

// Variant is the registry name of the backend.
const Variant = autoreg.Variant

// Defaults.
const (
	DefaultSteps = autoreg.DefaultSteps
	DefaultDrift = autoreg.DefaultDrift
)

// Model is a VAR forecaster.
type Model = autoreg.Model

// Option configures a Model.
type Option = autoreg.Option

// Compile-time check that Model implements adapter.Adapter.
var _ adapter.Adapter = (*Model)(nil)

// WithSteps sets the forecast horizon.
func WithSteps(n int) Option { return autoreg.WithSteps(n) }

// WithDrift sets the factor applied to every forecast difference.
func WithDrift(f float64) Option { return autoreg.WithDrift(f) }

// WithRounding toggles rounding of forecast levels to integers.
func WithRounding(on bool) Option { return autoreg.WithRounding(on) }

// New returns an unloaded model, ready for Load.
func New(opts ...Option) *Model { return autoreg.New(opts...) }

// FromCoefficients returns a model with float64 coefficients of shape
// [lags, series, series].
func FromCoefficients(coef *tensor.RawTensor, opts ...Option) (*Model, error) {
	return autoreg.FromCoefficients(coef, opts...)
}
