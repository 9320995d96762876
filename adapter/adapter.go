// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package adapter defines the interface between contracted models and the
// computational backends behind them.
//
// Backends implement Adapter and register a constructor under their variant
// name so envelopes can restore them:
//
//	func init() {
//	    adapter.Default.MustRegister("mybackend", func() adapter.Adapter { return New() })
//	}
//
// Importing this package registers the bundled backends (linear, autoreg).
package adapter

import (
	"context"

	"github.com/born-ml/contract/internal/adapter"
	"github.com/born-ml/contract/schema"
	"github.com/born-ml/contract/tensor"

	_ "github.com/born-ml/contract/internal/backends/autoreg" // registers "autoreg"
	_ "github.com/born-ml/contract/internal/backends/linear"  // registers "linear"
)

// Adapter is a computational backend with a uniform prediction interface.
type Adapter = adapter.Adapter

// Parameter is one tunable or inspectable value of an adapter.
type Parameter = adapter.Parameter

// Relevance ranks parameters for display.
type Relevance = adapter.Relevance

// Relevance levels.
const (
	Core       = adapter.Core
	Tuning     = adapter.Tuning
	Diagnostic = adapter.Diagnostic
)

// Error is a backend failure. It matches ErrAdapter.
type Error = adapter.Error

// Registry maps variant names to constructors.
type Registry = adapter.Registry

// Constructor returns a fresh, unloaded adapter.
type Constructor = adapter.Constructor

// Sentinel errors.
var (
	ErrAdapter          = adapter.ErrAdapter
	ErrUnknownVariant   = adapter.ErrUnknownVariant
	ErrDuplicateVariant = adapter.ErrDuplicateVariant
	ErrNotLoaded        = adapter.ErrNotLoaded
)

// Default is the registry envelopes use unless told otherwise.
var Default = adapter.Default

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return adapter.NewRegistry() }

// Register adds a constructor to Default.
func Register(variant string, ctor Constructor) error { return adapter.Register(variant, ctor) }

// Filter returns the parameters with one of the given relevance levels,
// or the core parameters when no level is given.
func Filter(params map[string]Parameter, levels ...Relevance) map[string]Parameter {
	return adapter.Filter(params, levels...)
}

// Names returns the sorted parameter names.
func Names(params map[string]Parameter) []string { return adapter.Names(params) }

// Invoke calls a.Predict, converting panics and nil outputs into *Error.
func Invoke(ctx context.Context, a Adapter, in schema.ValidatedArray) (*tensor.RawTensor, error) {
	return adapter.Invoke(ctx, a, in)
}

// Wrap returns err as an *Error for variant.
func Wrap(variant string, err error) error { return adapter.Wrap(variant, err) }
