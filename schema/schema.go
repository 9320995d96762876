// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package schema declares the structure of arrays a model accepts or produces.
//
// # Overview
//
// A Schema is an ordered list of named axes plus an element type and an
// optional value range. Each axis is one of:
//   - Fixed: only one size is accepted
//   - Symbolic: the size is free but must agree with every other axis bound
//     to the same symbol within one validation session
//   - Free: any size
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/contract/schema"
//	    "github.com/born-ml/contract/tensor"
//	)
//
//	in, _ := schema.New("features", tensor.Float32, []schema.Axis{
//	    schema.Symbolic("batch"),
//	    schema.Fixed("features", 10),
//	})
//	out, _ := schema.New("scores", tensor.Float32, []schema.Axis{
//	    schema.Symbolic("batch"),
//	    schema.Fixed("classes", 3),
//	}, schema.WithRange(schema.Between(0, 1)))
//
//	sess := schema.NewSession()
//	v, err := in.Validate(sess, raw) // binds "batch"
//
// Validation errors match schema.ErrContract.
package schema

import (
	"github.com/born-ml/contract/internal/schema"
	"github.com/born-ml/contract/tensor"
)

// Schema is an immutable array contract.
type Schema = schema.Schema

// Axis describes one dimension of a schema.
type Axis = schema.Axis

// Range is an inclusive value range.
type Range = schema.Range

// Option configures a Schema at construction time.
type Option = schema.Option

// Session holds the symbol bindings of one validation chain.
type Session = schema.Session

// ValidatedArray is an array that passed Validate. Only Validate creates one.
type ValidatedArray = schema.ValidatedArray

// Descriptor is the serializable form of a Schema.
type Descriptor = schema.Descriptor

// RangeDescriptor is the serializable form of a Range.
type RangeDescriptor = schema.RangeDescriptor

// Validation errors. All of them match ErrContract.
type (
	ShapeMismatchError = schema.ShapeMismatchError
	DTypeMismatchError = schema.DTypeMismatchError
	RangeError         = schema.RangeError
)

// Sentinel errors.
var (
	ErrContract      = schema.ErrContract
	ErrInvalidSchema = schema.ErrInvalidSchema
)

// New builds a Schema and checks that it is well formed.
func New(name string, dtype tensor.DataType, axes []Axis, opts ...Option) (*Schema, error) {
	return schema.New(name, dtype, axes, opts...)
}

// Fixed returns an axis that only accepts the given size.
func Fixed(name string, size int) Axis { return schema.Fixed(name, size) }

// Symbolic returns an axis bound to a symbol of the same name.
func Symbolic(name string) Axis { return schema.Symbolic(name) }

// SymbolicAs returns an axis bound to the given symbol.
func SymbolicAs(name, symbol string) Axis { return schema.SymbolicAs(name, symbol) }

// Free returns an axis that accepts any size.
func Free(name string) Axis { return schema.Free(name) }

// Between returns the range [minValue, maxValue].
func Between(minValue, maxValue float64) Range { return schema.Between(minValue, maxValue) }

// AtLeast returns the range [minValue, +Inf].
func AtLeast(minValue float64) Range { return schema.AtLeast(minValue) }

// AtMost returns the range [-Inf, maxValue].
func AtMost(maxValue float64) Range { return schema.AtMost(maxValue) }

// WithRange constrains every element to r.
func WithRange(r Range) Option { return schema.WithRange(r) }

// NewSession returns a session with no bindings.
func NewSession() *Session { return schema.NewSession() }

// FromDescriptor rebuilds a Schema from its serializable form.
func FromDescriptor(d Descriptor) (*Schema, error) { return schema.FromDescriptor(d) }
