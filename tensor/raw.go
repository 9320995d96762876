// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/contract/internal/tensor"
)

// RawTensor is a dense array with a shape and an element type.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), NumElements()
//   - Typed views via AsFloat32(), AsInt64(), etc.
//   - Deep copies via Clone()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32()
//	clone := raw.Clone()
type RawTensor = tensor.RawTensor

// Shape is the size of each dimension, outermost first.
type Shape = tensor.Shape

// DataType identifies an element type.
type DataType = tensor.DataType

// DType constrains the Go element types a tensor can hold.
type DType = tensor.DType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
)

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromBytes copies little-endian element bytes into a new tensor.
func FromBytes(data []byte, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.FromBytes(data, shape, dtype)
}

// ToSlice returns a copy of the elements of r as []T.
func ToSlice[T DType](r *RawTensor) ([]T, error) {
	return tensor.ToSlice[T](r)
}

// ParseDataType parses a data type name such as "float32".
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}

// CanCast reports whether every value of from is exactly representable in to.
func CanCast(from, to DataType) bool {
	return tensor.CanCast(from, to)
}

// Cast converts r to the given data type. Lossy conversions fail.
func Cast(r *RawTensor, to DataType) (*RawTensor, error) {
	return tensor.Cast(r, to)
}
