// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense arrays exchanged with contracted models.
//
// # Overview
//
// A RawTensor is a contiguous, row-major buffer with a Shape and a DataType.
// Models receive and return RawTensors; schemas validate them.
//
// # Basic Usage
//
//	import "github.com/born-ml/contract/tensor"
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	if err != nil {
//	    return err
//	}
//	data := x.AsFloat32() // typed view, shares memory
//	y := x.Clone()        // independent copy
//
// # Supported Data Types
//
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for images)
//   - bool (boolean masks)
//
// # Conversions
//
// Cast converts between data types. CanCast reports whether a conversion is
// lossless; schemas only coerce inputs along lossless conversions.
package tensor
