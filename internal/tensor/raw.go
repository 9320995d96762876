package tensor

import (
	"bytes"
	"fmt"
	"math"
	"unsafe"
)

// RawTensor is the low-level, untyped array representation.
// Data is stored contiguously in row-major order in native byte order.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int
	dtype  DataType
}

// NewRaw creates a new zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("invalid data type %d", int(dtype))
	}
	size := dtype.Size()
	for _, dim := range shape {
		if size > math.MaxInt/dim {
			return nil, fmt.Errorf("shape %v of %s overflows the address space", shape, dtype)
		}
		size *= dim
	}

	return &RawTensor{
		data:   make([]byte, size),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromSlice creates a RawTensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	copy(view[T](raw), data)
	return raw, nil
}

// FromBytes creates a RawTensor from raw bytes in native byte order.
// The bytes are copied.
func FromBytes(data []byte, shape Shape, dtype DataType) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.data) {
		return nil, fmt.Errorf("shape %v of %s requires %d bytes, but got %d", shape, dtype, len(raw.data), len(data))
	}
	copy(raw.data, data)
	return raw, nil
}

// ToSlice copies the tensor contents into a new typed slice.
// Returns an error if T does not match the tensor's dtype.
func ToSlice[T DType](r *RawTensor) ([]T, error) {
	var dummy T
	if dt := inferDataType(dummy); dt != r.dtype {
		return nil, fmt.Errorf("tensor dtype is %s, not %s", r.dtype, dt)
	}
	out := make([]T, r.NumElements())
	copy(out, view[T](r))
	return out, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustBe(Float32)
	return view[float32](r)
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	r.mustBe(Float64)
	return view[float64](r)
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	r.mustBe(Int32)
	return view[int32](r)
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	r.mustBe(Int64)
	return view[int64](r)
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	r.mustBe(Uint8)
	return r.data
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	r.mustBe(Bool)
	return view[bool](r)
}

// Float64At returns element i (flat, row-major) widened to float64.
// Bool elements read as 0 or 1.
func (r *RawTensor) Float64At(i int) float64 {
	switch r.dtype {
	case Float32:
		return float64(view[float32](r)[i])
	case Float64:
		return view[float64](r)[i]
	case Int32:
		return float64(view[int32](r)[i])
	case Int64:
		return float64(view[int64](r)[i])
	case Uint8:
		return float64(r.data[i])
	case Bool:
		if view[bool](r)[i] {
			return 1
		}
		return 0
	default:
		panic("unknown data type")
	}
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	return &RawTensor{
		data:   bytes.Clone(r.data),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
	}
}

// Equal reports whether two tensors have the same dtype, shape and bytes.
func (r *RawTensor) Equal(other *RawTensor) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.dtype == other.dtype && r.shape.Equal(other.shape) && bytes.Equal(r.data, other.data)
}

// String returns a short description such as "float32[4 10]".
func (r *RawTensor) String() string {
	return fmt.Sprintf("%s%v", r.dtype, []int(r.shape))
}

func (r *RawTensor) mustBe(dt DataType) {
	if r.dtype != dt {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dt))
	}
}

// view reinterprets the tensor bytes as []T without copying.
// Shapes always have at least one element, so data[0] exists.
func view[T DType](r *RawTensor) []T {
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&r.data[0])), r.NumElements())
}
