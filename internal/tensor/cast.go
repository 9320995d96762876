package tensor

import "fmt"

// safeCasts lists, per source type, the targets that represent every source
// value exactly. Anything else may lose information.
var safeCasts = map[DataType][]DataType{
	Bool:    {Uint8, Int32, Int64, Float32, Float64},
	Uint8:   {Int32, Int64, Float32, Float64},
	Int32:   {Int64, Float64},
	Int64:   nil,
	Float32: {Float64},
	Float64: nil,
}

// CanCast reports whether every value of type from is exactly representable in to.
// Identity casts are always safe.
func CanCast(from, to DataType) bool {
	if from == to {
		return true
	}
	for _, dt := range safeCasts[from] {
		if dt == to {
			return true
		}
	}
	return false
}

// Cast converts r to dtype to. It returns r itself when the types already
// match and an error when the conversion is not safe.
func Cast(r *RawTensor, to DataType) (*RawTensor, error) {
	if r.dtype == to {
		return r, nil
	}
	if !CanCast(r.dtype, to) {
		return nil, fmt.Errorf("cannot cast %s to %s without loss", r.dtype, to)
	}

	out, err := NewRaw(r.shape, to)
	if err != nil {
		return nil, err
	}

	switch to {
	case Uint8:
		convert(out.AsUint8(), r)
	case Int32:
		convert(out.AsInt32(), r)
	case Int64:
		convert(out.AsInt64(), r)
	case Float32:
		convert(out.AsFloat32(), r)
	case Float64:
		convert(out.AsFloat64(), r)
	default:
		return nil, fmt.Errorf("cannot cast %s to %s", r.dtype, to)
	}
	return out, nil
}

type numeric interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

func convert[T numeric](dst []T, src *RawTensor) {
	switch src.dtype {
	case Bool:
		for i, v := range src.AsBool() {
			if v {
				dst[i] = 1
			}
		}
	case Uint8:
		for i, v := range src.AsUint8() {
			dst[i] = T(v)
		}
	case Int32:
		for i, v := range src.AsInt32() {
			dst[i] = T(v)
		}
	case Float32:
		for i, v := range src.AsFloat32() {
			dst[i] = T(v)
		}
	default:
		panic(fmt.Sprintf("unexpected cast source %s", src.dtype))
	}
}
