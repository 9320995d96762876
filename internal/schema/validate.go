package schema

import (
	"fmt"

	"github.com/born-ml/contract/internal/tensor"
)

// Session scopes symbolic axis bindings to one validation call chain.
//
// Input validation binds symbols that output validation may reference, so a
// schema pair can require e.g. that batch size agrees across a prediction.
// A Session is not safe for concurrent use.
type Session struct {
	bindings map[string]int
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{bindings: make(map[string]int)}
}

// Lookup returns the size bound to symbol.
func (s *Session) Lookup(symbol string) (int, bool) {
	size, ok := s.bindings[symbol]
	return size, ok
}

// Bindings returns a copy of all bound symbols.
func (s *Session) Bindings() map[string]int {
	out := make(map[string]int, len(s.bindings))
	for k, v := range s.bindings {
		out[k] = v
	}
	return out
}

// ValidatedArray is an array known to conform to a Schema.
// It can only be produced by Schema.Validate.
type ValidatedArray struct {
	raw    *tensor.RawTensor
	schema *Schema
}

// Raw returns the underlying array. It must not be modified.
func (v ValidatedArray) Raw() *tensor.RawTensor { return v.raw }

// Schema returns the schema the array was validated against.
func (v ValidatedArray) Schema() *Schema { return v.schema }

// Shape returns the array shape.
func (v ValidatedArray) Shape() tensor.Shape { return v.raw.Shape() }

// DType returns the array element type (always the schema dtype).
func (v ValidatedArray) DType() tensor.DataType { return v.raw.DType() }

// ByteSize returns the size of the array data in bytes.
func (v ValidatedArray) ByteSize() int { return v.raw.ByteSize() }

// IsZero reports whether v is the zero value.
func (v ValidatedArray) IsZero() bool { return v.raw == nil }

// Check validates raw in a fresh session.
func (s *Schema) Check(raw *tensor.RawTensor) (ValidatedArray, error) {
	return s.Validate(NewSession(), raw)
}

// Validate checks raw against the schema, coercing its element type when a
// lossless conversion exists. Symbol bindings are committed to sess only when
// validation succeeds. A nil sess behaves like a fresh session.
//
// The returned array shares memory with raw unless a conversion was needed.
func (s *Schema) Validate(sess *Session, raw *tensor.RawTensor) (ValidatedArray, error) {
	if sess == nil {
		sess = NewSession()
	}
	if raw == nil {
		return ValidatedArray{}, fmt.Errorf("schema %q: nil array: %w", s.name, ErrContract)
	}

	staged, err := s.checkShape(sess, raw.Shape())
	if err != nil {
		return ValidatedArray{}, err
	}

	data := raw
	if raw.DType() != s.dtype {
		if !tensor.CanCast(raw.DType(), s.dtype) {
			return ValidatedArray{}, &DTypeMismatchError{Schema: s.name, Expected: s.dtype, Actual: raw.DType()}
		}
		if data, err = tensor.Cast(raw, s.dtype); err != nil {
			return ValidatedArray{}, fmt.Errorf("schema %q: %w", s.name, err)
		}
	}

	if err := s.checkRange(data); err != nil {
		return ValidatedArray{}, err
	}

	for symbol, size := range staged {
		sess.bindings[symbol] = size
	}
	return ValidatedArray{raw: data, schema: s}, nil
}

// checkShape verifies axis cardinalities and returns the new symbol bindings.
func (s *Schema) checkShape(sess *Session, shape tensor.Shape) (map[string]int, error) {
	if len(shape) != len(s.axes) {
		return nil, &ShapeMismatchError{Schema: s.name, Expected: len(s.axes), Actual: len(shape), Rank: true}
	}

	staged := make(map[string]int)
	for i, ax := range s.axes {
		actual := shape[i]
		switch {
		case ax.Size > 0:
			if actual != ax.Size {
				return nil, &ShapeMismatchError{Schema: s.name, Axis: ax.Name, Expected: ax.Size, Actual: actual}
			}
		case ax.Symbol != "":
			bound, ok := staged[ax.Symbol]
			if !ok {
				bound, ok = sess.bindings[ax.Symbol]
			}
			if !ok {
				staged[ax.Symbol] = actual
				continue
			}
			if actual != bound {
				return nil, &ShapeMismatchError{
					Schema: s.name, Axis: ax.Name, Symbol: ax.Symbol, Expected: bound, Actual: actual,
				}
			}
		}
	}
	return staged, nil
}

func (s *Schema) checkRange(data *tensor.RawTensor) error {
	if s.rng == nil {
		return nil
	}
	if data.DType() == tensor.Int64 {
		for i, v := range data.AsInt64() {
			if !s.rng.containsInt64(v) {
				return &RangeError{Schema: s.name, Index: data.Shape().Unravel(i), Value: float64(v), Range: *s.rng}
			}
		}
		return nil
	}

	n := data.NumElements()
	for i := 0; i < n; i++ {
		if v := data.Float64At(i); !s.rng.Contains(v) {
			return &RangeError{Schema: s.name, Index: data.Shape().Unravel(i), Value: v, Range: *s.rng}
		}
	}
	return nil
}
