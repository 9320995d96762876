package schema

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/contract/internal/tensor"
)

func mustSchema(t *testing.T, name string, dtype tensor.DataType, axes []Axis, opts ...Option) *Schema {
	t.Helper()
	s, err := New(name, dtype, axes, opts...)
	require.NoError(t, err)
	return s
}

func featuresSchema(t *testing.T) *Schema {
	t.Helper()
	return mustSchema(t, "input", tensor.Float32, []Axis{Symbolic("batch"), Fixed("features", 10)})
}

func filled[T tensor.DType](t *testing.T, shape tensor.Shape, value T) *tensor.RawTensor {
	t.Helper()
	data := make([]T, shape.NumElements())
	for i := range data {
		data[i] = value
	}
	raw, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return raw
}

func TestNewRejectsMalformedSchemas(t *testing.T) {
	tests := []struct {
		name string
		axes []Axis
		opts []Option
	}{
		{"unnamed axis", []Axis{{Size: 3}}, nil},
		{"duplicate axis", []Axis{Fixed("x", 1), Fixed("x", 2)}, nil},
		{"negative size", []Axis{Fixed("x", -1)}, nil},
		{"fixed and symbolic", []Axis{{Name: "x", Size: 2, Symbol: "n"}}, nil},
		{"inverted range", []Axis{Fixed("x", 1)}, []Option{WithRange(Between(1, 0))}},
		{"nan range", []Axis{Fixed("x", 1)}, []Option{WithRange(Between(math.NaN(), 1))}},
		{"min at +inf", []Axis{Fixed("x", 1)}, []Option{WithRange(Between(math.Inf(1), math.Inf(1)))}},
		{"max at -inf", []Axis{Fixed("x", 1)}, []Option{WithRange(Between(math.Inf(-1), math.Inf(-1)))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("bad", tensor.Float32, tt.axes, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}

	_, err := New("bad", tensor.DataType(42), nil)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestValidateAcceptsConformingArray(t *testing.T) {
	s := featuresSchema(t)
	raw := filled[float32](t, tensor.Shape{4, 10}, 0.5)

	got, err := s.Check(raw)
	require.NoError(t, err)
	assert.Same(t, s, got.Schema())
	assert.True(t, got.Raw().Equal(raw), "validated data must equal input")
	assert.Same(t, raw, got.Raw(), "no copy when dtype already matches")
}

func TestValidateFixedAxisMismatch(t *testing.T) {
	s := featuresSchema(t)
	raw := filled[float32](t, tensor.Shape{4, 11}, 0)

	_, err := s.Check(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContract)

	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "features", shapeErr.Axis)
	assert.Equal(t, 10, shapeErr.Expected)
	assert.Equal(t, 11, shapeErr.Actual)
	assert.Contains(t, err.Error(), `axis "features": expected 10, got 11`)
}

func TestValidateRankMismatch(t *testing.T) {
	s := featuresSchema(t)
	raw := filled[float32](t, tensor.Shape{10}, 0)

	_, err := s.Check(raw)
	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.True(t, shapeErr.Rank)
	assert.Equal(t, 2, shapeErr.Expected)
	assert.Equal(t, 1, shapeErr.Actual)
}

func TestValidateNilArray(t *testing.T) {
	_, err := featuresSchema(t).Check(nil)
	assert.ErrorIs(t, err, ErrContract)
}

func TestSymbolBindingAcrossSchemas(t *testing.T) {
	in := featuresSchema(t)
	out := mustSchema(t, "output", tensor.Float32, []Axis{Symbolic("batch"), Fixed("classes", 3)})

	sess := NewSession()
	_, err := in.Validate(sess, filled[float32](t, tensor.Shape{4, 10}, 0))
	require.NoError(t, err)

	size, ok := sess.Lookup("batch")
	require.True(t, ok)
	assert.Equal(t, 4, size)

	_, err = out.Validate(sess, filled[float32](t, tensor.Shape{4, 3}, 0))
	require.NoError(t, err)

	_, err = out.Validate(sess, filled[float32](t, tensor.Shape{5, 3}, 0))
	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "batch", shapeErr.Axis)
	assert.Equal(t, "batch", shapeErr.Symbol)
	assert.Equal(t, 4, shapeErr.Expected)
	assert.Equal(t, 5, shapeErr.Actual)
}

func TestSymbolSharedWithinOneSchema(t *testing.T) {
	square := mustSchema(t, "square", tensor.Float64, []Axis{SymbolicAs("rows", "n"), SymbolicAs("cols", "n")})

	_, err := square.Check(filled[float64](t, tensor.Shape{3, 3}, 1))
	require.NoError(t, err)

	_, err = square.Check(filled[float64](t, tensor.Shape{3, 4}, 1))
	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "cols", shapeErr.Axis)
}

func TestFailedValidationDoesNotBindSymbols(t *testing.T) {
	s := featuresSchema(t)
	sess := NewSession()

	_, err := s.Validate(sess, filled[float32](t, tensor.Shape{4, 11}, 0))
	require.Error(t, err)

	_, ok := sess.Lookup("batch")
	assert.False(t, ok, "failed validation must not leak bindings")
}

func TestFreeAxisAcceptsAnySize(t *testing.T) {
	s := mustSchema(t, "seq", tensor.Int64, []Axis{Free("tokens")})
	for _, n := range []int{1, 7, 128} {
		_, err := s.Check(filled[int64](t, tensor.Shape{n}, 1))
		assert.NoError(t, err)
	}
}

func TestValidateCoercion(t *testing.T) {
	s := mustSchema(t, "wide", tensor.Float64, []Axis{Fixed("x", 3)})

	in, err := tensor.FromSlice([]float32{1.5, -2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	got, err := s.Check(in)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, got.DType())
	assert.Equal(t, []float64{1.5, -2, 3}, got.Raw().AsFloat64())
}

func TestValidateRejectsLossyCoercion(t *testing.T) {
	tests := []struct {
		name   string
		target tensor.DataType
		raw    func(t *testing.T) *tensor.RawTensor
	}{
		{"float64 to float32", tensor.Float32, func(t *testing.T) *tensor.RawTensor { return filled[float64](t, tensor.Shape{2}, 1) }},
		{"int64 to int32", tensor.Int32, func(t *testing.T) *tensor.RawTensor { return filled[int64](t, tensor.Shape{2}, 1) }},
		{"float32 to int64", tensor.Int64, func(t *testing.T) *tensor.RawTensor { return filled[float32](t, tensor.Shape{2}, 1) }},
		{"int32 to float32", tensor.Float32, func(t *testing.T) *tensor.RawTensor { return filled[int32](t, tensor.Shape{2}, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSchema(t, "narrow", tt.target, []Axis{Fixed("x", 2)})
			raw := tt.raw(t)

			_, err := s.Check(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrContract)

			var dtypeErr *DTypeMismatchError
			require.True(t, errors.As(err, &dtypeErr))
			assert.Equal(t, tt.target, dtypeErr.Expected)
			assert.Equal(t, raw.DType(), dtypeErr.Actual)
		})
	}
}

func TestValidateRange(t *testing.T) {
	s := mustSchema(t, "probs", tensor.Float32, []Axis{Fixed("x", 2), Fixed("y", 2)}, WithRange(Between(0, 1)))

	ok, _ := tensor.FromSlice([]float32{0, 0.25, 1, 0.5}, tensor.Shape{2, 2})
	_, err := s.Check(ok)
	require.NoError(t, err)

	bad, _ := tensor.FromSlice([]float32{0, 0.25, 1.5, 0.5}, tensor.Shape{2, 2})
	_, err = s.Check(bad)
	assert.ErrorIs(t, err, ErrContract)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, []int{1, 0}, rangeErr.Index)
	assert.Equal(t, 1.5, rangeErr.Value)

	nan, _ := tensor.FromSlice([]float32{0, float32(math.NaN()), 0, 0}, tensor.Shape{2, 2})
	_, err = s.Check(nan)
	assert.True(t, errors.As(err, &rangeErr), "NaN violates any declared range")
}

func TestOpenRanges(t *testing.T) {
	assert.True(t, AtLeast(0).Contains(math.MaxFloat64))
	assert.False(t, AtLeast(0).Contains(-1))
	assert.True(t, AtMost(0).Contains(-math.MaxFloat64))
	assert.False(t, AtMost(0).Contains(math.NaN()))
}

func TestInt64RangeIsExact(t *testing.T) {
	const top = 1 << 53
	s := mustSchema(t, "ids", tensor.Int64, []Axis{Fixed("n", 2)}, WithRange(Between(-top, top)))

	ok, err := tensor.FromSlice([]int64{-top, top}, tensor.Shape{2})
	require.NoError(t, err)
	_, err = s.Check(ok)
	require.NoError(t, err)

	over, err := tensor.FromSlice([]int64{0, top + 1}, tensor.Shape{2})
	require.NoError(t, err)
	_, err = s.Check(over)
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, []int{1}, rangeErr.Index)

	under, err := tensor.FromSlice([]int64{-top - 1, 0}, tensor.Shape{2})
	require.NoError(t, err)
	_, err = s.Check(under)
	assert.ErrorIs(t, err, ErrContract)

	tests := []struct {
		name string
		r    Range
		v    int64
		want bool
	}{
		{"fractional bounds", Between(-0.5, 2.5), 2, true},
		{"fractional upper excluded", Between(-0.5, 2.5), 3, false},
		{"unbounded", Between(math.Inf(-1), math.Inf(1)), math.MaxInt64, true},
		{"min int64", AtLeast(math.MinInt64), math.MinInt64, true},
		{"min above int64", AtLeast(1e19), math.MaxInt64, false},
		{"max below int64", AtMost(-1e19), math.MinInt64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.containsInt64(tt.v))
		})
	}
}

func TestSchemaEqual(t *testing.T) {
	a := featuresSchema(t)
	b := mustSchema(t, "renamed", tensor.Float32, []Axis{Symbolic("batch"), Fixed("features", 10)})
	c := mustSchema(t, "input", tensor.Float64, []Axis{Symbolic("batch"), Fixed("features", 10)})
	d := mustSchema(t, "input", tensor.Float32, []Axis{Symbolic("batch"), Fixed("features", 10)}, WithRange(AtLeast(0)))

	assert.True(t, a.Equal(b), "name does not participate")
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.True(t, d.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestSchemaString(t *testing.T) {
	s := mustSchema(t, "in", tensor.Float32,
		[]Axis{Symbolic("batch"), Fixed("features", 10), Free("extra"), SymbolicAs("t", "n")},
		WithRange(Between(0, 1)))
	assert.Equal(t, "in float32[batch:? features:10 extra:* t:n] in [0, 1]", s.String())
	assert.Equal(t, []string{"batch", "n"}, s.Symbols())
}

func TestDescriptorRoundTrip(t *testing.T) {
	s := mustSchema(t, "input", tensor.Float32,
		[]Axis{Symbolic("batch"), Fixed("features", 10)},
		WithRange(AtLeast(-1)))

	payload, err := json.Marshal(s.Descriptor())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"input","dtype":"float32","axes":[{"name":"batch","symbol":"batch"},{"name":"features","size":10}],"range":{"min":-1}}`,
		string(payload))

	var d Descriptor
	require.NoError(t, json.Unmarshal(payload, &d))
	if diff := cmp.Diff(s.Descriptor(), d); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}

	restored, err := FromDescriptor(d)
	require.NoError(t, err)
	assert.True(t, s.Equal(restored))
	assert.Equal(t, "input", restored.Name())
}

func TestDescriptorMarshalsEveryAcceptedRange(t *testing.T) {
	for _, r := range []Range{
		Between(math.Inf(-1), math.Inf(1)),
		AtLeast(0),
		AtMost(0),
		Between(-1, 1),
	} {
		s := mustSchema(t, "x", tensor.Float64, []Axis{Fixed("v", 1)}, WithRange(r))
		payload, err := json.Marshal(s.Descriptor())
		require.NoError(t, err, "range %s", r)

		var d Descriptor
		require.NoError(t, json.Unmarshal(payload, &d))
		restored, err := FromDescriptor(d)
		require.NoError(t, err)
		assert.True(t, s.Equal(restored), "range %s", r)
	}
}

func TestFromDescriptorRejectsInvalid(t *testing.T) {
	_, err := FromDescriptor(Descriptor{Name: "x", DType: tensor.Float32, Axes: []Axis{{Name: ""}}})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
