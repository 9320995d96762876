package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTensorAsInt64(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Int64)
	require.NoError(t, err)
	data := raw.AsInt64()

	if len(data) != 6 {
		t.Errorf("AsInt64 length = %d, want 6", len(data))
	}

	// Modify and verify zero-copy
	data[0] = 42
	if raw.AsInt64()[0] != 42 {
		t.Error("AsInt64 should return zero-copy slice")
	}
}

func TestRawTensorAsBool(t *testing.T) {
	raw, err := NewRaw(Shape{2, 2}, Bool)
	require.NoError(t, err)
	data := raw.AsBool()

	assert.Len(t, data, 4)
	data[0] = true
	assert.True(t, raw.AsBool()[0], "AsBool should return zero-copy slice")
}

func TestRawTensorWrongViewPanics(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Float32)
	require.NoError(t, err)
	assert.Panics(t, func() { raw.AsFloat64() })
}

func TestNewRawRejectsInvalidInput(t *testing.T) {
	_, err := NewRaw(Shape{2, 0}, Float32)
	assert.Error(t, err)

	_, err = NewRaw(Shape{2}, DataType(99))
	assert.Error(t, err)

	_, err = NewRaw(Shape{1 << 60, 4, 4}, Float64)
	assert.Error(t, err, "element count overflows")

	_, err = FromBytes(nil, Shape{1 << 60, 4, 4}, Float64)
	assert.Error(t, err)
}

func TestFromSliceAndToSlice(t *testing.T) {
	raw, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, Float32, raw.DType())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, "float32[2 3]", raw.String())

	values, err := ToSlice[float32](raw)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, values)

	_, err = ToSlice[int32](raw)
	assert.Error(t, err)

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)
}

func TestFromBytes(t *testing.T) {
	src, err := FromSlice([]int32{7, 8}, Shape{2})
	require.NoError(t, err)

	raw, err := FromBytes(src.Data(), Shape{2}, Int32)
	require.NoError(t, err)
	assert.True(t, raw.Equal(src))

	_, err = FromBytes(src.Data(), Shape{3}, Int32)
	assert.Error(t, err)
}

func TestRawTensorCloneIsDeep(t *testing.T) {
	raw, err := FromSlice([]float64{1, 2}, Shape{2})
	require.NoError(t, err)

	clone := raw.Clone()
	require.True(t, clone.Equal(raw))

	clone.AsFloat64()[0] = 99
	assert.Equal(t, 1.0, raw.AsFloat64()[0])
	assert.False(t, clone.Equal(raw))
}

func TestRawTensorEqual(t *testing.T) {
	a, _ := FromSlice([]int32{1, 2, 3, 4}, Shape{2, 2})
	b, _ := FromSlice([]int32{1, 2, 3, 4}, Shape{4})
	c, _ := FromSlice([]int64{1, 2}, Shape{2})

	assert.False(t, a.Equal(b), "different shapes")
	assert.False(t, a.Equal(c), "different dtypes")
	assert.True(t, a.Equal(a.Clone()))

	var nilRaw *RawTensor
	assert.True(t, nilRaw.Equal(nil))
	assert.False(t, a.Equal(nil))
}

func TestFloat64At(t *testing.T) {
	tests := []struct {
		name string
		raw  func() (*RawTensor, error)
		want float64
	}{
		{"float32", func() (*RawTensor, error) { return FromSlice([]float32{0, 1.5}, Shape{2}) }, 1.5},
		{"float64", func() (*RawTensor, error) { return FromSlice([]float64{0, math.Pi}, Shape{2}) }, math.Pi},
		{"int32", func() (*RawTensor, error) { return FromSlice([]int32{0, -7}, Shape{2}) }, -7},
		{"int64", func() (*RawTensor, error) { return FromSlice([]int64{0, 1 << 40}, Shape{2}) }, 1 << 40},
		{"uint8", func() (*RawTensor, error) { return FromSlice([]uint8{0, 200}, Shape{2}) }, 200},
		{"bool", func() (*RawTensor, error) { return FromSlice([]bool{false, true}, Shape{2}) }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.raw()
			require.NoError(t, err)
			assert.Equal(t, tt.want, raw.Float64At(1))
		})
	}
}
