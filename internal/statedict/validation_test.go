package statedict

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/contract/internal/tensor"
)

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantType string
	}{
		{
			name: "adjacent regions",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 100, Size: 100},
			},
			dataSize: 200,
		},
		{
			name: "overlap by one byte",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantType: "offset_overlap",
		},
		{
			name:     "out of bounds",
			tensors:  []TensorMeta{{Name: "a", Offset: 150, Size: 100}},
			dataSize: 200,
			wantType: "out_of_bounds",
		},
		{
			name:     "offset overflows",
			tensors:  []TensorMeta{{Name: "a", Offset: 1<<63 - 8, Size: 16}},
			dataSize: 200,
			wantType: "out_of_bounds",
		},
		{
			name:     "negative offset",
			tensors:  []TensorMeta{{Name: "a", Offset: -1, Size: 1}},
			dataSize: 200,
			wantType: "negative_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantType, ve.Type)
		})
	}
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name     string
		meta     TensorMeta
		wantType string
	}{
		{"ok", TensorMeta{Name: "w", DType: tensor.Float32, Shape: []int{2, 2}, Size: 16}, ""},
		{"size mismatch", TensorMeta{Name: "w", DType: tensor.Float32, Shape: []int{2, 2}, Size: 12}, "size_mismatch"},
		{"zero dim", TensorMeta{Name: "w", DType: tensor.Float32, Shape: []int{0}, Size: 0}, "invalid_shape"},
		{"bad dtype", TensorMeta{Name: "w", DType: tensor.DataType(77), Shape: []int{1}, Size: 1}, "invalid_dtype"},
		{"bad name", TensorMeta{Name: "a/b", DType: tensor.Float32, Shape: []int{1}, Size: 4}, "invalid_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(&Header{Tensors: []TensorMeta{tt.meta}}, 64)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantType, ve.Type)
		})
	}

	dup := &Header{Tensors: []TensorMeta{
		{Name: "w", DType: tensor.Uint8, Shape: []int{1}, Offset: 0, Size: 1},
		{Name: "w", DType: tensor.Uint8, Shape: []int{1}, Offset: 1, Size: 1},
	}}
	var ve *ValidationError
	require.True(t, errors.As(ValidateHeader(dup, 2), &ve))
	assert.Equal(t, "duplicate_name", ve.Type)
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, `offset_overlap: tensors "a" and "b": x`,
		(&ValidationError{Type: "offset_overlap", Tensor: "a", Tensor2: "b", Details: "x"}).Error())
	assert.Equal(t, `invalid_name: tensor "a": x`,
		(&ValidationError{Type: "invalid_name", Tensor: "a", Details: "x"}).Error())
	assert.Equal(t, "too_many_tensors: x", (&ValidationError{Type: "too_many_tensors", Details: "x"}).Error())
}
