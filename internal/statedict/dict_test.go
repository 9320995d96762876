package statedict

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/contract/internal/tensor"
)

func sample(t *testing.T) *Dict {
	t.Helper()
	w, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float64{-1, 1}, tensor.Shape{2})
	require.NoError(t, err)
	steps, err := tensor.FromSlice([]int64{3}, tensor.Shape{1})
	require.NoError(t, err)

	d := New("linear")
	d.Set("weight", w)
	d.Set("bias", b)
	d.Set("steps", steps)
	d.Metadata["note"] = "sample"
	return d
}

func TestRoundTrip(t *testing.T) {
	d := sample(t)
	data, err := d.MarshalBinary()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "linear", got.ModelType)
	assert.Equal(t, map[string]string{"note": "sample"}, got.Metadata)
	assert.Equal(t, []string{"bias", "steps", "weight"}, got.Names())
	for name, want := range d.Tensors {
		assert.True(t, want.Equal(got.Tensors[name]), "tensor %s", name)
	}

	var viaUnmarshal Dict
	require.NoError(t, viaUnmarshal.UnmarshalBinary(data))
	assert.Equal(t, got.Names(), viaUnmarshal.Names())
}

func TestEncodingIsDeterministic(t *testing.T) {
	a := sample(t)

	b := New("linear")
	b.Metadata["note"] = "sample"
	for _, name := range []string{"steps", "weight", "bias"} {
		b.Set(name, a.Tensors[name].Clone())
	}

	ea, err := a.MarshalBinary()
	require.NoError(t, err)
	eb, err := b.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, ea, eb)

	again, err := Decode(ea)
	require.NoError(t, err)
	ec, err := again.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, ea, ec, "decode then encode must reproduce the bytes")
}

func TestLayout(t *testing.T) {
	data, err := sample(t).MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, MagicBytes, string(data[0:4]))
	assert.Equal(t, uint32(FormatVersion), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, FlagHasMetadata, binary.LittleEndian.Uint32(data[8:12]))

	headerSize := int(binary.LittleEndian.Uint64(data[12:20]))
	dataStart := prefixSize + headerSize
	dataStart += int(padding(int64(dataStart)))
	assert.Zero(t, dataStart%HeaderAlignment)
	assert.Equal(t, dataStart+8*2+8*1+8*6, len(data))
}

func TestEmptyDict(t *testing.T) {
	data, err := New("empty").MarshalBinary()
	require.NoError(t, err)
	assert.Zero(t, binary.LittleEndian.Uint32(data[8:12]), "no metadata flag")

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, got.Tensors)
	assert.Equal(t, "empty", got.ModelType)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	valid, err := sample(t).MarshalBinary()
	require.NoError(t, err)

	mutate := func(f func([]byte) []byte) []byte {
		c := make([]byte, len(valid))
		copy(c, valid)
		return f(c)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncated},
		{"bad magic", mutate(func(b []byte) []byte { copy(b, "NOPE"); return b }), ErrInvalidMagic},
		{"future version", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:8], 9); return b }), ErrUnsupportedVersion},
		{"huge header", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[12:20], MaxHeaderSize+1); return b }), ErrHeaderTooLarge},
		{"truncated header", valid[:prefixSize+4], ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("truncated data", func(t *testing.T) {
		_, err := Decode(valid[:len(valid)-1])
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "out_of_bounds", ve.Type)
	})

	t.Run("overflowing shape", func(t *testing.T) {
		data := encodeHeader(t, Header{
			FormatVersion: FormatVersion,
			ModelType:     "autoreg",
			Tensors: []TensorMeta{
				{Name: "coefficients", DType: tensor.Float64, Shape: []int{1 << 60, 4, 4}, Size: 0},
			},
		})
		_, err := Decode(data)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "invalid_shape", ve.Type)
	})

	t.Run("shape larger than data", func(t *testing.T) {
		data := encodeHeader(t, Header{
			FormatVersion: FormatVersion,
			ModelType:     "linear",
			Tensors: []TensorMeta{
				{Name: "weight", DType: tensor.Float64, Shape: []int{1 << 20}, Size: 8 << 20},
			},
		})
		_, err := Decode(data)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "out_of_bounds", ve.Type)
	})
}

// encodeHeader frames h with no tensor data.
func encodeHeader(t *testing.T, h Header) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(h)
	require.NoError(t, err)

	data := []byte(MagicBytes)
	data = binary.LittleEndian.AppendUint32(data, FormatVersion)
	data = binary.LittleEndian.AppendUint32(data, 0)
	data = binary.LittleEndian.AppendUint64(data, uint64(len(headerJSON)))
	data = append(data, headerJSON...)
	return append(data, make([]byte, padding(int64(len(data))))...)
}

func TestGet(t *testing.T) {
	d := sample(t)

	w, err := d.Get("weight", tensor.Float64)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, w.Shape())

	_, err = d.Get("missing", tensor.Float64)
	assert.ErrorIs(t, err, ErrMissingTensor)

	_, err = d.Get("steps", tensor.Float64)
	assert.Error(t, err)
}

func TestMarshalRejectsBadNames(t *testing.T) {
	raw, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)

	for _, name := range []string{"../etc", "a/b", "nul\x00", ""} {
		d := New("x")
		d.Set(name, raw)
		_, err := d.MarshalBinary()
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), "name %q", name)
	}
}
