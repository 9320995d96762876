package statedict

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/born-ml/contract/internal/tensor"
)

// Dict is a named set of tensors plus string metadata, tagged with the
// model type that produced it.
type Dict struct {
	ModelType string
	Tensors   map[string]*tensor.RawTensor
	Metadata  map[string]string
}

// New returns an empty dict for modelType.
func New(modelType string) *Dict {
	return &Dict{
		ModelType: modelType,
		Tensors:   make(map[string]*tensor.RawTensor),
		Metadata:  make(map[string]string),
	}
}

// Set stores raw under name.
func (d *Dict) Set(name string, raw *tensor.RawTensor) {
	d.Tensors[name] = raw
}

// Get returns the tensor stored under name, checking its dtype.
func (d *Dict) Get(name string, dtype tensor.DataType) (*tensor.RawTensor, error) {
	raw, ok := d.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTensor, name)
	}
	if raw.DType() != dtype {
		return nil, fmt.Errorf("tensor %q is %s, expected %s", name, raw.DType(), dtype)
	}
	return raw, nil
}

// Names returns the tensor names in encoding order.
func (d *Dict) Names() []string {
	names := make([]string, 0, len(d.Tensors))
	for name := range d.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalBinary encodes the dict.
func (d *Dict) MarshalBinary() ([]byte, error) {
	names := d.Names()

	header := Header{
		FormatVersion: FormatVersion,
		ModelType:     d.ModelType,
		Tensors:       make([]TensorMeta, 0, len(names)),
	}
	if len(d.Metadata) > 0 {
		header.Metadata = d.Metadata
	}

	var offset int64
	for _, name := range names {
		if err := ValidateTensorName(name); err != nil {
			return nil, err
		}
		raw := d.Tensors[name]
		if raw == nil {
			return nil, fmt.Errorf("tensor %q is nil", name)
		}
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  raw.DType(),
			Shape:  []int(raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	// encoding/json sorts map keys, so metadata order is stable.
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	pos := int64(prefixSize + len(headerJSON))
	pad := padding(pos)

	var buf bytes.Buffer
	buf.Grow(int(pos + pad + offset))
	buf.WriteString(MagicBytes)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(FormatVersion))
	_ = binary.Write(&buf, binary.LittleEndian, flags)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON)))
	buf.Write(headerJSON)
	buf.Write(make([]byte, pad))
	for _, name := range names {
		buf.Write(d.Tensors[name].Data())
	}
	return buf.Bytes(), nil
}

// Decode parses and validates an encoded dict. Tensor data is copied.
func Decode(data []byte) (*Dict, error) {
	if len(data) < prefixSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	if string(data[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(data[12:20])
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	end := int64(prefixSize) + int64(headerSize) //nolint:gosec // bounded by MaxHeaderSize
	if end > int64(len(data)) {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, end, len(data))
	}

	var header Header
	if err := json.Unmarshal(data[prefixSize:end], &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	dataOffset := end + padding(end)
	if dataOffset > int64(len(data)) {
		return nil, fmt.Errorf("%w: missing padding", ErrTruncated)
	}
	section := data[dataOffset:]

	if err := ValidateHeader(&header, int64(len(section))); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	d := New(header.ModelType)
	for k, v := range header.Metadata {
		d.Metadata[k] = v
	}
	for _, meta := range header.Tensors {
		raw, err := tensor.FromBytes(section[meta.Offset:meta.Offset+meta.Size], tensor.Shape(meta.Shape), meta.DType)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		d.Tensors[meta.Name] = raw
	}
	return d, nil
}

// UnmarshalBinary replaces d with the decoded contents of data.
func (d *Dict) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*d = *decoded
	return nil
}
