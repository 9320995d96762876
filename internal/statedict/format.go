// Package statedict encodes named tensors into a self-describing byte blob.
//
// Backends use it to implement State and Load. The layout follows the .born
// v1 container:
//
//	[4 bytes: Magic "BORN"]
//	[4 bytes: Version (uint32 LE)]
//	[4 bytes: Flags (uint32 LE)]
//	[8 bytes: Header Size (uint64 LE)]
//	[Header: JSON metadata]
//	[Padding to 64-byte boundary]
//	[Tensor data: raw bytes in name order]
//
// Encoding is deterministic: tensors are laid out in sorted name order and
// the header carries no timestamps, so equal dicts encode to equal bytes.
package statedict

import (
	"github.com/born-ml/contract/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 1
	HeaderAlignment = 64
	prefixSize      = 4 + 4 + 4 + 8 // magic + version + flags + header size
)

// Flags.
const (
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
)

// Header is the JSON header of an encoded dict.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string          `json:"name"`
	DType  tensor.DataType `json:"dtype"`
	Shape  []int           `json:"shape"`
	Offset int64           `json:"offset"` // bytes from start of tensor data
	Size   int64           `json:"size"`
}

func padding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
