// Package envelope saves and loads contracted models.
//
// An envelope carries the adapter variant, the model id, both schemas, free
// form metadata and the adapter state. Format v2 (current):
//
//	[0x00-0x03: Magic "BCTR"]
//	[0x04-0x07: Version (uint32 LE)]
//	[0x08-0x0B: Flags (uint32 LE)]
//	[0x0C-0x0F: Reserved]
//	[0x10-0x17: Header Size (uint64 LE)]
//	[0x18-0x1F: State Size (uint64 LE)]
//	[0x20-0x3F: SHA-256 of header and state]
//	[0x40: Header JSON]
//	[Padding to 64-byte boundary]
//	[Adapter state]
//
// Format v1 has no checksum and no state size:
//
//	[Magic "BCTR"][Version][Flags][Header Size (uint64 LE)]
//	[Header JSON][Padding to 64-byte boundary][Adapter state to end]
package envelope

import (
	"github.com/google/uuid"

	"github.com/born-ml/contract/internal/schema"
)

// Format constants.
const (
	MagicBytes        = "BCTR"
	FormatVersionV1   = 1
	FormatVersionV2   = 2
	FormatVersion     = FormatVersionV2 // written by default
	HeaderAlignment   = 64
	FixedHeaderSizeV2 = 64
	ChecksumOffsetV2  = 0x20
	ChecksumSize      = 32
	prefixSizeV1      = 4 + 4 + 4 + 8 // magic + version + flags + header size
)

// Limits applied when reading.
const (
	MaxHeaderSize = 100 * 1024 * 1024 // 100MB, as for .born files
)

// Flags.
const (
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
)

// Header is the JSON header of an envelope.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	AdapterVariant string            `json:"adapter_variant"`
	ModelID        uuid.UUID         `json:"model_id"`
	InputSchema    schema.Descriptor `json:"input_schema"`
	OutputSchema   schema.Descriptor `json:"output_schema"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

func padding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
