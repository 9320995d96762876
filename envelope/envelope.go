// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package envelope saves and loads contracted models.
//
// An envelope stores the adapter variant, the model id, both schemas,
// metadata and the adapter state, protected by a SHA-256 checksum.
//
// # Basic Usage
//
//	data, err := envelope.Save(m, envelope.WithMetadata(map[string]string{"owner": "risk"}))
//	m2, err := envelope.Load(data)
//
//	err = envelope.SaveFile("model.bctr", m)
//	m3, err := envelope.LoadFile("model.bctr")
//
// Load resolves the adapter variant in adapter.Default unless WithRegistry
// is given. Every decoding error matches ErrSerialization.
package envelope

import (
	"log/slog"

	"github.com/born-ml/contract/adapter"
	"github.com/born-ml/contract/contract"
	"github.com/born-ml/contract/internal/envelope"
)

// Format versions.
const (
	FormatVersionV1 = envelope.FormatVersionV1
	FormatVersionV2 = envelope.FormatVersionV2
	FormatVersion   = envelope.FormatVersion
)

// Header is the JSON header of an envelope.
type Header = envelope.Header

// Option configures Save and Load.
type Option = envelope.Option

// Errors.
type (
	VersionError         = envelope.VersionError
	UnknownVariantError  = envelope.UnknownVariantError
	CorruptEnvelopeError = envelope.CorruptEnvelopeError
	FileError            = envelope.FileError
)

// ErrSerialization is matched by every envelope decoding error.
var ErrSerialization = envelope.ErrSerialization

// Save encodes m with its adapter state.
func Save(m *contract.Model, opts ...Option) ([]byte, error) {
	return envelope.Save(m, opts...)
}

// Load decodes an envelope and restores its model.
func Load(data []byte, opts ...Option) (*contract.Model, error) {
	return envelope.Load(data, opts...)
}

// ReadHeader decodes and verifies an envelope without restoring the model.
func ReadHeader(data []byte) (Header, error) {
	return envelope.ReadHeader(data)
}

// SaveFile writes m to path. The parent directory must exist.
func SaveFile(path string, m *contract.Model, opts ...Option) error {
	return envelope.SaveFile(path, m, opts...)
}

// LoadFile reads the envelope at path.
func LoadFile(path string, opts ...Option) (*contract.Model, error) {
	return envelope.LoadFile(path, opts...)
}

// WithFormatVersion selects the format Save writes.
func WithFormatVersion(v int) Option { return envelope.WithFormatVersion(v) }

// WithMetadata attaches string metadata to the saved envelope.
func WithMetadata(md map[string]string) Option { return envelope.WithMetadata(md) }

// WithRegistry resolves adapter variants in r.
func WithRegistry(r *adapter.Registry) Option { return envelope.WithRegistry(r) }

// WithModelOptions passes options to contract.New when loading.
func WithModelOptions(opts ...contract.Option) Option { return envelope.WithModelOptions(opts...) }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return envelope.WithLogger(l) }
