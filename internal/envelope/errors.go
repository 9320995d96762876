package envelope

import (
	"errors"
	"fmt"
)

// ErrSerialization is matched by every error Save and Load return for a
// malformed, unsupported or unloadable envelope.
var ErrSerialization = errors.New("serialization error")

// VersionError reports an envelope written in an unsupported format version.
type VersionError struct {
	Got uint32
	Max uint32
}

// Error implements the error interface.
func (e *VersionError) Error() string {
	return fmt.Sprintf("envelope: unsupported format version %d (supported 1..%d)", e.Got, e.Max)
}

// Is reports whether target is ErrSerialization.
func (e *VersionError) Is(target error) bool {
	return target == ErrSerialization
}

// UnknownVariantError reports an adapter variant missing from the registry.
type UnknownVariantError struct {
	Variant string
}

// Error implements the error interface.
func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("envelope: unknown adapter variant %q", e.Variant)
}

// Is reports whether target is ErrSerialization.
func (e *UnknownVariantError) Is(target error) bool {
	return target == ErrSerialization
}

// CorruptEnvelopeError reports an envelope that cannot be decoded.
type CorruptEnvelopeError struct {
	Reason string
	Err    error // underlying cause, if any
}

// Error implements the error interface.
func (e *CorruptEnvelopeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("envelope: corrupt: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("envelope: corrupt: %s", e.Reason)
}

// Unwrap returns the underlying cause.
func (e *CorruptEnvelopeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSerialization.
func (e *CorruptEnvelopeError) Is(target error) bool {
	return target == ErrSerialization
}

func corrupt(reason string, err error) error {
	return &CorruptEnvelopeError{Reason: reason, Err: err}
}

// FileError reports a path that cannot be saved to or loaded from.
type FileError struct {
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("envelope: %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("envelope: %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *FileError) Unwrap() error { return e.Err }
