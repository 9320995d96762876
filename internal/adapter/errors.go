package adapter

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrAdapter matches every *Error.
	ErrAdapter = errors.New("adapter error")

	// ErrUnknownVariant is returned when no constructor is registered.
	ErrUnknownVariant = errors.New("unknown adapter variant")

	// ErrDuplicateVariant is returned when registering a taken identifier.
	ErrDuplicateVariant = errors.New("adapter variant already registered")

	// ErrNotLoaded is returned by adapters asked to predict without state.
	ErrNotLoaded = errors.New("adapter has no loaded state")
)

// Error wraps a backend failure with the variant that produced it.
type Error struct {
	Variant string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("adapter %q: %v", e.Variant, e.Err)
}

// Unwrap returns the backend error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAdapter.
func (e *Error) Is(target error) bool {
	return target == ErrAdapter
}

// Wrap returns err as an *Error attributed to variant. Errors that already
// are an *Error are returned unchanged.
func Wrap(variant string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Variant: variant, Err: err}
}
