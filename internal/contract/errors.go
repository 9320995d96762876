package contract

import "errors"

// Sentinel errors.
var (
	// ErrInvalidModel is returned by New for missing collaborators.
	ErrInvalidModel = errors.New("invalid contracted model")

	// ErrIncompatible is returned when a model's schemas differ from the
	// models it should be interchangeable with.
	ErrIncompatible = errors.New("models are not interchangeable")

	// ErrUnknownModel is returned when selecting a name that was never added.
	ErrUnknownModel = errors.New("unknown model")

	// ErrNoModel is returned when predicting through an empty Selector.
	ErrNoModel = errors.New("no model selected")
)
