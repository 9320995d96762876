package schema

import (
	"errors"
	"fmt"

	"github.com/born-ml/contract/internal/tensor"
)

// ErrContract is matched by every validation failure caused by caller input.
// Use errors.Is(err, ErrContract) to tell input problems apart from backend failures.
var ErrContract = errors.New("contract violation")

// Construction errors.
var (
	ErrInvalidSchema = errors.New("invalid schema")
)

// ShapeMismatchError reports an array whose axis cardinalities disagree with the schema.
type ShapeMismatchError struct {
	Schema   string // Schema name
	Axis     string // Offending axis name ("" for a rank mismatch)
	Symbol   string // Symbol the axis is bound to, if symbolic
	Expected int    // Expected size (or rank, when Rank is true)
	Actual   int    // Actual size (or rank, when Rank is true)
	Rank     bool   // True when the number of axes differs
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	switch {
	case e.Rank:
		return fmt.Sprintf("schema %q: shape mismatch: expected %d axes, got %d", e.Schema, e.Expected, e.Actual)
	case e.Symbol != "":
		return fmt.Sprintf("schema %q: shape mismatch on axis %q: symbol %q bound to %d, got %d",
			e.Schema, e.Axis, e.Symbol, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("schema %q: shape mismatch on axis %q: expected %d, got %d",
			e.Schema, e.Axis, e.Expected, e.Actual)
	}
}

// Is reports whether target is ErrContract.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrContract
}

// DTypeMismatchError reports an element type that cannot be safely coerced.
type DTypeMismatchError struct {
	Schema   string
	Expected tensor.DataType
	Actual   tensor.DataType
}

// Error implements the error interface.
func (e *DTypeMismatchError) Error() string {
	return fmt.Sprintf("schema %q: dtype mismatch: expected %s, got %s (no lossless conversion)",
		e.Schema, e.Expected, e.Actual)
}

// Is reports whether target is ErrContract.
func (e *DTypeMismatchError) Is(target error) bool {
	return target == ErrContract
}

// RangeError reports an element outside the declared value range.
type RangeError struct {
	Schema string
	Index  []int // Position of the first offending element
	Value  float64
	Range  Range
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("schema %q: value %v at index %v outside range %s", e.Schema, e.Value, e.Index, e.Range)
}

// Is reports whether target is ErrContract.
func (e *RangeError) Is(target error) bool {
	return target == ErrContract
}
