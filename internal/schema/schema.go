// Package schema implements declarative shape, dtype and value-range contracts for arrays.
//
// A Schema is an ordered list of named axes plus an element type and an optional
// value range. Axes are either fixed (a concrete size), symbolic (a size bound on
// first use within a Session and checked for consistency afterwards) or free.
//
// Example:
//
//	in, _ := schema.New("input", tensor.Float32, []schema.Axis{
//	    schema.Symbolic("batch"),
//	    schema.Fixed("features", 10),
//	})
//	out, _ := schema.New("output", tensor.Float32, []schema.Axis{
//	    schema.Symbolic("batch"),
//	    schema.Fixed("classes", 3),
//	}, schema.WithRange(schema.Between(0, 1)))
//
//	sess := schema.NewSession()
//	x, err := in.Validate(sess, raw)       // binds "batch"
//	y, err := out.Validate(sess, adapterY) // must agree on "batch"
package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/contract/internal/tensor"
)

// Axis describes one dimension of a schema.
//
// Exactly one of Size and Symbol may be set. When neither is set the axis
// accepts any size.
type Axis struct {
	Name   string `json:"name"`
	Size   int    `json:"size,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// Fixed returns an axis that only accepts the given size.
func Fixed(name string, size int) Axis {
	return Axis{Name: name, Size: size}
}

// Symbolic returns an axis whose size is bound to a symbol of the same name.
func Symbolic(name string) Axis {
	return Axis{Name: name, Symbol: name}
}

// SymbolicAs returns an axis bound to an explicitly named symbol, so that
// differently named axes can be forced to agree.
func SymbolicAs(name, symbol string) Axis {
	return Axis{Name: name, Symbol: symbol}
}

// Free returns an axis that accepts any size.
func Free(name string) Axis {
	return Axis{Name: name}
}

func (a Axis) String() string {
	switch {
	case a.Size > 0:
		return fmt.Sprintf("%s:%d", a.Name, a.Size)
	case a.Symbol != "" && a.Symbol != a.Name:
		return fmt.Sprintf("%s:%s", a.Name, a.Symbol)
	case a.Symbol != "":
		return a.Name + ":?"
	default:
		return a.Name + ":*"
	}
}

// Range is an inclusive value constraint. Use ±Inf for open ends.
type Range struct {
	Min float64
	Max float64
}

// Between returns the range [min, max].
func Between(minValue, maxValue float64) Range {
	return Range{Min: minValue, Max: maxValue}
}

// AtLeast returns the range [min, +Inf].
func AtLeast(minValue float64) Range {
	return Range{Min: minValue, Max: math.Inf(1)}
}

// AtMost returns the range [-Inf, max].
func AtMost(maxValue float64) Range {
	return Range{Min: math.Inf(-1), Max: maxValue}
}

// Contains reports whether v lies within the range. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// containsInt64 is Contains evaluated without rounding v to float64.
func (r Range) containsInt64(v int64) bool {
	const limit = 1 << 63 // 2^63 as float64; int64 spans [-limit, limit)
	switch {
	case math.IsNaN(r.Min) || math.IsNaN(r.Max):
		return false
	case r.Min >= limit || r.Max < -limit:
		return false
	}
	if r.Min > -limit && v < int64(math.Ceil(r.Min)) {
		return false
	}
	if r.Max < limit && v > int64(math.Floor(r.Max)) {
		return false
	}
	return true
}

func (r Range) String() string {
	return fmt.Sprintf("[%v, %v]", r.Min, r.Max)
}

// Option configures a Schema at construction time.
type Option func(*Schema)

// WithRange constrains every element to the given range.
func WithRange(r Range) Option {
	return func(s *Schema) {
		s.rng = &r
	}
}

// Schema is an immutable array contract.
type Schema struct {
	name  string
	dtype tensor.DataType
	axes  []Axis
	rng   *Range
}

// New builds a Schema and checks that it is well formed.
func New(name string, dtype tensor.DataType, axes []Axis, opts ...Option) (*Schema, error) {
	s := &Schema{
		name:  name,
		dtype: dtype,
		axes:  append([]Axis(nil), axes...),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) check() error {
	if !s.dtype.Valid() {
		return fmt.Errorf("%w %q: unknown dtype %d", ErrInvalidSchema, s.name, int(s.dtype))
	}

	seen := make(map[string]struct{}, len(s.axes))
	for i, ax := range s.axes {
		if ax.Name == "" {
			return fmt.Errorf("%w %q: axis %d has no name", ErrInvalidSchema, s.name, i)
		}
		if _, dup := seen[ax.Name]; dup {
			return fmt.Errorf("%w %q: duplicate axis %q", ErrInvalidSchema, s.name, ax.Name)
		}
		seen[ax.Name] = struct{}{}

		if ax.Size < 0 {
			return fmt.Errorf("%w %q: axis %q has negative size %d", ErrInvalidSchema, s.name, ax.Name, ax.Size)
		}
		if ax.Size > 0 && ax.Symbol != "" {
			return fmt.Errorf("%w %q: axis %q is both fixed and symbolic", ErrInvalidSchema, s.name, ax.Name)
		}
	}

	if s.rng != nil {
		r := s.rng
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 1) || math.IsInf(r.Max, -1) || r.Min > r.Max {
			return fmt.Errorf("%w %q: invalid range %s", ErrInvalidSchema, s.name, s.rng)
		}
	}
	return nil
}

// Name returns the schema name used in error messages.
func (s *Schema) Name() string { return s.name }

// DType returns the declared element type.
func (s *Schema) DType() tensor.DataType { return s.dtype }

// Rank returns the number of axes.
func (s *Schema) Rank() int { return len(s.axes) }

// Axes returns a copy of the axis list.
func (s *Schema) Axes() []Axis {
	return append([]Axis(nil), s.axes...)
}

// Range returns the declared value range, if any.
func (s *Schema) Range() (Range, bool) {
	if s.rng == nil {
		return Range{}, false
	}
	return *s.rng, true
}

// Symbols returns the distinct symbols referenced by the schema, in axis order.
func (s *Schema) Symbols() []string {
	var symbols []string
	seen := make(map[string]struct{})
	for _, ax := range s.axes {
		if ax.Symbol == "" {
			continue
		}
		if _, ok := seen[ax.Symbol]; ok {
			continue
		}
		seen[ax.Symbol] = struct{}{}
		symbols = append(symbols, ax.Symbol)
	}
	return symbols
}

// Equal reports whether two schemas impose the same structural contract.
// The schema name is a label and does not participate.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.dtype != other.dtype || len(s.axes) != len(other.axes) {
		return false
	}
	for i := range s.axes {
		if s.axes[i] != other.axes[i] {
			return false
		}
	}
	switch {
	case s.rng == nil && other.rng == nil:
		return true
	case s.rng == nil || other.rng == nil:
		return false
	default:
		return *s.rng == *other.rng
	}
}

// String renders the schema, e.g. "input float32[batch:? features:10]".
func (s *Schema) String() string {
	parts := make([]string, len(s.axes))
	for i, ax := range s.axes {
		parts[i] = ax.String()
	}
	out := fmt.Sprintf("%s %s[%s]", s.name, s.dtype, strings.Join(parts, " "))
	if s.rng != nil {
		out += " in " + s.rng.String()
	}
	return out
}
