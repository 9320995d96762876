package schema

import (
	"fmt"
	"math"

	"github.com/born-ml/contract/internal/tensor"
)

// Descriptor is the serializable form of a Schema.
type Descriptor struct {
	Name  string           `json:"name"`
	DType tensor.DataType  `json:"dtype"`
	Axes  []Axis           `json:"axes"`
	Range *RangeDescriptor `json:"range,omitempty"`
}

// RangeDescriptor encodes a Range. Missing bounds mean unbounded, since JSON
// cannot carry infinities.
type RangeDescriptor struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Descriptor returns the serializable form of the schema.
func (s *Schema) Descriptor() Descriptor {
	d := Descriptor{
		Name:  s.name,
		DType: s.dtype,
		Axes:  s.Axes(),
	}
	if s.rng != nil {
		rd := &RangeDescriptor{}
		if !math.IsInf(s.rng.Min, -1) {
			v := s.rng.Min
			rd.Min = &v
		}
		if !math.IsInf(s.rng.Max, 1) {
			v := s.rng.Max
			rd.Max = &v
		}
		d.Range = rd
	}
	return d
}

// FromDescriptor rebuilds a Schema from its serializable form.
func FromDescriptor(d Descriptor) (*Schema, error) {
	var opts []Option
	if d.Range != nil {
		r := Range{Min: math.Inf(-1), Max: math.Inf(1)}
		if d.Range.Min != nil {
			r.Min = *d.Range.Min
		}
		if d.Range.Max != nil {
			r.Max = *d.Range.Max
		}
		opts = append(opts, WithRange(r))
	}

	s, err := New(d.Name, d.DType, d.Axes, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild schema: %w", err)
	}
	return s, nil
}
