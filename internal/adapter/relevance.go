package adapter

import "fmt"

// Relevance tags how much a caller needs to know about a parameter.
type Relevance uint8

// Relevance levels.
const (
	// Core parameters define what the model computes.
	Core Relevance = iota + 1
	// Tuning parameters adjust behavior without changing the model's task.
	Tuning
	// Diagnostic parameters describe the model and are not meant to be set.
	Diagnostic
)

// String returns the relevance name.
func (r Relevance) String() string {
	switch r {
	case Core:
		return "core"
	case Tuning:
		return "tuning"
	case Diagnostic:
		return "diagnostic"
	default:
		return fmt.Sprintf("relevance(%d)", uint8(r))
	}
}

// ParseRelevance parses a relevance name.
func ParseRelevance(s string) (Relevance, error) {
	switch s {
	case "core":
		return Core, nil
	case "tuning":
		return Tuning, nil
	case "diagnostic":
		return Diagnostic, nil
	default:
		return 0, fmt.Errorf("unknown relevance %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Relevance) MarshalText() ([]byte, error) {
	if r < Core || r > Diagnostic {
		return nil, fmt.Errorf("invalid relevance %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Relevance) UnmarshalText(text []byte) error {
	v, err := ParseRelevance(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
