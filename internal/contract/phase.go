package contract

import (
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Phase is a step of a single prediction call.
type Phase int

// Prediction phases. Done and Failed are terminal.
const (
	Idle Phase = iota
	ValidatingInput
	CacheLookup
	CacheHit
	CacheMiss
	Predicting
	ValidatingOutput
	CacheStore
	Done
	Failed
)

var phaseNames = [...]string{
	Idle:             "idle",
	ValidatingInput:  "validating_input",
	CacheLookup:      "cache_lookup",
	CacheHit:         "cache_hit",
	CacheMiss:        "cache_miss",
	Predicting:       "predicting",
	ValidatingOutput: "validating_output",
	CacheStore:       "cache_store",
	Done:             "done",
	Failed:           "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Terminal reports whether p ends a call.
func (p Phase) Terminal() bool {
	return p == Done || p == Failed
}

// recorder tracks the phase of one call and reports each transition as a
// span event and a debug log. The miss path runs on the cache's compute
// goroutine, so transitions are locked.
type recorder struct {
	span   trace.Span
	logger *slog.Logger

	mu    sync.Mutex
	phase Phase
}

func newRecorder(span trace.Span, logger *slog.Logger) *recorder {
	return &recorder{span: span, logger: logger}
}

func (r *recorder) enter(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Terminal() {
		return
	}
	r.transition(p)
}

// enterIf moves to p only from the given phase.
func (r *recorder) enterIf(from, p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == from {
		r.transition(p)
	}
}

func (r *recorder) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Terminal() {
		return
	}
	at := r.phase
	r.transition(Failed)
	r.span.RecordError(err)
	r.span.SetStatus(codes.Error, err.Error())
	r.span.SetAttributes(attribute.String("contract.failed_in", at.String()))
}

func (r *recorder) current() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *recorder) transition(p Phase) {
	from := r.phase
	r.phase = p
	r.span.AddEvent(p.String())
	r.logger.Debug("phase", slog.String("from", from.String()), slog.String("to", p.String()))
}
