package sic

import (
	"sync"

	"go.uber.org/zap"
)

// EventKind classifies a diagnostic emitted by the engine.
type EventKind string

// Diagnostic kinds.
const (
	// EventInvalidToken: a raw token resolved to no registered code.
	EventInvalidToken EventKind = "invalid_token"
	// EventIntermediateInvalid: a token was dropped while re-cleaning a code
	// set at a coarser level during codability classification.
	EventIntermediateInvalid EventKind = "intermediate_invalid"
	// EventBadPattern: the tokenizer pattern failed to compile.
	EventBadPattern EventKind = "bad_pattern"
	// EventExpandTooWide: a token was too short to expand within the width cap.
	EventExpandTooWide EventKind = "expand_too_wide"
	// EventUnsupportedInput: a raw value had an unrecognised shape.
	EventUnsupportedInput EventKind = "unsupported_input"
	// EventSkippedCandidate: a candidate list element was not a record.
	EventSkippedCandidate EventKind = "skipped_candidate"
	// EventBadScore: a candidate likelihood was not numeric and was read as 0.
	EventBadScore EventKind = "bad_score"
)

// Event is one diagnostic. Value holds the offending raw value.
type Event struct {
	Kind   EventKind `json:"kind"`
	Value  string    `json:"value"`
	Detail string    `json:"detail,omitempty"`
}

// Sink receives engine diagnostics. Implementations must be safe for
// concurrent use when an engine is shared between goroutines.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

type zapSink struct {
	log *zap.Logger
}

// ZapSink writes each event as a single warning line.
func ZapSink(log *zap.Logger) Sink {
	return &zapSink{log: log}
}

func (z *zapSink) Emit(e Event) {
	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.String("value", e.Value),
	}
	if e.Detail != "" {
		fields = append(fields, zap.String("detail", e.Detail))
	}
	z.log.Warn("sic: "+string(e.Kind), fields...)
}

// Recorder collects events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded event kinds in emission order.
func (r *Recorder) Kinds() []EventKind {
	events := r.Events()
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Tee fans each event out to every sink.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			s.Emit(e)
		}
	})
}
