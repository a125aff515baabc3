package audit

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Enricher fills event fields from ambient request context. It runs once, at
// record-construction time, on the caller's goroutine; delivery never reads
// the context again. An enricher must only populate fields that are empty so
// explicitly supplied values win.
type Enricher func(ctx context.Context, ev *Event)

// Logger is the public emission surface applications use. It wraps a Sink and
// adds blocking and non-blocking emission, readiness probing, and a one-way
// Open -> Closed lifecycle.
type Logger struct {
	sink   Sink
	enrich Enricher
	closed atomic.Bool
}

// LoggerOption customizes a Logger.
type LoggerOption func(*Logger)

// WithEnricher installs a context enricher used by the Event and Log helper
// family to auto-populate common fields.
func WithEnricher(fn Enricher) LoggerOption {
	return func(l *Logger) { l.enrich = fn }
}

// NewLogger wraps a sink. The sink must not be nil.
func NewLogger(sink Sink, opts ...LoggerOption) (*Logger, error) {
	if sink == nil {
		return nil, fmt.Errorf("audit: sink is required")
	}
	l := &Logger{sink: sink}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Emit delivers one event, blocking until the underlying sink has finished the
// attempt. After Close it fails with ErrClosed.
func (l *Logger) Emit(ctx context.Context, ev Event) error {
	if l.closed.Load() {
		return ErrClosed
	}
	return l.sink.Emit(ctx, ev)
}

// EmitAsync delivers one event off the caller's goroutine. The returned
// channel receives exactly one value: nil on success or the delivery error.
// The caller may abandon the channel; the attempt still runs to completion.
// Cancellation is detached from ctx so a delivery survives the end of the
// request that triggered it.
func (l *Logger) EmitAsync(ctx context.Context, ev Event) <-chan error {
	ctx = context.WithoutCancel(ctx)
	ch := make(chan error, 1)
	go func() {
		ch <- l.Emit(ctx, ev)
	}()
	return ch
}

// EmitAsyncSafe is EmitAsync with the additional guarantee that a panic during
// submission or delivery is captured and surfaced as a failed result instead
// of crashing the emitting goroutine.
func (l *Logger) EmitAsyncSafe(ctx context.Context, ev Event) <-chan error {
	ctx = context.WithoutCancel(ctx)
	ch := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- fmt.Errorf("audit: emission panicked: %v", r)
			}
		}()
		ch <- l.Emit(ctx, ev)
	}()
	return ch
}

// Event constructs an event enriched from the ambient context. Explicit
// options take precedence over enriched values.
func (l *Logger) Event(ctx context.Context, eventType, action, resource string, result Result, opts ...Option) Event {
	ev := NewEvent(eventType, action, resource, result, opts...)
	if l.enrich != nil {
		l.enrich(ctx, &ev)
	}
	return ev
}

// Log builds an event from the ambient context and emits it synchronously.
func (l *Logger) Log(ctx context.Context, eventType, action, resource string, result Result, opts ...Option) error {
	return l.Emit(ctx, l.Event(ctx, eventType, action, resource, result, opts...))
}

// Success emits a ResultSuccess event built from the ambient context.
func (l *Logger) Success(ctx context.Context, eventType, action, resource, message string) error {
	return l.Log(ctx, eventType, action, resource, ResultSuccess, WithMessage(message))
}

// Failure emits a ResultFailure event built from the ambient context.
func (l *Logger) Failure(ctx context.Context, eventType, action, resource, message string) error {
	return l.Log(ctx, eventType, action, resource, ResultFailure, WithMessage(message))
}

// Denied emits a ResultDenied event built from the ambient context.
func (l *Logger) Denied(ctx context.Context, eventType, action, resource, message string) error {
	return l.Log(ctx, eventType, action, resource, ResultDenied, WithMessage(message))
}

// Ready reports whether the logger is open and its sink can accept events.
func (l *Logger) Ready(ctx context.Context) bool {
	if l.closed.Load() {
		return false
	}
	return l.sink.Ready(ctx)
}

// Close transitions the logger to Closed and closes the sink. Subsequent Emit
// calls fail with ErrClosed. Close is idempotent; only the first call reaches
// the sink.
func (l *Logger) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.sink.Close()
}
