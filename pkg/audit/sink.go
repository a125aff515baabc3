package audit

import "context"

// Sink is a delivery backend for serialized audit events. Implementations are
// safe for concurrent use. Emit is blocking and best-effort: a failure is
// reported to the caller exactly once and never retried internally.
type Sink interface {
	// Emit serializes and delivers one event, returning when the delivery
	// attempt has completed or failed.
	Emit(ctx context.Context, ev Event) error

	// Ready reports whether the sink can currently accept events. For
	// network-backed sinks this may probe the remote endpoint.
	Ready(ctx context.Context) bool

	// Close marks the sink closed. Emit calls after Close fail with ErrClosed.
	// Close is idempotent.
	Close() error
}
