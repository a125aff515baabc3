package audit

import "context"

// Store persists events on the collector side. Keep it transport-agnostic so
// the collector can fan out to different backends.
type Store interface {
	// Append records one event.
	Append(ctx context.Context, ev Event) error

	// ListRecent returns up to limit events, most recent first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
