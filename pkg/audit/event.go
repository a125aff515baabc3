package audit

import (
	"time"
)

// Event is a structured audit fact. It is emitted from domain logic to capture
// key actions and is designed to serialize to line-delimited JSON for log
// shipping. Treat constructed events as immutable: every "update" builds a new
// event rather than mutating one in flight.
//
// EventType, Action and Resource are required by convention but not enforced;
// Result is required. All other fields are optional and omitted from the wire
// format when absent.
type Event struct {
	Timestamp     time.Time      `json:"timestamp"`
	EventType     string         `json:"event_type"`
	ActorID       string         `json:"actor_id,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	Application   string         `json:"application,omitempty"`
	Component     string         `json:"component,omitempty"`
	Action        string         `json:"action"`
	Resource      string         `json:"resource"`
	Result        Result         `json:"result"`
	Message       string         `json:"message,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	SourceIP      string         `json:"source_ip,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
}

// Option customizes an Event during construction.
type Option func(*Event)

// NewEvent constructs an audit event. The timestamp is defaulted to the current
// UTC time at construction, never at serialization, so a constructed event is
// never missing one.
func NewEvent(eventType, action, resource string, result Result, opts ...Option) Event {
	ev := Event{
		EventType: eventType,
		Action:    action,
		Resource:  resource,
		Result:    result,
	}
	for _, opt := range opts {
		opt(&ev)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return ev
}

// WithTimestamp overrides the construction-time default.
func WithTimestamp(t time.Time) Option {
	return func(ev *Event) { ev.Timestamp = t }
}

// WithActor sets the acting principal.
func WithActor(actorID string) Option {
	return func(ev *Event) { ev.ActorID = actorID }
}

// WithSession sets the session identifier.
func WithSession(sessionID string) Option {
	return func(ev *Event) { ev.SessionID = sessionID }
}

// WithOrigin sets the emitting application and component names.
func WithOrigin(application, component string) Option {
	return func(ev *Event) {
		ev.Application = application
		ev.Component = component
	}
}

// WithMessage sets the human-readable description.
func WithMessage(message string) Option {
	return func(ev *Event) { ev.Message = message }
}

// WithDetails attaches a free-form structured payload. Values may be scalars,
// nested maps, or arrays; the map is stored as given, not copied.
func WithDetails(details map[string]any) Option {
	return func(ev *Event) { ev.Details = details }
}

// WithCorrelationID sets the correlation identifier for request tracing.
func WithCorrelationID(correlationID string) Option {
	return func(ev *Event) { ev.CorrelationID = correlationID }
}

// WithNetwork sets the client network metadata.
func WithNetwork(sourceIP, userAgent string) Option {
	return func(ev *Event) {
		ev.SourceIP = sourceIP
		ev.UserAgent = userAgent
	}
}
