// Package auditcontext carries ambient audit metadata on a context.Context so
// common event fields (actor, session, correlation id, origin, network
// metadata) do not have to be threaded through every call site.
//
// Unlike thread-local storage, propagation is explicit: values travel only
// with the context the caller passes, so isolation between concurrent
// goroutines comes for free. Values are read once, at event-construction time;
// delivery never touches the context again.
//
// Usage in middleware (set values):
//
//	ctx = auditcontext.WithCorrelationID(ctx, requestID)
//	ctx = auditcontext.WithNetwork(ctx, clientIP, userAgent)
//
// Usage in services (build an event from the context):
//
//	ev := auditcontext.NewEvent(ctx, "LOGIN", "login", "/login", audit.ResultSuccess)
//
// Setting a key to the empty string removes it: accessors and Snapshot treat
// empty as absent.
package auditcontext

import (
	"context"

	"audittrail/pkg/audit"
)

// Context key types (unexported for encapsulation).
type (
	actorIDKey       struct{}
	sessionIDKey     struct{}
	correlationIDKey struct{}
	applicationKey   struct{}
	componentKey     struct{}
	sourceIPKey      struct{}
	userAgentKey     struct{}
)

// Snapshot field names, matching the wire keys of the event fields they feed.
const (
	FieldActorID       = "actor_id"
	FieldSessionID     = "session_id"
	FieldCorrelationID = "correlation_id"
	FieldApplication   = "application"
	FieldComponent     = "component"
	FieldSourceIP      = "source_ip"
	FieldUserAgent     = "user_agent"
)

func stringValue(ctx context.Context, key any) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// ActorID retrieves the acting principal from the context.
func ActorID(ctx context.Context) string { return stringValue(ctx, actorIDKey{}) }

// WithActorID injects the acting principal. An empty value removes it.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

// SessionID retrieves the session identifier from the context.
func SessionID(ctx context.Context) string { return stringValue(ctx, sessionIDKey{}) }

// WithSessionID injects the session identifier. An empty value removes it.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// CorrelationID retrieves the correlation identifier from the context.
func CorrelationID(ctx context.Context) string { return stringValue(ctx, correlationIDKey{}) }

// WithCorrelationID injects the correlation identifier. An empty value removes it.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// Application retrieves the emitting application name from the context.
func Application(ctx context.Context) string { return stringValue(ctx, applicationKey{}) }

// Component retrieves the emitting component name from the context.
func Component(ctx context.Context) string { return stringValue(ctx, componentKey{}) }

// WithOrigin injects the application and component names. Empty values remove
// the corresponding key.
func WithOrigin(ctx context.Context, application, component string) context.Context {
	ctx = context.WithValue(ctx, applicationKey{}, application)
	return context.WithValue(ctx, componentKey{}, component)
}

// SourceIP retrieves the client IP address from the context.
func SourceIP(ctx context.Context) string { return stringValue(ctx, sourceIPKey{}) }

// UserAgent retrieves the client User-Agent from the context.
func UserAgent(ctx context.Context) string { return stringValue(ctx, userAgentKey{}) }

// WithNetwork injects client IP and User-Agent. Empty values remove the
// corresponding key.
func WithNetwork(ctx context.Context, sourceIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, sourceIPKey{}, sourceIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// Snapshot returns the ambient fields currently set, keyed by wire name.
// Unset and empty keys are omitted.
func Snapshot(ctx context.Context) map[string]string {
	snap := make(map[string]string)
	put := func(field, value string) {
		if value != "" {
			snap[field] = value
		}
	}
	put(FieldActorID, ActorID(ctx))
	put(FieldSessionID, SessionID(ctx))
	put(FieldCorrelationID, CorrelationID(ctx))
	put(FieldApplication, Application(ctx))
	put(FieldComponent, Component(ctx))
	put(FieldSourceIP, SourceIP(ctx))
	put(FieldUserAgent, UserAgent(ctx))
	return snap
}

// Clear returns a context with every ambient audit key removed. Callers that
// reuse a long-lived context (workers, CLI loops) call this between logical
// tasks; request-scoped contexts are simply dropped instead.
func Clear(ctx context.Context) context.Context {
	ctx = WithActorID(ctx, "")
	ctx = WithSessionID(ctx, "")
	ctx = WithCorrelationID(ctx, "")
	ctx = WithOrigin(ctx, "", "")
	return WithNetwork(ctx, "", "")
}

// Enrich fills empty event fields from the ambient context. It satisfies
// audit.Enricher; fields already set on the event are left alone.
func Enrich(ctx context.Context, ev *audit.Event) {
	if ev.ActorID == "" {
		ev.ActorID = ActorID(ctx)
	}
	if ev.SessionID == "" {
		ev.SessionID = SessionID(ctx)
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = CorrelationID(ctx)
	}
	if ev.Application == "" {
		ev.Application = Application(ctx)
	}
	if ev.Component == "" {
		ev.Component = Component(ctx)
	}
	if ev.SourceIP == "" {
		ev.SourceIP = SourceIP(ctx)
	}
	if ev.UserAgent == "" {
		ev.UserAgent = UserAgent(ctx)
	}
}

// NewEvent constructs an audit event pulling the ambient fields from ctx.
// Fields absent from the context stay absent on the event.
func NewEvent(ctx context.Context, eventType, action, resource string, result audit.Result, opts ...audit.Option) audit.Event {
	ev := audit.NewEvent(eventType, action, resource, result, opts...)
	Enrich(ctx, &ev)
	return ev
}
