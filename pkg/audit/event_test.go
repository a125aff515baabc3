package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventDefaultsTimestamp(t *testing.T) {
	before := time.Now().UTC()
	ev := NewEvent("LOGIN", "login", "/auth/login", ResultSuccess)
	after := time.Now().UTC()

	require.False(t, ev.Timestamp.IsZero())
	assert.False(t, ev.Timestamp.Before(before))
	assert.False(t, ev.Timestamp.After(after))
	assert.Equal(t, time.UTC, ev.Timestamp.Location())
}

func TestNewEventExplicitTimestampWins(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := NewEvent("LOGIN", "login", "/auth/login", ResultSuccess, WithTimestamp(at))
	assert.Equal(t, at, ev.Timestamp)
}

func TestNewEventOptions(t *testing.T) {
	details := map[string]any{"attempts": 3, "mfa": true}
	ev := NewEvent("LOGIN", "login", "/auth/login", ResultFailure,
		WithActor("u1"),
		WithSession("sess-42"),
		WithOrigin("web-app", "auth"),
		WithMessage("bad password"),
		WithDetails(details),
		WithCorrelationID("corr-9"),
		WithNetwork("203.0.113.7", "curl/8.0"),
	)

	assert.Equal(t, "LOGIN", ev.EventType)
	assert.Equal(t, "login", ev.Action)
	assert.Equal(t, "/auth/login", ev.Resource)
	assert.Equal(t, ResultFailure, ev.Result)
	assert.Equal(t, "u1", ev.ActorID)
	assert.Equal(t, "sess-42", ev.SessionID)
	assert.Equal(t, "web-app", ev.Application)
	assert.Equal(t, "auth", ev.Component)
	assert.Equal(t, "bad password", ev.Message)
	assert.Equal(t, details, ev.Details)
	assert.Equal(t, "corr-9", ev.CorrelationID)
	assert.Equal(t, "203.0.113.7", ev.SourceIP)
	assert.Equal(t, "curl/8.0", ev.UserAgent)
}
