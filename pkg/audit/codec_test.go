package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalWireFormat(t *testing.T) {
	ev := NewEvent("LOGIN", "login", "/auth/login", ResultSuccess,
		WithTimestamp(time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)),
		WithActor("u1"),
	)

	data, err := Marshal(ev)
	require.NoError(t, err)

	line := string(data)
	assert.Contains(t, line, `"event_type":"LOGIN"`)
	assert.Contains(t, line, `"result":"success"`)
	assert.Contains(t, line, `"actor_id":"u1"`)
	assert.Contains(t, line, `"timestamp":"2024-03-01T12:00:00.5Z"`)

	// Optional fields absent from the event stay off the wire.
	assert.NotContains(t, line, "session_id")
	assert.NotContains(t, line, "details")

	assert.NotContains(t, line, "\n")
}

func TestMarshalEscapesEmbeddedNewlines(t *testing.T) {
	ev := NewEvent("NOTE", "write", "/notes", ResultSuccess,
		WithMessage("line one\nline two"))

	data, err := Marshal(ev)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", back.Message)
}

func TestRoundTrip(t *testing.T) {
	ev := NewEvent("PAYMENT_COMPLETED", "process_payment", "payment/p-1", ResultSuccess,
		WithTimestamp(time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)),
		WithActor("cust-7"),
		WithSession("p-1"),
		WithOrigin("payment-service", "payment-processor"),
		WithMessage("payment processed successfully"),
		WithDetails(map[string]any{
			"transaction_id": "GW-ABC123",
			"nested":         map[string]any{"fee": "2.9%"},
			"tags":           []any{"card", "visa"},
		}),
		WithCorrelationID("corr-1"),
		WithNetwork("198.51.100.4", "payments-cli/1.2"),
	)

	data, err := Marshal(ev)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, ev, back)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestUnmarshalIgnoresUnknownKeys(t *testing.T) {
	line := []byte(`{"timestamp":"2024-03-01T12:00:00Z","event_type":"LOGIN",` +
		`"action":"login","resource":"/auth/login","result":"success","extra":"ignored"}`)
	ev, err := Unmarshal(line)
	require.NoError(t, err)
	assert.Equal(t, "LOGIN", ev.EventType)
}
