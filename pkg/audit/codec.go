package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire format: one JSON object per line, UTF-8, snake_case keys, optional
// fields omitted when absent. The file format and the TCP stream format are
// identical; the caller appends the terminating '\n'.
//
// Timestamps serialize as RFC 3339 with sub-second precision in UTC (the Go
// time.Time default). The collector and parser accept only that form.

// Marshal encodes an event to a single JSON line without the trailing newline.
// The output never contains an embedded newline: encoding/json escapes control
// characters inside string values.
func Marshal(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return data, nil
}

// Unmarshal decodes a single JSON line into an event. Used by the collector
// and by round-trip tests; unknown keys are ignored.
func Unmarshal(line []byte) (Event, error) {
	var ev Event
	dec := json.NewDecoder(bytes.NewReader(line))
	if err := dec.Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return ev, nil
}
