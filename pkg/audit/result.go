package audit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result classifies the outcome of an audited action. The set is closed: wire
// values are the lowercase strings below and parsing anything else is an error.
type Result string

const (
	// ResultSuccess: the audited action completed successfully.
	ResultSuccess Result = "success"

	// ResultFailure: the audited action failed due to an error.
	ResultFailure Result = "failure"

	// ResultDenied: the audited action was denied due to insufficient permissions.
	ResultDenied Result = "denied"

	// ResultInvalid: the audited action was attempted with malformed input.
	ResultInvalid Result = "invalid"

	// ResultTimeout: the audited action timed out.
	ResultTimeout Result = "timeout"

	// ResultCancelled: the audited action was cancelled or aborted.
	ResultCancelled Result = "cancelled"

	// ResultUnknown: the audited action had an unknown or unspecified result.
	ResultUnknown Result = "unknown"
)

// results lists all values in declaration order. The order is used only for
// collection ordering, never semantically.
var results = []Result{
	ResultSuccess,
	ResultFailure,
	ResultDenied,
	ResultInvalid,
	ResultTimeout,
	ResultCancelled,
	ResultUnknown,
}

// Results returns all known result codes in declaration order.
func Results() []Result {
	out := make([]Result, len(results))
	copy(out, results)
	return out
}

// IsValid checks if the result is one of the supported enum values.
func (r Result) IsValid() bool {
	switch r {
	case ResultSuccess, ResultFailure, ResultDenied, ResultInvalid,
		ResultTimeout, ResultCancelled, ResultUnknown:
		return true
	}
	return false
}

// String returns the lowercase wire value.
func (r Result) String() string { return string(r) }

// ParseResult converts a string to a Result, case-insensitively. Unrecognized
// values return an error wrapping ErrInvalidResult.
func ParseResult(s string) (Result, error) {
	r := Result(strings.ToLower(s))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
	return r, nil
}

// MarshalJSON emits the lowercase wire value.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// UnmarshalJSON parses the wire value case-insensitively so records produced
// by lenient writers still round-trip.
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
