package audit

import "errors"

// Sentinel errors for audit emission failures. Sinks return these (wrapped with
// the underlying cause via %w) so callers can classify failures with errors.Is
// and decide on retry or circuit-breaking at a higher layer. Sinks themselves
// never retry.
//
// - ErrClosed: emission attempted after Close
// - ErrSerialization: record could not be encoded to JSON
// - ErrDirectoryUnavailable: file sink target directory missing or not writable
// - ErrIO: file write or flush failure
// - ErrConnect: stream sink connect timeout or refusal
// - ErrNetworkWrite: write or flush failure after a successful connect
// - ErrInvalidResult: result code parsed from an unrecognized string
var (
	ErrClosed               = errors.New("audit sink closed")
	ErrSerialization        = errors.New("serialization failed")
	ErrDirectoryUnavailable = errors.New("log directory unavailable")
	ErrIO                   = errors.New("write failed")
	ErrConnect              = errors.New("connect failed")
	ErrNetworkWrite         = errors.New("network write failed")
	ErrInvalidResult        = errors.New("invalid audit result value")
)
