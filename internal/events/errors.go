package events

import "errors"

var (
	// ErrUpstreamTransient covers 5xx/timeout/connection failures — logged,
	// the country is skipped, no write (spec.md §7).
	ErrUpstreamTransient = errors.New("events: upstream transient error")
	// ErrUpstreamMalformed covers an unexpected response shape.
	ErrUpstreamMalformed = errors.New("events: upstream malformed response")
)
