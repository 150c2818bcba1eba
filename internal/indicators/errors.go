package indicators

import "errors"

var (
	ErrUpstreamTransient = errors.New("indicators: upstream transient error")
	ErrUpstreamMalformed = errors.New("indicators: upstream malformed response")
)
