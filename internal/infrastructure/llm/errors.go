package llm

import "errors"

var (
	// ErrMissingAPIKey marks a configuration error: the provider credential
	// is absent. It is never retried.
	ErrMissingAPIKey = errors.New("llm: api key is not set")
	// ErrEmptyResponse is returned when the service produced no text.
	ErrEmptyResponse = errors.New("llm: empty response")
)
