package extract

import "errors"

var (
	// ErrMalformedResponse is returned when the AI payload cannot be parsed
	// as a JSON object after unwrapping.
	ErrMalformedResponse = errors.New("malformed extraction response")

	// ErrEmptyResponse is returned when the AI service answers without any
	// completion choices.
	ErrEmptyResponse = errors.New("empty response from AI service")

	// ErrNoPages is returned when no page images could be rendered from the
	// document bytes.
	ErrNoPages = errors.New("no pages rendered from document")
)
