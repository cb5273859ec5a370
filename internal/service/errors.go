package service

import "errors"

var (
	// ErrModelUnavailable is returned by the model parser when no API key is configured
	ErrModelUnavailable = errors.New("external model unavailable")
	// ErrModelResponseInvalid is returned when the model reply fails decoding or validation
	ErrModelResponseInvalid = errors.New("external model response invalid")
	// ErrFeedbackDisabled is returned when no search log is configured
	ErrFeedbackDisabled = errors.New("feedback logging is disabled")
	// ErrSearchNotFound is returned when feedback names an unknown search id
	ErrSearchNotFound = errors.New("search not found")
)
