package core

import "errors"

var (
	// ErrInvalidCall indicates a call record failed validation.
	ErrInvalidCall = errors.New("invalid call")

	// ErrInvalidSegment indicates a transcript segment failed validation.
	ErrInvalidSegment = errors.New("invalid transcript segment")

	// ErrInvalidFeatureRequest indicates a feature request failed validation.
	ErrInvalidFeatureRequest = errors.New("invalid feature request")

	// ErrEmptyContent indicates required text content is empty.
	ErrEmptyContent = errors.New("content is empty")

	// ErrInvalidSentiment indicates an unrecognized sentiment value.
	ErrInvalidSentiment = errors.New("invalid sentiment")

	// ErrInvalidPriority indicates an unrecognized priority value.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidTimestamp indicates a timestamp outside the accepted range.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
