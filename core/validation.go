// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"time"
)

// ValidateCall validates a Call according to domain rules.
//
// Validation rules:
//   - SourceId must not be empty
//   - Sentiment must be a recognized value
//   - StartTime must not be in the future
//
// NOT validated (populated later or legitimately empty):
//   - Vector (empty until the summary is embedded)
//   - Summary (a call with nothing extractable still gets a row)
//   - ID (0 is valid from database sequences)
func ValidateCall(call *Call) error {
	if call == nil {
		return fmt.Errorf("%w: call is nil", ErrInvalidCall)
	}

	if call.SourceId == "" {
		return fmt.Errorf("%w: source id is empty", ErrInvalidCall)
	}

	if err := ValidateSentiment(call.Sentiment); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCall, err)
	}

	if !IsValidTimestamp(call.StartTime) {
		return fmt.Errorf("%w: %w", ErrInvalidCall, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSegment validates a TranscriptSegment according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Seq must not be negative
func ValidateSegment(segment *TranscriptSegment) error {
	if segment == nil {
		return fmt.Errorf("%w: segment is nil", ErrInvalidSegment)
	}

	if segment.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptyContent)
	}

	if segment.Seq < 0 {
		return fmt.Errorf("%w: negative sequence %d", ErrInvalidSegment, segment.Seq)
	}

	return nil
}

// ValidateFeatureRequest validates a FeatureRequest according to domain rules.
//
// Validation rules:
//   - Request must not be empty
//   - Priority must be a recognized value
func ValidateFeatureRequest(feature *FeatureRequest) error {
	if feature == nil {
		return fmt.Errorf("%w: feature request is nil", ErrInvalidFeatureRequest)
	}

	if feature.Request == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFeatureRequest, ErrEmptyContent)
	}

	if err := ValidatePriority(feature.Priority); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFeatureRequest, err)
	}

	return nil
}

// ValidateSentiment validates that a Sentiment has a recognized value.
// SentimentUnknown is accepted: it is the documented recovery default.
func ValidateSentiment(s Sentiment) error {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentUnknown:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSentiment, s)
}

// ValidatePriority validates that a Priority has a recognized value.
func ValidatePriority(p Priority) error {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPriority, p)
}

// IsValidTimestamp reports whether a timestamp is usable for a stored record.
// Allows a small amount of clock skew into the future.
func IsValidTimestamp(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.After(time.Now().Add(5 * time.Minute))
}

// NormalizeSentiment maps a free-form model reply onto a Sentiment value.
// Unrecognized values become SentimentUnknown rather than failing the call.
func NormalizeSentiment(raw string) Sentiment {
	switch Sentiment(raw) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return Sentiment(raw)
	}
	return SentimentUnknown
}

// NormalizePriority maps a free-form model reply onto a Priority value.
// Unrecognized values default to Medium.
func NormalizePriority(raw string) Priority {
	switch Priority(raw) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(raw)
	}
	return PriorityMedium
}
