package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateCall(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		call    *Call
		wantErr error
	}{
		{
			name: "valid call",
			call: &Call{
				SourceId:  "gong-123",
				Title:     "Discovery call",
				Duration:  5 * time.Minute,
				StartTime: validTime,
				Sentiment: SentimentPositive,
			},
			wantErr: nil,
		},
		{
			name: "valid call with empty summary and vector",
			call: &Call{
				SourceId:  "gong-124",
				StartTime: validTime,
				Sentiment: SentimentNeutral,
			},
			wantErr: nil,
		},
		{
			name: "unknown sentiment is allowed",
			call: &Call{
				SourceId:  "gong-125",
				StartTime: validTime,
				Sentiment: SentimentUnknown,
			},
			wantErr: nil,
		},
		{
			name:    "nil call",
			call:    nil,
			wantErr: ErrInvalidCall,
		},
		{
			name: "empty source id",
			call: &Call{
				StartTime: validTime,
				Sentiment: SentimentPositive,
			},
			wantErr: ErrInvalidCall,
		},
		{
			name: "unrecognized sentiment",
			call: &Call{
				SourceId:  "gong-126",
				StartTime: validTime,
				Sentiment: Sentiment("ecstatic"),
			},
			wantErr: ErrInvalidSentiment,
		},
		{
			name: "future start time",
			call: &Call{
				SourceId:  "gong-127",
				StartTime: futureTime,
				Sentiment: SentimentPositive,
			},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name: "zero start time",
			call: &Call{
				SourceId:  "gong-128",
				Sentiment: SentimentPositive,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCall(tt.call)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCall() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCall() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		name    string
		segment *TranscriptSegment
		wantErr error
	}{
		{
			name: "valid segment",
			segment: &TranscriptSegment{
				CallId:  1,
				Seq:     0,
				Speaker: "7",
				Content: "Hello, thanks for joining.",
			},
			wantErr: nil,
		},
		{
			name: "unknown start time is allowed",
			segment: &TranscriptSegment{
				CallId:  1,
				Seq:     3,
				Content: "Some text",
				StartMs: -1,
			},
			wantErr: nil,
		},
		{
			name:    "nil segment",
			segment: nil,
			wantErr: ErrInvalidSegment,
		},
		{
			name: "empty content",
			segment: &TranscriptSegment{
				CallId: 1,
				Seq:    0,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "negative sequence",
			segment: &TranscriptSegment{
				CallId:  1,
				Seq:     -1,
				Content: "text",
			},
			wantErr: ErrInvalidSegment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegment(tt.segment)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSegment() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSegment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFeatureRequest(t *testing.T) {
	tests := []struct {
		name    string
		feature *FeatureRequest
		wantErr error
	}{
		{
			name: "valid feature request",
			feature: &FeatureRequest{
				CallId:   1,
				Request:  "Export to CSV",
				Context:  "We really need to get this data into our BI tool",
				Priority: PriorityHigh,
			},
			wantErr: nil,
		},
		{
			name:    "nil feature request",
			feature: nil,
			wantErr: ErrInvalidFeatureRequest,
		},
		{
			name: "empty request",
			feature: &FeatureRequest{
				CallId:   1,
				Priority: PriorityMedium,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "unrecognized priority",
			feature: &FeatureRequest{
				CallId:   1,
				Request:  "Dark mode",
				Priority: Priority("Urgent"),
			},
			wantErr: ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeatureRequest(tt.feature)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFeatureRequest() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFeatureRequest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSentiment(t *testing.T) {
	tests := []struct {
		raw  string
		want Sentiment
	}{
		{"positive", SentimentPositive},
		{"negative", SentimentNegative},
		{"neutral", SentimentNeutral},
		{"unknown", SentimentUnknown},
		{"", SentimentUnknown},
		{"Positive", SentimentUnknown},
		{"mixed", SentimentUnknown},
	}

	for _, tt := range tests {
		if got := NormalizeSentiment(tt.raw); got != tt.want {
			t.Errorf("NormalizeSentiment(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		raw  string
		want Priority
	}{
		{"High", PriorityHigh},
		{"Medium", PriorityMedium},
		{"Low", PriorityLow},
		{"", PriorityMedium},
		{"high", PriorityMedium},
		{"Critical", PriorityMedium},
	}

	for _, tt := range tests {
		if got := NormalizePriority(tt.raw); got != tt.want {
			t.Errorf("NormalizePriority(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIDFromContent(t *testing.T) {
	a := IDFromContent("same text")
	b := IDFromContent("same text")
	c := IDFromContent("different text")

	if a != b {
		t.Errorf("IDFromContent not deterministic: %d != %d", a, b)
	}
	if a == c {
		t.Errorf("IDFromContent collision for different inputs")
	}
}

func TestFeatureRequestEmbeddingText(t *testing.T) {
	feature := &FeatureRequest{
		Request: "Export to CSV",
		Context: "we need reports",
	}
	want := "Export to CSV we need reports"
	if got := feature.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}
