package mock

import (
	"context"
	"strings"

	"github.com/callvista/callsight/core"
)

// MockAnalyzer is a test double for ai.CallAnalyzer.
// It allows custom behavior injection via function fields.
type MockAnalyzer struct {
	// AnalyzeFunc is called by Analyze if set.
	// If nil, uses default neutral behavior.
	AnalyzeFunc func(ctx context.Context, transcriptText string) (core.AnalysisResult, error)

	callCount int
}

// NewMockAnalyzer creates a mock analyzer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// Analyze returns a neutral analysis derived from the input text.
// Default behavior: the summary is the first line of the transcript, no
// feature requests, neutral sentiment.
func (m *MockAnalyzer) Analyze(ctx context.Context, transcriptText string) (core.AnalysisResult, error) {
	m.callCount++

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, transcriptText)
	}

	summary := transcriptText
	if idx := strings.IndexByte(summary, '\n'); idx >= 0 {
		summary = summary[:idx]
	}

	return core.AnalysisResult{
		Summary:         summary,
		FeatureRequests: []core.FeatureExtract{},
		Sentiment:       core.SentimentNeutral,
	}, nil
}

// CallCount returns the number of times Analyze was called.
func (m *MockAnalyzer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockAnalyzer) Reset() {
	m.callCount = 0
	m.AnalyzeFunc = nil
}
