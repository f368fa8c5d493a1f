// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.CallAnalyzer,
// ai.ChatModel and ai.AIProvider for use in unit tests. The mocks allow tests
// to run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockAnalyzer := mock.NewMockAnalyzer()
//	mockAnalyzer.AnalyzeFunc = func(ctx context.Context, text string) (core.AnalysisResult, error) {
//	    return core.AnalysisResult{Summary: "fixed", Sentiment: core.SentimentPositive}, nil
//	}
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockAnalyzer: Returns a neutral analysis echoing the first line of input
//   - MockChatModel: Echoes the prompt back
//   - MockProvider: Aggregates the above
package mock
