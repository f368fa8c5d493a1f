package ai

import (
	"context"

	"github.com/callvista/callsight/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CallAnalyzer derives structured insight from one transcript chunk.
// Implementations must be thread-safe for concurrent use.
type CallAnalyzer interface {
	// Analyze extracts a summary, the feature requests voiced by the customer,
	// and the overall sentiment from a chunk of transcript text.
	// Returns an error if the model call fails or its reply cannot be parsed;
	// callers decide whether a failed chunk aborts the call or degrades to the
	// empty default.
	Analyze(ctx context.Context, transcriptText string) (core.AnalysisResult, error)
}

// ChatModel produces a conversational reply over an accumulated history.
type ChatModel interface {
	// Reply sends the history plus the new user prompt to the model and
	// returns the assistant text. History entries alternate user/assistant
	// in order; the system prompt is the implementation's concern.
	Reply(ctx context.Context, history []Message, prompt string) (string, error)
}

// Role identifies the author of a chat message.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAssistant
)

// Message is one turn of conversational history.
type Message struct {
	Role    Role
	Content string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder, CallAnalyzer and
// ChatModel instances, ensuring they share configuration appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Analyzer returns the structured call analysis service.
	// The returned CallAnalyzer is safe for concurrent use.
	Analyzer() CallAnalyzer

	// Chat returns the conversational reply service.
	Chat() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
