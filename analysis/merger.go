package analysis

import (
	"context"
	"log/slog"
	"strings"

	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/transcript"
)

// Merger analyzes a transcript chunk by chunk and merges the results.
// A failed chunk contributes an empty analysis rather than failing the call.
type Merger struct {
	analyzer ai.CallAnalyzer
	chunker  *transcript.Chunker
	logger   *slog.Logger
}

// NewMerger creates a Merger using the default chunker.
func NewMerger(analyzer ai.CallAnalyzer) *Merger {
	return &Merger{
		analyzer: analyzer,
		chunker:  transcript.DefaultChunker(),
		logger:   slog.Default().With("component", "analysis"),
	}
}

// AnalyzeCall analyzes the full transcript text of one call.
func (m *Merger) AnalyzeCall(ctx context.Context, transcriptText string) (core.AnalysisResult, error) {
	chunks := m.chunker.Chunk(transcriptText)
	if len(chunks) == 0 {
		return core.EmptyAnalysis(), nil
	}

	results := make([]core.AnalysisResult, 0, len(chunks))
	for i, chunk := range chunks {
		select {
		case <-ctx.Done():
			return core.EmptyAnalysis(), ctx.Err()
		default:
		}

		result, err := m.analyzer.Analyze(ctx, chunk)
		if err != nil {
			m.logger.Warn("chunk analysis failed", "chunk", i, "chunks", len(chunks), "error", err)
			result = core.EmptyAnalysis()
		}
		results = append(results, result)
	}

	return MergeResults(results), nil
}

// MergeResults combines per-chunk analyses into one call-level result.
// Summaries are concatenated in chunk order, feature requests accumulate, and
// the overall sentiment is the majority vote across chunks.
func MergeResults(results []core.AnalysisResult) core.AnalysisResult {
	if len(results) == 1 {
		return results[0]
	}

	merged := core.AnalysisResult{
		Sentiment: core.SentimentUnknown,
	}

	var summaries []string
	votes := make(map[core.Sentiment]int)
	for _, result := range results {
		if result.Summary != "" {
			summaries = append(summaries, result.Summary)
		}
		merged.FeatureRequests = append(merged.FeatureRequests, result.FeatureRequests...)
		if result.Sentiment != core.SentimentUnknown {
			votes[result.Sentiment]++
		}
	}
	merged.Summary = strings.Join(summaries, " ")

	// Ties resolve in declaration order, positive before negative before
	// neutral.
	best := 0
	for _, sentiment := range core.Sentiments {
		if votes[sentiment] > best {
			best = votes[sentiment]
			merged.Sentiment = sentiment
		}
	}
	return merged
}
