package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callvista/callsight/ai/mock"
	"github.com/callvista/callsight/core"
)

func TestMergeResultsSentimentMajority(t *testing.T) {
	results := []core.AnalysisResult{
		{Sentiment: core.SentimentPositive},
		{Sentiment: core.SentimentPositive},
		{Sentiment: core.SentimentNegative},
	}
	merged := MergeResults(results)
	assert.Equal(t, core.SentimentPositive, merged.Sentiment)
}

func TestMergeResultsSentimentTie(t *testing.T) {
	// Ties resolve to the first value in enumeration order
	results := []core.AnalysisResult{
		{Sentiment: core.SentimentNegative},
		{Sentiment: core.SentimentPositive},
	}
	merged := MergeResults(results)
	assert.Equal(t, core.SentimentPositive, merged.Sentiment)
}

func TestMergeResultsUnknownDoesNotVote(t *testing.T) {
	results := []core.AnalysisResult{
		{Sentiment: core.SentimentUnknown},
		{Sentiment: core.SentimentUnknown},
		{Sentiment: core.SentimentNegative},
	}
	merged := MergeResults(results)
	assert.Equal(t, core.SentimentNegative, merged.Sentiment)

	allUnknown := MergeResults([]core.AnalysisResult{
		{Sentiment: core.SentimentUnknown},
		{Sentiment: core.SentimentUnknown},
	})
	assert.Equal(t, core.SentimentUnknown, allUnknown.Sentiment)
}

func TestMergeResultsSummariesAndFeatures(t *testing.T) {
	results := []core.AnalysisResult{
		{
			Summary:         "First half of the call.",
			FeatureRequests: []core.FeatureExtract{{Request: "CSV export", Priority: core.PriorityHigh}},
			Sentiment:       core.SentimentPositive,
		},
		{
			Summary:   "",
			Sentiment: core.SentimentUnknown,
		},
		{
			Summary:         "Second half of the call.",
			FeatureRequests: []core.FeatureExtract{{Request: "SSO support", Priority: core.PriorityMedium}},
			Sentiment:       core.SentimentPositive,
		},
	}

	merged := MergeResults(results)
	assert.Equal(t, "First half of the call. Second half of the call.", merged.Summary)
	require.Len(t, merged.FeatureRequests, 2)
	assert.Equal(t, "CSV export", merged.FeatureRequests[0].Request)
	assert.Equal(t, "SSO support", merged.FeatureRequests[1].Request)
}

func TestAnalyzeCallSingleChunk(t *testing.T) {
	analyzer := mock.NewMockAnalyzer()
	analyzer.AnalyzeFunc = func(ctx context.Context, transcriptText string) (core.AnalysisResult, error) {
		return core.AnalysisResult{
			Summary:   "Short call about pricing.",
			Sentiment: core.SentimentNeutral,
		}, nil
	}

	merger := NewMerger(analyzer)
	result, err := merger.AnalyzeCall(context.Background(), "Speaker 1: How much does it cost?")
	require.NoError(t, err)

	assert.Equal(t, "Short call about pricing.", result.Summary)
	assert.Equal(t, core.SentimentNeutral, result.Sentiment)
	assert.Equal(t, 1, analyzer.CallCount())
}

func TestAnalyzeCallFailedChunkUsesEmptyDefault(t *testing.T) {
	analyzer := mock.NewMockAnalyzer()
	analyzer.AnalyzeFunc = func(ctx context.Context, transcriptText string) (core.AnalysisResult, error) {
		return core.AnalysisResult{}, errors.New("model returned garbage")
	}

	merger := NewMerger(analyzer)
	result, err := merger.AnalyzeCall(context.Background(), "Speaker 1: Hello")
	require.NoError(t, err)

	assert.Equal(t, "", result.Summary)
	assert.Empty(t, result.FeatureRequests)
	assert.Equal(t, core.SentimentUnknown, result.Sentiment)
}

func TestAnalyzeCallMergesAcrossChunks(t *testing.T) {
	var lines []string
	for i := 0; i < 800; i++ {
		lines = append(lines, fmt.Sprintf("Speaker %d: utterance %04d with some padding text", i%2, i))
	}
	text := strings.Join(lines, "\n")

	chunkNum := 0
	analyzer := mock.NewMockAnalyzer()
	analyzer.AnalyzeFunc = func(ctx context.Context, transcriptText string) (core.AnalysisResult, error) {
		chunkNum++
		return core.AnalysisResult{
			Summary:   fmt.Sprintf("Part %d.", chunkNum),
			Sentiment: core.SentimentPositive,
		}, nil
	}

	merger := NewMerger(analyzer)
	result, err := merger.AnalyzeCall(context.Background(), text)
	require.NoError(t, err)

	assert.Greater(t, analyzer.CallCount(), 1)
	assert.Equal(t, core.SentimentPositive, result.Sentiment)

	// Summaries concatenate in chunk order
	assert.True(t, strings.HasPrefix(result.Summary, "Part 1. Part 2."), "summary = %q", result.Summary)
}

func TestAnalyzeCallEmptyTranscript(t *testing.T) {
	merger := NewMerger(mock.NewMockAnalyzer())
	result, err := merger.AnalyzeCall(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, core.EmptyAnalysis(), result)
}
