package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callvista/callsight/ai/mock"
	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
	"github.com/callvista/callsight/storage/badger"
)

func seedRepositories(t *testing.T) (storage.CallRepository, storage.SegmentRepository, storage.FeatureRepository, *core.Call) {
	t.Helper()

	callRepo, segmentRepo, featureRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		featureRepo.Close()
		segmentRepo.Close()
		callRepo.Close()
		backend.Close()
	})

	ctx := context.Background()
	call, err := callRepo.AddCall(ctx, &core.Call{
		SourceId:  "gong-1",
		Title:     "Acme Corp | Discovery Call",
		StartTime: time.Now().Add(-time.Hour),
		Summary:   "Intro call covering pricing.",
		Sentiment: core.SentimentPositive,
		Vector:    []float32{9, 9},
	})
	require.NoError(t, err)

	_, err = segmentRepo.AddSegments(ctx, &core.TranscriptSegment{
		CallId:  call.Id,
		Seq:     0,
		Speaker: "1",
		Content: "We really need CSV export.",
		Vector:  []float32{9, 9},
	})
	require.NoError(t, err)

	_, err = featureRepo.AddFeatures(ctx, &core.FeatureRequest{
		CallId:   call.Id,
		Request:  "CSV export",
		Context:  "We really need CSV export",
		Priority: core.PriorityHigh,
		Vector:   []float32{9, 9},
	})
	require.NoError(t, err)

	return callRepo, segmentRepo, featureRepo, call
}

func TestReembedderUpdatesAllCorpora(t *testing.T) {
	callRepo, segmentRepo, featureRepo, call := seedRepositories(t)

	embedder := mock.NewMockEmbedder()
	var embedded []string
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded = append(embedded, texts...)
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3, 4}
		}
		return vectors, nil
	}

	var progress bytes.Buffer
	reembedder := NewReembedder(callRepo, segmentRepo, featureRepo, embedder, nil, &progress)
	require.NoError(t, reembedder.Run(context.Background()))

	assert.Contains(t, embedded, "Intro call covering pricing.")
	assert.Contains(t, embedded, "We really need CSV export.")
	assert.Contains(t, embedded, "CSV export We really need CSV export")

	ctx := context.Background()

	// All stored vectors replaced with the normalized embedding
	updatedCall, err := callRepo.GetCall(ctx, call.Id)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, updatedCall.Vector[0], 0.0001)
	assert.InDelta(t, 0.8, updatedCall.Vector[1], 0.0001)

	segments, err := segmentRepo.GetSegmentsByCall(ctx, call.Id)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.InDelta(t, 0.6, segments[0].Vector[0], 0.0001)

	features, err := featureRepo.GetFeaturesByCall(ctx, call.Id)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.InDelta(t, 0.8, features[0].Vector[1], 0.0001)

	assert.Contains(t, progress.String(), "Reembedding complete.")
}

func TestReembedderEmptyDatabase(t *testing.T) {
	callRepo, segmentRepo, featureRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		featureRepo.Close()
		segmentRepo.Close()
		callRepo.Close()
		backend.Close()
	}()

	var progress bytes.Buffer
	reembedder := NewReembedder(callRepo, segmentRepo, featureRepo, mock.NewMockEmbedder(), nil, &progress)
	require.NoError(t, reembedder.Run(context.Background()))

	assert.Contains(t, progress.String(), "No rows found")
}

func TestReembedderEmbeddingFailure(t *testing.T) {
	callRepo, segmentRepo, featureRepo, _ := seedRepositories(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = time.Millisecond

	var progress bytes.Buffer
	reembedder := NewReembedder(callRepo, segmentRepo, featureRepo, embedder, config, &progress)
	err := reembedder.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service down")
}
