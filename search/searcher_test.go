package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callvista/callsight/ai/mock"
	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
)

// findSimilarFunc is the FindSimilar shape shared by all fakes.
type findSimilarFunc func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error)

type fakeCallRepo struct {
	findSimilar findSimilarFunc
	calls       map[core.ID]*core.Call
}

func (f *fakeCallRepo) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
	if f.findSimilar == nil {
		return nil, nil
	}
	return f.findSimilar(ctx, vector, minSimilarity, limit, offset, since)
}

func (f *fakeCallRepo) Close() error { return nil }

func (f *fakeCallRepo) AddCall(ctx context.Context, call *core.Call) (*core.Call, error) {
	return call, nil
}

func (f *fakeCallRepo) GetCall(ctx context.Context, id core.ID) (*core.Call, error) {
	if call, ok := f.calls[id]; ok {
		return call, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeCallRepo) GetCallBySourceId(ctx context.Context, sourceId string) (*core.Call, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeCallRepo) ListCalls(ctx context.Context) ([]*core.Call, error) { return nil, nil }

func (f *fakeCallRepo) DeleteCall(ctx context.Context, id core.ID) error { return storage.ErrNotFound }

func (f *fakeCallRepo) UpdateCall(ctx context.Context, call *core.Call) (*core.Call, error) {
	return call, nil
}

type fakeSegmentRepo struct {
	findSimilar findSimilarFunc
}

func (f *fakeSegmentRepo) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
	if f.findSimilar == nil {
		return nil, nil
	}
	return f.findSimilar(ctx, vector, minSimilarity, limit, offset, since)
}

func (f *fakeSegmentRepo) Close() error { return nil }

func (f *fakeSegmentRepo) AddSegments(ctx context.Context, segments ...*core.TranscriptSegment) ([]*core.TranscriptSegment, error) {
	return segments, nil
}

func (f *fakeSegmentRepo) GetSegmentsByCall(ctx context.Context, callId core.ID) ([]*core.TranscriptSegment, error) {
	return nil, nil
}

func (f *fakeSegmentRepo) DeleteSegmentsByCall(ctx context.Context, callId core.ID) error {
	return nil
}

func (f *fakeSegmentRepo) UpdateSegment(ctx context.Context, segment *core.TranscriptSegment) (*core.TranscriptSegment, error) {
	return segment, nil
}

type fakeFeatureRepo struct {
	findSimilar findSimilarFunc
}

func (f *fakeFeatureRepo) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
	if f.findSimilar == nil {
		return nil, nil
	}
	return f.findSimilar(ctx, vector, minSimilarity, limit, offset, since)
}

func (f *fakeFeatureRepo) Close() error { return nil }

func (f *fakeFeatureRepo) AddFeatures(ctx context.Context, features ...*core.FeatureRequest) ([]*core.FeatureRequest, error) {
	return features, nil
}

func (f *fakeFeatureRepo) GetFeaturesByCall(ctx context.Context, callId core.ID) ([]*core.FeatureRequest, error) {
	return nil, nil
}

func (f *fakeFeatureRepo) ListFeatures(ctx context.Context) ([]*core.FeatureRequest, error) {
	return nil, nil
}

func (f *fakeFeatureRepo) DeleteFeaturesByCall(ctx context.Context, callId core.ID) error {
	return nil
}

func (f *fakeFeatureRepo) UpdateFeature(ctx context.Context, feature *core.FeatureRequest) (*core.FeatureRequest, error) {
	return feature, nil
}

func newTestSearcher(t *testing.T, callRepo *fakeCallRepo, opts ...Option) *Searcher {
	t.Helper()
	if callRepo == nil {
		callRepo = &fakeCallRepo{}
	}
	s, err := NewSearcher(callRepo, &fakeSegmentRepo{}, &fakeFeatureRepo{}, mock.NewMockProvider(), opts...)
	require.NoError(t, err)
	return s
}

func TestNewSearcher(t *testing.T) {
	callRepo := &fakeCallRepo{}
	segmentRepo := &fakeSegmentRepo{}
	featureRepo := &fakeFeatureRepo{}
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(callRepo, segmentRepo, featureRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil call repository", func(t *testing.T) {
		_, err := NewSearcher(nil, segmentRepo, featureRepo, provider)
		assert.Equal(t, ErrCallRepositoryRequired, err)
	})

	t.Run("nil segment repository", func(t *testing.T) {
		_, err := NewSearcher(callRepo, nil, featureRepo, provider)
		assert.Equal(t, ErrSegmentRepositoryRequired, err)
	})

	t.Run("nil feature repository", func(t *testing.T) {
		_, err := NewSearcher(callRepo, segmentRepo, nil, provider)
		assert.Equal(t, ErrFeatureRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(callRepo, segmentRepo, featureRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestSearchRanksAndTruncates(t *testing.T) {
	// Collected results arrive unsorted; final output is re-sorted and
	// truncated to the limit
	callRepo := &fakeCallRepo{
		findSimilar: func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
			if offset > 0 {
				return nil, nil
			}
			return []*core.SearchResult{
				{Corpus: core.CorpusSummaries, CallId: 1, Title: "A", Similarity: 0.3},
				{Corpus: core.CorpusSummaries, CallId: 2, Title: "B", Similarity: 0.9},
				{Corpus: core.CorpusSummaries, CallId: 3, Title: "C", Similarity: 0.6},
			}, nil
		},
	}

	s := newTestSearcher(t, callRepo)
	results, err := s.Search(context.Background(), Request{
		Corpus: core.CorpusSummaries,
		Query:  "pricing",
		Limit:  2,
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.InDelta(t, 0.9, results[0].Similarity, 1e-6)
	assert.InDelta(t, 0.6, results[1].Similarity, 1e-6)
}

func TestSearchThresholdEscalation(t *testing.T) {
	var thresholds []float32
	attempts := 0
	callRepo := &fakeCallRepo{
		findSimilar: func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
			attempts++
			thresholds = append(thresholds, minSimilarity)
			if attempts < 3 {
				return nil, errors.New("canceling statement due to statement timeout")
			}
			return []*core.SearchResult{
				{Corpus: core.CorpusSummaries, CallId: 1, Similarity: 0.7},
			}, nil
		},
	}

	s := newTestSearcher(t, callRepo)
	results, err := s.Search(context.Background(), Request{
		Corpus:    core.CorpusSummaries,
		Query:     "pricing",
		Threshold: 0.5,
		Limit:     2,
	})
	require.NoError(t, err)

	// Third attempt runs at base + 2*step
	require.Len(t, thresholds, 3)
	assert.InDelta(t, 0.5, thresholds[0], 1e-6)
	assert.InDelta(t, 0.55, thresholds[1], 1e-6)
	assert.InDelta(t, 0.6, thresholds[2], 1e-6)

	require.Len(t, results, 1)
	assert.InDelta(t, 0.7, results[0].Similarity, 1e-6)
}

func TestSearchExhaustedRetriesYieldEmpty(t *testing.T) {
	attempts := 0
	callRepo := &fakeCallRepo{
		findSimilar: func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
			attempts++
			return nil, errors.New("boom")
		},
	}

	s := newTestSearcher(t, callRepo)
	results, err := s.Search(context.Background(), Request{
		Corpus: core.CorpusSummaries,
		Query:  "anything",
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, DefaultConfig().Retry.MaxAttempts, attempts)
}

func TestSearchStopsOnShortBatch(t *testing.T) {
	calls := 0
	callRepo := &fakeCallRepo{
		findSimilar: func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
			calls++
			// Fewer rows than requested: corpus exhausted
			return []*core.SearchResult{
				{Corpus: core.CorpusSummaries, CallId: 1, Similarity: 0.8},
			}, nil
		},
	}

	s := newTestSearcher(t, callRepo)
	results, err := s.Search(context.Background(), Request{
		Corpus: core.CorpusSummaries,
		Query:  "pricing",
		Limit:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Len(t, results, 1)
}

func TestSearchRecencyFilter(t *testing.T) {
	var capturedSince time.Time
	segmentRepo := &fakeSegmentRepo{
		findSimilar: func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
			capturedSince = since
			return nil, nil
		},
	}

	s, err := NewSearcher(&fakeCallRepo{}, segmentRepo, &fakeFeatureRepo{}, mock.NewMockProvider())
	require.NoError(t, err)

	t.Run("recent restricts to the trailing window", func(t *testing.T) {
		_, err := s.Search(context.Background(), Request{
			Corpus: core.CorpusSegments,
			Query:  "pricing",
			Recent: true,
		})
		require.NoError(t, err)
		require.False(t, capturedSince.IsZero())

		expected := time.Now().Add(-DefaultConfig().RecencyWindow)
		assert.WithinDuration(t, expected, capturedSince, time.Minute)
	})

	t.Run("no filter when recent is off", func(t *testing.T) {
		_, err := s.Search(context.Background(), Request{
			Corpus: core.CorpusSegments,
			Query:  "pricing",
		})
		require.NoError(t, err)
		assert.True(t, capturedSince.IsZero())
	})
}

func TestSearchBackfillsTitles(t *testing.T) {
	callRepo := &fakeCallRepo{
		calls: map[core.ID]*core.Call{
			7: {Id: 7, Title: "Acme Corp | Discovery Call"},
		},
	}
	segmentRepo := &fakeSegmentRepo{
		findSimilar: func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
			return []*core.SearchResult{
				{Corpus: core.CorpusSegments, CallId: 7, Content: "some turn", Similarity: 0.95},
			}, nil
		},
	}

	s, err := NewSearcher(callRepo, segmentRepo, &fakeFeatureRepo{}, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := s.Search(context.Background(), Request{
		Corpus: core.CorpusSegments,
		Query:  "pricing",
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Acme Corp | Discovery Call", results[0].Title)
}

func TestSearchUnknownCorpus(t *testing.T) {
	s := newTestSearcher(t, nil)
	_, err := s.Search(context.Background(), Request{Corpus: core.Corpus("bogus"), Query: "q"})
	assert.Equal(t, ErrUnknownCorpus, err)
}

func TestSearchAll(t *testing.T) {
	callRepo := &fakeCallRepo{
		findSimilar: func(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
			return []*core.SearchResult{
				{Corpus: core.CorpusSummaries, CallId: 1, Title: "A", Similarity: 0.8},
			}, nil
		},
	}

	s, err := NewSearcher(callRepo, &fakeSegmentRepo{}, &fakeFeatureRepo{}, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := s.SearchAll(context.Background(), "pricing", true)
	require.NoError(t, err)

	assert.Len(t, results.Summaries, 1)
	assert.Empty(t, results.Segments)
	assert.Empty(t, results.Features)
	assert.False(t, results.Empty())
}
