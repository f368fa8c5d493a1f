package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
)

// Searcher runs similarity search across the three call corpora.
type Searcher struct {
	callRepository    storage.CallRepository
	segmentRepository storage.SegmentRepository
	featureRepository storage.FeatureRepository
	embedder          ai.Embedder
	config            Config
	logger            *slog.Logger
	now               func() time.Time
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the default search configuration.
func WithConfig(config Config) Option {
	return func(s *Searcher) error {
		s.config = config
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	callRepository storage.CallRepository,
	segmentRepository storage.SegmentRepository,
	featureRepository storage.FeatureRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if callRepository == nil {
		return nil, ErrCallRepositoryRequired
	}
	if segmentRepository == nil {
		return nil, ErrSegmentRepositoryRequired
	}
	if featureRepository == nil {
		return nil, ErrFeatureRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		callRepository:    callRepository,
		segmentRepository: segmentRepository,
		featureRepository: featureRepository,
		embedder:          provider.Embedder(),
		config:            DefaultConfig(),
		logger:            slog.Default(),
		now:               time.Now,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Request is one corpus search. Threshold and Limit override the corpus
// defaults when non-zero. Recent restricts segment and feature matches to the
// configured recency window; it has no effect on summaries.
type Request struct {
	Corpus    core.Corpus
	Query     string
	Threshold float32
	Limit     int
	Recent    bool
}

// Results groups one query's matches across all three corpora.
type Results struct {
	Summaries []*core.SearchResult
	Segments  []*core.SearchResult
	Features  []*core.SearchResult
}

// Empty returns true when no corpus produced a match.
func (r *Results) Empty() bool {
	return len(r.Summaries) == 0 && len(r.Segments) == 0 && len(r.Features) == 0
}

// Search runs one corpus search: embed the query once, page the backing
// store in small batches, and rank the collected matches by similarity.
// Batch failures degrade to partial or empty results, never an error.
func (s *Searcher) Search(ctx context.Context, req Request) ([]*core.SearchResult, error) {
	repo, threshold, limit, since, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	vector, err := s.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", req.Query, "err", err)
		return nil, err
	}

	batchSize := s.config.BatchSize
	if batchSize <= 0 || batchSize > limit {
		batchSize = limit
	}

	var collected []*core.SearchResult
	for offset := 0; len(collected) < limit; offset += batchSize {
		batch := s.fetchBatch(ctx, repo, vector, threshold, batchSize, offset, since)
		collected = append(collected, batch.results...)

		if batch.status == batchExhausted {
			break
		}
		if len(batch.results) < batchSize {
			// Corpus exhausted
			break
		}
	}

	slices.SortFunc(collected, func(a, b *core.SearchResult) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})
	if len(collected) > limit {
		collected = collected[:limit]
	}

	s.fillTitles(ctx, collected)
	return collected, nil
}

// SearchAll runs the same query against all three corpora with their default
// thresholds and limits.
func (s *Searcher) SearchAll(ctx context.Context, query string, recent bool) (*Results, error) {
	results := &Results{}

	var err error
	results.Summaries, err = s.Search(ctx, Request{Corpus: core.CorpusSummaries, Query: query})
	if err != nil {
		return nil, err
	}
	results.Segments, err = s.Search(ctx, Request{Corpus: core.CorpusSegments, Query: query, Recent: recent})
	if err != nil {
		return nil, err
	}
	results.Features, err = s.Search(ctx, Request{Corpus: core.CorpusFeatures, Query: query, Recent: recent})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// resolve maps a request onto its repository, effective threshold and limit,
// and recency cutoff.
func (s *Searcher) resolve(req Request) (storage.Repository, float32, int, time.Time, error) {
	var (
		repo      storage.Repository
		threshold float32
		limit     int
		dated     bool
	)

	switch req.Corpus {
	case core.CorpusSummaries:
		repo, threshold, limit = s.callRepository, s.config.SummaryThreshold, s.config.SummaryLimit
	case core.CorpusSegments:
		repo, threshold, limit = s.segmentRepository, s.config.SegmentThreshold, s.config.SegmentLimit
		dated = true
	case core.CorpusFeatures:
		repo, threshold, limit = s.featureRepository, s.config.FeatureThreshold, s.config.FeatureLimit
		dated = true
	default:
		return nil, 0, 0, time.Time{}, ErrUnknownCorpus
	}

	if req.Threshold > 0 {
		threshold = req.Threshold
	}
	if req.Limit > 0 {
		limit = req.Limit
	}

	var since time.Time
	if dated && req.Recent && s.config.RecencyWindow > 0 {
		since = s.now().Add(-s.config.RecencyWindow)
	}
	return repo, threshold, limit, since, nil
}

// batchStatus classifies the outcome of one paged batch.
type batchStatus int

const (
	batchOK        batchStatus = iota + 1 // succeeded on first attempt
	batchPartial                          // succeeded after threshold escalation
	batchExhausted                        // all attempts failed
)

type batchResult struct {
	status  batchStatus
	results []*core.SearchResult
}

// fetchBatch fetches one page, retrying with an escalated threshold on each
// failure. Attempt n uses threshold base + n*step.
func (s *Searcher) fetchBatch(ctx context.Context, repo storage.Repository, vector []float32, base float32, limit, offset int, since time.Time) batchResult {
	maxAttempts := s.config.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		threshold := base + float32(attempt)*s.config.Retry.ThresholdStep

		results, err := repo.FindSimilar(ctx, vector, threshold, limit, offset, since)
		if err == nil {
			status := batchOK
			if attempt > 0 {
				status = batchPartial
			}
			return batchResult{status: status, results: results}
		}

		s.logger.Warn("batch search failed",
			"offset", offset,
			"attempt", attempt+1,
			"maxAttempts", maxAttempts,
			"threshold", threshold,
			"timeout", isTimeout(err),
			"err", err)
	}

	return batchResult{status: batchExhausted}
}

// fillTitles backfills call titles on segment and feature results, which do
// not carry the title in their own rows.
func (s *Searcher) fillTitles(ctx context.Context, results []*core.SearchResult) {
	titles := make(map[core.ID]string)
	for _, result := range results {
		if result.Title != "" {
			continue
		}
		title, ok := titles[result.CallId]
		if !ok {
			call, err := s.callRepository.GetCall(ctx, result.CallId)
			if err != nil {
				s.logger.Debug("title lookup failed", "callId", result.CallId, "err", err)
				titles[result.CallId] = ""
				continue
			}
			title = call.Title
			titles[result.CallId] = title
		}
		result.Title = title
	}
}

// isTimeout reports whether an error message looks like a timeout. Backing
// stores do not expose a typed timeout, so detection is by message.
func isTimeout(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "timeout")
}
