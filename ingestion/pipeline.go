package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/analysis"
	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/gong"
	"github.com/callvista/callsight/storage"
	"github.com/callvista/callsight/transcript"
)

// DefaultMinCallDuration filters out calls too short to contain useful
// signal.
const DefaultMinCallDuration = 10 * time.Second

// CallSource lists calls and fetches their transcripts.
type CallSource interface {
	ListCalls(ctx context.Context, from, to time.Time) ([]gong.Call, error)
	GetTranscript(ctx context.Context, callId string) ([]transcript.Turn, error)
}

// Stats summarizes one ingestion run.
type Stats struct {
	Listed   int
	Ingested int
	Skipped  int
	Failed   int
}

// Pipeline ingests calls from a source into the three corpora.
type Pipeline struct {
	source      CallSource
	callRepo    storage.CallRepository
	segmentRepo storage.SegmentRepository
	featureRepo storage.FeatureRepository
	embedder    ai.Embedder
	merger      *analysis.Merger
	minDuration time.Duration
	logger      *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMinCallDuration overrides the admission filter.
// A zero duration admits every call.
func WithMinCallDuration(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.minDuration = d
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	source CallSource,
	callRepo storage.CallRepository,
	segmentRepo storage.SegmentRepository,
	featureRepo storage.FeatureRepository,
	provider ai.AIProvider,
	opts ...PipelineOption,
) (*Pipeline, error) {
	if source == nil {
		return nil, ErrCallSourceRequired
	}
	if callRepo == nil {
		return nil, ErrCallRepositoryRequired
	}
	if segmentRepo == nil {
		return nil, ErrSegmentRepositoryRequired
	}
	if featureRepo == nil {
		return nil, ErrFeatureRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		source:      source,
		callRepo:    callRepo,
		segmentRepo: segmentRepo,
		featureRepo: featureRepo,
		embedder:    provider.Embedder(),
		merger:      analysis.NewMerger(provider.Analyzer()),
		minDuration: DefaultMinCallDuration,
		logger:      slog.Default().With("component", "ingestion"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run ingests all calls that started within [from, to]. Calls below the
// minimum duration and calls already ingested are skipped. Per-call failures
// are logged and counted, not propagated.
func (p *Pipeline) Run(ctx context.Context, from, to time.Time) (Stats, error) {
	calls, err := p.source.ListCalls(ctx, from, to)
	if err != nil {
		return Stats{}, fmt.Errorf("listing calls: %w", err)
	}

	stats := Stats{Listed: len(calls)}
	for _, call := range calls {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		duration := time.Duration(call.Duration) * time.Second
		if duration < p.minDuration {
			p.logger.Debug("skipping short call", "callId", call.Id, "duration", duration)
			stats.Skipped++
			continue
		}

		existing, err := p.callRepo.GetCallBySourceId(ctx, call.Id)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			p.logger.Error("duplicate check failed", "callId", call.Id, "err", err)
			stats.Failed++
			continue
		}
		if existing != nil {
			p.logger.Debug("call already ingested", "callId", call.Id, "rowId", existing.Id)
			stats.Skipped++
			continue
		}

		if err := p.ingestCall(ctx, call); err != nil {
			p.logger.Error("call ingestion failed", "callId", call.Id, "title", call.Title, "err", err)
			stats.Failed++
			continue
		}
		stats.Ingested++
	}

	p.logger.Info("ingestion complete",
		"listed", stats.Listed,
		"ingested", stats.Ingested,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}

// ingestCall processes one call end to end. Any error here is fatal for this
// call only.
func (p *Pipeline) ingestCall(ctx context.Context, call gong.Call) error {
	turns, err := p.source.GetTranscript(ctx, call.Id)
	if err != nil {
		return fmt.Errorf("fetching transcript: %w", err)
	}

	text := transcript.FlattenText(turns)
	if text == "" {
		return ErrEmptyTranscript
	}

	result, err := p.merger.AnalyzeCall(ctx, text)
	if err != nil {
		return fmt.Errorf("analyzing transcript: %w", err)
	}

	var summaryVector []float32
	if result.Summary != "" {
		summaryVector, err = p.embedder.EmbedText(ctx, result.Summary)
		if err != nil {
			return fmt.Errorf("embedding summary: %w", err)
		}
	}

	stored, err := p.callRepo.AddCall(ctx, &core.Call{
		SourceId:   call.Id,
		Title:      call.Title,
		Duration:   time.Duration(call.Duration) * time.Second,
		StartTime:  call.Started,
		Transcript: text,
		Summary:    result.Summary,
		Sentiment:  result.Sentiment,
		Vector:     summaryVector,
	})
	if err != nil {
		return fmt.Errorf("storing call: %w", err)
	}

	if err := p.storeSegments(ctx, turns, stored); err != nil {
		return err
	}
	if err := p.storeFeatures(ctx, result.FeatureRequests, stored); err != nil {
		return err
	}

	p.logger.Info("call ingested",
		"callId", call.Id,
		"rowId", stored.Id,
		"features", len(result.FeatureRequests))
	return nil
}

// storeSegments embeds and persists the call's speaker turns. Segment rows
// carry the generated call row id, not the provider's call id.
func (p *Pipeline) storeSegments(ctx context.Context, turns []transcript.Turn, call *core.Call) error {
	segments := transcript.FlattenSegments(turns, call.Id, call.StartTime)
	if len(segments) == 0 {
		return nil
	}

	contents := make([]string, len(segments))
	for i, segment := range segments {
		contents[i] = segment.Content
	}

	vectors, err := p.embedder.EmbedTexts(ctx, contents)
	if err != nil {
		return fmt.Errorf("embedding segments: %w", err)
	}
	if len(vectors) != len(segments) {
		return fmt.Errorf("embedding segments: got %d vectors for %d segments", len(vectors), len(segments))
	}
	for i, vector := range vectors {
		segments[i].Vector = vector
	}

	if _, err := p.segmentRepo.AddSegments(ctx, segments...); err != nil {
		return fmt.Errorf("storing segments: %w", err)
	}
	return nil
}

// storeFeatures embeds and persists the extracted feature requests.
func (p *Pipeline) storeFeatures(ctx context.Context, extracts []core.FeatureExtract, call *core.Call) error {
	if len(extracts) == 0 {
		return nil
	}

	features := make([]*core.FeatureRequest, 0, len(extracts))
	for _, extract := range extracts {
		feature := &core.FeatureRequest{
			CallId:    call.Id,
			Request:   extract.Request,
			Context:   extract.Context,
			Priority:  extract.Priority,
			CallStart: call.StartTime,
		}

		vector, err := p.embedder.EmbedText(ctx, feature.EmbeddingText())
		if err != nil {
			return fmt.Errorf("embedding feature request: %w", err)
		}
		feature.Vector = vector
		features = append(features, feature)
	}

	if _, err := p.featureRepo.AddFeatures(ctx, features...); err != nil {
		return fmt.Errorf("storing feature requests: %w", err)
	}
	return nil
}
