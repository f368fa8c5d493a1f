// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of rows embedded per API call
	BatchSize int

	// ReportInterval is how often to report progress (number of rows)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Workers is the worker pool size; the three corpora are independent
	// jobs, so more than three workers is never useful
	Workers int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Workers:        3,
	}
}

// Reembedder regenerates embeddings for every stored row in all corpora.
type Reembedder struct {
	callRepo    storage.CallRepository
	segmentRepo storage.SegmentRepository
	featureRepo storage.FeatureRepository
	embedder    ai.Embedder
	config      *Config
	progress    io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	callRepo storage.CallRepository,
	segmentRepo storage.SegmentRepository,
	featureRepo storage.FeatureRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		callRepo:    callRepo,
		segmentRepo: segmentRepo,
		featureRepo: featureRepo,
		embedder:    embedder,
		config:      config,
		progress:    progress,
	}
}

// corpusJob is one corpus's worth of rows to re-embed. Each row exposes its
// embedding source text and an update callback.
type corpusJob struct {
	name string
	rows []reembedRow
}

type reembedRow struct {
	text   string
	update func(ctx context.Context, vector []float32) error
}

// Run re-embeds every row of every corpus. Corpus jobs run concurrently on a
// worker pool; rows within a corpus are processed in batches.
func (r *Reembedder) Run(ctx context.Context) error {
	jobs, err := r.loadJobs(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, job := range jobs {
		total += len(job.rows)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No rows found in database (0 rows)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d rows (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	workers := r.config.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		jobErrs []error
	)
	for _, job := range jobs {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := r.processJob(ctx, job, tracker); err != nil {
				mu.Lock()
				jobErrs = append(jobErrs, fmt.Errorf("%s: %w", job.name, err))
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			jobErrs = append(jobErrs, fmt.Errorf("%s: %w", job.name, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(jobErrs) > 0 {
		return errors.Join(jobErrs...)
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d rows in %v (%.1f rows/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())
	return nil
}

// processJob embeds one corpus's rows in batches and applies the updates.
func (r *Reembedder) processJob(ctx context.Context, job corpusJob, tracker *ProgressTracker) error {
	for start := 0; start < len(job.rows); start += r.config.BatchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + r.config.BatchSize
		if end > len(job.rows) {
			end = len(job.rows)
		}
		batch := job.rows[start:end]

		texts := make([]string, len(batch))
		for i, row := range batch {
			texts[i] = row.text
		}

		var embeddings [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = r.embedder.EmbedTexts(ctx, texts)
			return err
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
		}

		for i, row := range batch {
			if err := row.update(ctx, NormalizeVector(embeddings[i])); err != nil {
				return fmt.Errorf("failed to update row: %w", err)
			}
		}
		tracker.Increment(len(batch))
	}
	return nil
}

// loadJobs collects every row of every corpus, paired with its embedding
// source text.
func (r *Reembedder) loadJobs(ctx context.Context) ([]corpusJob, error) {
	calls, err := r.callRepo.ListCalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}

	callJob := corpusJob{name: "summaries"}
	segmentJob := corpusJob{name: "segments"}
	for _, call := range calls {
		if call.Summary != "" {
			callJob.rows = append(callJob.rows, reembedRow{
				text: call.Summary,
				update: func(ctx context.Context, vector []float32) error {
					call.Vector = vector
					_, err := r.callRepo.UpdateCall(ctx, call)
					return err
				},
			})
		}

		segments, err := r.segmentRepo.GetSegmentsByCall(ctx, call.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to query segments for call %d: %w", call.Id, err)
		}
		for _, segment := range segments {
			segmentJob.rows = append(segmentJob.rows, reembedRow{
				text: segment.Content,
				update: func(ctx context.Context, vector []float32) error {
					segment.Vector = vector
					_, err := r.segmentRepo.UpdateSegment(ctx, segment)
					return err
				},
			})
		}
	}

	features, err := r.featureRepo.ListFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature requests: %w", err)
	}
	featureJob := corpusJob{name: "features"}
	for _, feature := range features {
		featureJob.rows = append(featureJob.rows, reembedRow{
			text: feature.EmbeddingText(),
			update: func(ctx context.Context, vector []float32) error {
				feature.Vector = vector
				_, err := r.featureRepo.UpdateFeature(ctx, feature)
				return err
			},
		})
	}

	return []corpusJob{callJob, segmentJob, featureJob}, nil
}
