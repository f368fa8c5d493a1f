// Package reembed regenerates the stored embeddings for all three corpora
// after an embedding-model change.
//
// Each embedding is recomputed from the exact source text stored alongside
// it: call summaries from Summary, segments from Content, feature requests
// from request + context. The three corpora are processed on a worker pool,
// with batched embedding calls, retry with exponential backoff, and progress
// reporting.
package reembed
