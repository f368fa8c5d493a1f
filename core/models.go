package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Sentiment is the overall product sentiment expressed on a call.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	// SentimentUnknown is the recovery default when analysis of a chunk fails.
	SentimentUnknown Sentiment = "unknown"
)

// Sentiments lists the votable sentiment values in tie-break order.
// A merge across chunks resolves ties by picking the first maximum in this order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// Priority is the customer emphasis attached to a feature request.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Call represents one ingested sales call with its derived analysis.
// Calls are immutable after persistence; reprocessing is delete and reinsert.
type Call struct {
	Id         ID
	SourceId   string // Call id assigned by the upstream recording provider
	Title      string
	Duration   time.Duration
	StartTime  time.Time
	Transcript string // Full speaker-annotated transcript text
	Summary    string
	Sentiment  Sentiment
	Vector     []float32 // Embedding of Summary
	InsertedAt time.Time
}

// TranscriptSegment is one uninterrupted speaker turn within a call.
type TranscriptSegment struct {
	Id        ID
	CallId    ID  // Owning call row id
	Seq       int // Position of the turn within the call, starting at 0
	Speaker   string
	Content   string
	StartMs   int64 // Turn start relative to call start, -1 when unknown
	CallStart time.Time
	Vector    []float32 // Embedding of Content
}

// FeatureRequest is a product request extracted from a call by analysis.
type FeatureRequest struct {
	Id        ID
	CallId    ID // Owning call row id
	Request   string
	Context   string // Verbatim customer quote surrounding the request
	Priority  Priority
	CallStart time.Time
	Vector    []float32 // Embedding of Request + " " + Context
}

// EmbeddingText returns the exact text the feature embedding is computed from.
func (f *FeatureRequest) EmbeddingText() string {
	return f.Request + " " + f.Context
}

// FeatureExtract is a feature request as returned by the language model,
// before it is attached to a call.
type FeatureExtract struct {
	Request  string
	Context  string
	Priority Priority
}

// AnalysisResult is the structured analysis of one transcript chunk,
// or of a whole call after merging. It is never persisted directly.
type AnalysisResult struct {
	Summary         string
	FeatureRequests []FeatureExtract
	Sentiment       Sentiment
}

// EmptyAnalysis returns the recovery default used when a chunk cannot be analyzed.
func EmptyAnalysis() AnalysisResult {
	return AnalysisResult{
		Summary:         "",
		FeatureRequests: []FeatureExtract{},
		Sentiment:       SentimentUnknown,
	}
}

// Corpus names one of the three searchable collections.
type Corpus string

const (
	CorpusSummaries Corpus = "summaries"
	CorpusSegments  Corpus = "segments"
	CorpusFeatures  Corpus = "features"
)

// SearchResult is one corpus-tagged similarity match.
// Only the fields relevant to the corpus are populated.
type SearchResult struct {
	Corpus     Corpus
	CallId     ID
	Title      string
	Content    string
	Similarity float32

	// Segment fields
	Speaker string
	StartMs int64

	// Feature fields
	Request  string
	Context  string
	Priority Priority
}
