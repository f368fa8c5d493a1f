package storage

import (
	"context"
	"time"

	"github.com/callvista/callsight/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds records in this repository's corpus similar to the
	// given vector. Returns records with similarity >= minSimilarity, ordered
	// by similarity (highest first), skipping the first offset matches and
	// returning at most limit rows. A non-zero since restricts matches to
	// records whose call started at or after that time.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error)

	// Close closes the repository and releases resources.
	Close() error
}

// CallRepository provides operations for managing call rows.
type CallRepository interface {
	Repository

	// AddCall adds a call row to storage. Generates a new row ID from
	// sequence and sets InsertedAt. Returns the call with ID populated.
	AddCall(ctx context.Context, call *core.Call) (*core.Call, error)

	// GetCall retrieves a single call by row ID.
	// Returns ErrNotFound if the call doesn't exist.
	GetCall(ctx context.Context, id core.ID) (*core.Call, error)

	// GetCallBySourceId retrieves a call by the upstream provider's call id.
	// Returns ErrNotFound if no such call exists.
	GetCallBySourceId(ctx context.Context, sourceId string) (*core.Call, error)

	// ListCalls retrieves all calls ordered by start time ascending.
	ListCalls(ctx context.Context) ([]*core.Call, error)

	// DeleteCall removes a call row by ID. Dependent segment and feature rows
	// are the caller's concern. Returns ErrNotFound if the call doesn't exist.
	DeleteCall(ctx context.Context, id core.ID) error

	// UpdateCall replaces an existing call row, used when re-embedding.
	// Returns ErrNotFound if the call doesn't exist.
	UpdateCall(ctx context.Context, call *core.Call) (*core.Call, error)
}

// SegmentRepository provides operations for managing transcript segments.
type SegmentRepository interface {
	Repository

	// AddSegments adds segment rows in a single transaction, generating row
	// IDs from sequence. Returns the segments with IDs populated.
	AddSegments(ctx context.Context, segments ...*core.TranscriptSegment) ([]*core.TranscriptSegment, error)

	// GetSegmentsByCall retrieves all segments for a call, ordered by Seq.
	GetSegmentsByCall(ctx context.Context, callId core.ID) ([]*core.TranscriptSegment, error)

	// DeleteSegmentsByCall removes all segments belonging to a call.
	DeleteSegmentsByCall(ctx context.Context, callId core.ID) error

	// UpdateSegment replaces an existing segment row, used when re-embedding.
	// Returns ErrNotFound if the segment doesn't exist.
	UpdateSegment(ctx context.Context, segment *core.TranscriptSegment) (*core.TranscriptSegment, error)
}

// FeatureRepository provides operations for managing feature requests.
type FeatureRepository interface {
	Repository

	// AddFeatures adds feature request rows in a single transaction.
	// Row IDs are content-based (IDFromContent of request + context + call id),
	// so re-inserting the same extraction is idempotent.
	AddFeatures(ctx context.Context, features ...*core.FeatureRequest) ([]*core.FeatureRequest, error)

	// GetFeaturesByCall retrieves all feature requests for a call.
	GetFeaturesByCall(ctx context.Context, callId core.ID) ([]*core.FeatureRequest, error)

	// ListFeatures retrieves all feature requests.
	ListFeatures(ctx context.Context) ([]*core.FeatureRequest, error)

	// DeleteFeaturesByCall removes all feature requests belonging to a call.
	DeleteFeaturesByCall(ctx context.Context, callId core.ID) error

	// UpdateFeature replaces an existing feature row, used when re-embedding.
	// Returns ErrNotFound if the feature doesn't exist.
	UpdateFeature(ctx context.Context, feature *core.FeatureRequest) (*core.FeatureRequest, error)
}
