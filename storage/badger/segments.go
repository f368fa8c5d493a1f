package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
)

// SegmentRepository implements storage.SegmentRepository for BadgerDB.
type SegmentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SegmentRepository = (*SegmentRepository)(nil)

// NewSegmentRepository creates a new SegmentRepository.
func NewSegmentRepository(backend *Backend) (*SegmentRepository, error) {
	idSeq, err := backend.GetSequence(segmentRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &SegmentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SegmentRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar searches transcript segments by vector similarity.
func (r *SegmentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
	return r.backend.scanSimilar(ctx, segmentRecordPrefix, skipSegmentIndexKeys, func(val []byte) (*similarityRow, error) {
		segment, err := storage.UnmarshalSegment(val)
		if err != nil {
			return nil, err
		}
		return &similarityRow{
			result: &core.SearchResult{
				Corpus:  core.CorpusSegments,
				CallId:  segment.CallId,
				Content: segment.Content,
				Speaker: segment.Speaker,
				StartMs: segment.StartMs,
			},
			vector:    segment.Vector,
			callStart: segment.CallStart,
		}, nil
	}, vector, minSimilarity, limit, offset, since)
}

// skipSegmentIndexKeys skips the sequence and call-index keys that share the
// segment record prefix.
func skipSegmentIndexKeys(key []byte) bool {
	return bytes.Equal(key, []byte(segmentRecordIDSeq)) ||
		bytes.HasPrefix(key, []byte(segmentCallPrefix))
}

// AddSegments adds segment rows in a single transaction.
func (r *SegmentRepository) AddSegments(ctx context.Context, segments ...*core.TranscriptSegment) ([]*core.TranscriptSegment, error) {
	for _, segment := range segments {
		if err := core.ValidateSegment(segment); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, segment := range segments {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			segment.Id = core.ID(nextID)

			key := makeSegmentKey(segment.Id)
			if err := tx.Set(key, storage.MarshalSegment(segment)); err != nil {
				return err
			}

			callKey := makeSegmentCallKey(segment.CallId, segment.Id)
			if err := tx.Set(callKey, storage.MarshalID(segment.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return segments, nil
}

// GetSegmentsByCall retrieves all segments for a call, ordered by Seq.
func (r *SegmentRepository) GetSegmentsByCall(ctx context.Context, callId core.ID) ([]*core.TranscriptSegment, error) {
	var results []*core.TranscriptSegment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSegmentCallKey(callId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var segmentId core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				segmentId, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			segment, err := r.readSegment(tx, makeSegmentKey(segmentId))
			if err != nil {
				return err
			}
			if segment != nil {
				results = append(results, segment)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Row ids are sequence-ordered within a call, but Seq is the contract.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Seq < results[j-1].Seq; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
	return results, nil
}

// DeleteSegmentsByCall removes all segments belonging to a call.
func (r *SegmentRepository) DeleteSegmentsByCall(ctx context.Context, callId core.ID) error {
	segments, err := r.GetSegmentsByCall(ctx, callId)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, segment := range segments {
			if err := tx.Delete(makeSegmentCallKey(segment.CallId, segment.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeSegmentKey(segment.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// UpdateSegment replaces an existing segment row.
func (r *SegmentRepository) UpdateSegment(ctx context.Context, segment *core.TranscriptSegment) (*core.TranscriptSegment, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSegmentKey(segment.Id)
		old, err := r.readSegment(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		if err := tx.Set(key, storage.MarshalSegment(segment)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return segment, nil
}

// readSegment reads a segment row within a transaction.
// Returns nil without error when the key does not exist.
func (r *SegmentRepository) readSegment(tx *badger.Txn, key []byte) (*core.TranscriptSegment, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var segment *core.TranscriptSegment
	err = item.Value(func(val []byte) error {
		var err error
		segment, err = storage.UnmarshalSegment(val)
		return err
	})
	return segment, err
}
