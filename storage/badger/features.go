package badger

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
)

// FeatureRepository implements storage.FeatureRepository for BadgerDB.
// Feature rows use content-based IDs, so repeating an insert for the same
// extraction overwrites rather than duplicates.
type FeatureRepository struct {
	backend *Backend
}

var _ storage.FeatureRepository = (*FeatureRepository)(nil)

// NewFeatureRepository creates a new FeatureRepository.
func NewFeatureRepository(backend *Backend) (*FeatureRepository, error) {
	return &FeatureRepository{backend: backend}, nil
}

// Close is a no-op; feature rows have no sequence to release.
func (r *FeatureRepository) Close() error {
	return nil
}

// FindSimilar searches feature requests by vector similarity.
func (r *FeatureRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
	return r.backend.scanSimilar(ctx, featureRecordPrefix, skipFeatureIndexKeys, func(val []byte) (*similarityRow, error) {
		feature, err := storage.UnmarshalFeature(val)
		if err != nil {
			return nil, err
		}
		return &similarityRow{
			result: &core.SearchResult{
				Corpus:   core.CorpusFeatures,
				CallId:   feature.CallId,
				Content:  feature.EmbeddingText(),
				Request:  feature.Request,
				Context:  feature.Context,
				Priority: feature.Priority,
			},
			vector:    feature.Vector,
			callStart: feature.CallStart,
		}, nil
	}, vector, minSimilarity, limit, offset, since)
}

// skipFeatureIndexKeys skips the call-index keys that share the feature
// record prefix.
func skipFeatureIndexKeys(key []byte) bool {
	return bytes.HasPrefix(key, []byte(featureCallPrefix))
}

// featureContentID derives the content-based row id for a feature request.
func featureContentID(feature *core.FeatureRequest) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d|%s|%s", feature.CallId, feature.Request, feature.Context))
}

// AddFeatures adds feature request rows in a single transaction.
func (r *FeatureRepository) AddFeatures(ctx context.Context, features ...*core.FeatureRequest) ([]*core.FeatureRequest, error) {
	for _, feature := range features {
		if err := core.ValidateFeatureRequest(feature); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, feature := range features {
			feature.Id = featureContentID(feature)

			key := makeFeatureKey(feature.Id)
			if err := tx.Set(key, storage.MarshalFeature(feature)); err != nil {
				return err
			}

			callKey := makeFeatureCallKey(feature.CallId, feature.Id)
			if err := tx.Set(callKey, storage.MarshalID(feature.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return features, nil
}

// GetFeaturesByCall retrieves all feature requests for a call.
func (r *FeatureRepository) GetFeaturesByCall(ctx context.Context, callId core.ID) ([]*core.FeatureRequest, error) {
	var results []*core.FeatureRequest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialFeatureCallKey(callId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var featureId core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				featureId, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			feature, err := r.readFeature(tx, makeFeatureKey(featureId))
			if err != nil {
				return err
			}
			if feature != nil {
				results = append(results, feature)
			}
		}
		return nil
	}, false)
	return results, err
}

// ListFeatures retrieves all feature requests.
func (r *FeatureRepository) ListFeatures(ctx context.Context) ([]*core.FeatureRequest, error) {
	var results []*core.FeatureRequest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(featureRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if skipFeatureIndexKeys(iter.Item().Key()) {
				continue
			}

			var feature *core.FeatureRequest
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				feature, err = storage.UnmarshalFeature(val)
				return err
			}); err != nil {
				return err
			}
			if feature != nil {
				results = append(results, feature)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteFeaturesByCall removes all feature requests belonging to a call.
func (r *FeatureRepository) DeleteFeaturesByCall(ctx context.Context, callId core.ID) error {
	features, err := r.GetFeaturesByCall(ctx, callId)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, feature := range features {
			if err := tx.Delete(makeFeatureCallKey(feature.CallId, feature.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeFeatureKey(feature.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// UpdateFeature replaces an existing feature row.
func (r *FeatureRepository) UpdateFeature(ctx context.Context, feature *core.FeatureRequest) (*core.FeatureRequest, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFeatureKey(feature.Id)
		old, err := r.readFeature(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		if err := tx.Set(key, storage.MarshalFeature(feature)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return feature, nil
}

// readFeature reads a feature row within a transaction.
// Returns nil without error when the key does not exist.
func (r *FeatureRepository) readFeature(tx *badger.Txn, key []byte) (*core.FeatureRequest, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var feature *core.FeatureRequest
	err = item.Value(func(val []byte) error {
		var err error
		feature, err = storage.UnmarshalFeature(val)
		return err
	})
	return feature, err
}
