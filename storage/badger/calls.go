package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
)

// CallRepository implements storage.CallRepository for BadgerDB.
type CallRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CallRepository = (*CallRepository)(nil)

// NewCallRepository creates a new CallRepository.
func NewCallRepository(backend *Backend) (*CallRepository, error) {
	idSeq, err := backend.GetSequence(callRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &CallRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CallRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar searches call summaries by vector similarity.
func (r *CallRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, offset int, since time.Time) ([]*core.SearchResult, error) {
	return r.backend.scanSimilar(ctx, callRecordPrefix, skipCallIndexKeys, func(val []byte) (*similarityRow, error) {
		call, err := storage.UnmarshalCall(val)
		if err != nil {
			return nil, err
		}
		return &similarityRow{
			result: &core.SearchResult{
				Corpus:  core.CorpusSummaries,
				CallId:  call.Id,
				Title:   call.Title,
				Content: call.Summary,
			},
			vector:    call.Vector,
			callStart: call.StartTime,
		}, nil
	}, vector, minSimilarity, limit, offset, since)
}

// skipCallIndexKeys skips the sequence and date-index keys that share the
// call record prefix.
func skipCallIndexKeys(key []byte) bool {
	return bytes.Equal(key, []byte(callRecordIDSeq)) ||
		bytes.HasPrefix(key, []byte(callRecordDatePrefix))
}

// AddCall adds a call row to storage.
func (r *CallRepository) AddCall(ctx context.Context, call *core.Call) (*core.Call, error) {
	if err := core.ValidateCall(call); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Always generate new ID from sequence
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		call.Id = core.ID(nextID)
		call.InsertedAt = time.Now().UTC()

		// Store primary record
		key := makeCallKey(call.Id)
		if err := tx.Set(key, storage.MarshalCall(call)); err != nil {
			return err
		}

		// Update date index
		dateKey := makeCallDateKey(call.StartTime, call.Id)
		if err := tx.Set(dateKey, storage.MarshalID(call.Id)); err != nil {
			return err
		}

		// Update source-id index
		sourceKey := makeCallSourceKey(call.SourceId)
		if err := tx.Set(sourceKey, storage.MarshalID(call.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return call, nil
}

// GetCall retrieves a single call by row ID.
func (r *CallRepository) GetCall(ctx context.Context, id core.ID) (*core.Call, error) {
	var result *core.Call
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readCall(tx, makeCallKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCallBySourceId retrieves a call by the upstream provider's call id.
func (r *CallRepository) GetCallBySourceId(ctx context.Context, sourceId string) (*core.Call, error) {
	var result *core.Call
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCallSourceKey(sourceId))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var callId core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			callId, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readCall(tx, makeCallKey(callId))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListCalls retrieves all calls ordered by start time ascending.
func (r *CallRepository) ListCalls(ctx context.Context) ([]*core.Call, error) {
	var results []*core.Call
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(callRecordDatePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var callId core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				callId, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			call, err := r.readCall(tx, makeCallKey(callId))
			if err != nil {
				return err
			}
			if call != nil {
				results = append(results, call)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteCall removes a call row by ID, along with its index entries.
func (r *CallRepository) DeleteCall(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCallKey(id)
		call, err := r.readCall(tx, key)
		if err != nil {
			return err
		}
		if call == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeCallDateKey(call.StartTime, call.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeCallSourceKey(call.SourceId)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpdateCall replaces an existing call row.
func (r *CallRepository) UpdateCall(ctx context.Context, call *core.Call) (*core.Call, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCallKey(call.Id)
		old, err := r.readCall(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		if err := tx.Set(key, storage.MarshalCall(call)); err != nil {
			return err
		}

		// Update date index if the start time changed
		if !old.StartTime.Equal(call.StartTime) {
			if err := tx.Delete(makeCallDateKey(old.StartTime, old.Id)); err != nil {
				return err
			}
			if err := tx.Set(makeCallDateKey(call.StartTime, call.Id), storage.MarshalID(call.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return call, nil
}

// readCall reads a call row within a transaction.
// Returns nil without error when the key does not exist.
func (r *CallRepository) readCall(tx *badger.Txn, key []byte) (*core.Call, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var call *core.Call
	err = item.Value(func(val []byte) error {
		var err error
		call, err = storage.UnmarshalCall(val)
		return err
	})
	return call, err
}
