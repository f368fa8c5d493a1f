package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/callvista/callsight/core"
)

// Key prefixes for the three corpora and their indices
const (
	callRecordPrefix     = "calrec"
	callRecordDatePrefix = "calrecd"
	callSourcePrefix     = "calsrc"
	callRecordIDSeq      = "calrecseq"

	segmentRecordPrefix = "segrec"
	segmentCallPrefix   = "segrecc"
	segmentRecordIDSeq  = "segrecseq"

	featureRecordPrefix = "fearec"
	featureCallPrefix   = "fearecc"
)

// makeCallKey generates a key for a call row by ID.
func makeCallKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", callRecordPrefix, id))
}

// makeCallDateKey generates a composite key for the call date index.
// Format: prefix:timestamp:id
func makeCallDateKey(startTime time.Time, id core.ID) []byte {
	prefix := callRecordDatePrefix + ":"
	buf := make([]byte, len(prefix)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(startTime.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCallSourceKey generates a key for call lookup by provider call id.
func makeCallSourceKey(sourceId string) []byte {
	return []byte(callSourcePrefix + ":" + sourceId)
}

// makeSegmentKey generates a key for a segment row by ID.
func makeSegmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", segmentRecordPrefix, id))
}

// makeSegmentCallKey generates a composite key for the segment call index.
// Format: prefix:callID:segmentID
func makeSegmentCallKey(callId, segmentId core.ID) []byte {
	prefix := segmentCallPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(callId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(segmentId))
	return buf
}

// makePartialSegmentCallKey generates a partial key for segment queries by call.
func makePartialSegmentCallKey(callId core.ID) []byte {
	prefix := segmentCallPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(callId))
	return buf
}

// makeFeatureKey generates a key for a feature request row by ID.
func makeFeatureKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", featureRecordPrefix, id))
}

// makeFeatureCallKey generates a composite key for the feature call index.
// Format: prefix:callID:featureID
func makeFeatureCallKey(callId, featureId core.ID) []byte {
	prefix := featureCallPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(callId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(featureId))
	return buf
}

// makePartialFeatureCallKey generates a partial key for feature queries by call.
func makePartialFeatureCallKey(callId core.ID) []byte {
	prefix := featureCallPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(callId))
	return buf
}
