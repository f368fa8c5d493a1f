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


package storage

import (
	"time"

	"github.com/callvista/callsight/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the stored record types. Timestamps are
// encoded as Unix microseconds, durations as nanoseconds, vectors as a varint
// length followed by raw float32 elements.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(v), err
}

// MarshalCall serializes a Call to bytes.
func MarshalCall(call *core.Call) []byte {
	buf := make([]byte, sizeCall(call))
	n := varint.Uint64.Marshal(uint64(call.Id), buf)
	n += ord.String.Marshal(call.SourceId, buf[n:])
	n += ord.String.Marshal(call.Title, buf[n:])
	n += varint.Int64.Marshal(int64(call.Duration), buf[n:])
	n += marshalTime(call.StartTime, buf[n:])
	n += ord.String.Marshal(call.Transcript, buf[n:])
	n += ord.String.Marshal(call.Summary, buf[n:])
	n += ord.String.Marshal(string(call.Sentiment), buf[n:])
	n += marshalVector(call.Vector, buf[n:])
	marshalTime(call.InsertedAt, buf[n:])
	return buf
}

// UnmarshalCall deserializes a Call from bytes.
func UnmarshalCall(data []byte) (*core.Call, error) {
	var call core.Call
	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	call.Id = core.ID(id)
	var m int
	if call.SourceId, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if call.Title, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	var d int64
	if d, m, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	call.Duration = time.Duration(d)
	n += m
	if call.StartTime, m, err = unmarshalTime(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if call.Transcript, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if call.Summary, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	var sentiment string
	if sentiment, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	call.Sentiment = core.Sentiment(sentiment)
	n += m
	if call.Vector, m, err = unmarshalVector(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if call.InsertedAt, _, err = unmarshalTime(data[n:]); err != nil {
		return nil, err
	}
	return &call, nil
}

func sizeCall(call *core.Call) int {
	size := varint.Uint64.Size(uint64(call.Id))
	size += ord.String.Size(call.SourceId)
	size += ord.String.Size(call.Title)
	size += varint.Int64.Size(int64(call.Duration))
	size += sizeTime(call.StartTime)
	size += ord.String.Size(call.Transcript)
	size += ord.String.Size(call.Summary)
	size += ord.String.Size(string(call.Sentiment))
	size += sizeVector(call.Vector)
	size += sizeTime(call.InsertedAt)
	return size
}

// MarshalSegment serializes a TranscriptSegment to bytes.
func MarshalSegment(segment *core.TranscriptSegment) []byte {
	buf := make([]byte, sizeSegment(segment))
	n := varint.Uint64.Marshal(uint64(segment.Id), buf)
	n += varint.Uint64.Marshal(uint64(segment.CallId), buf[n:])
	n += varint.Int.Marshal(segment.Seq, buf[n:])
	n += ord.String.Marshal(segment.Speaker, buf[n:])
	n += ord.String.Marshal(segment.Content, buf[n:])
	n += varint.Int64.Marshal(segment.StartMs, buf[n:])
	n += marshalTime(segment.CallStart, buf[n:])
	marshalVector(segment.Vector, buf[n:])
	return buf
}

// UnmarshalSegment deserializes a TranscriptSegment from bytes.
func UnmarshalSegment(data []byte) (*core.TranscriptSegment, error) {
	var segment core.TranscriptSegment
	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	segment.Id = core.ID(id)
	var m int
	var callId uint64
	if callId, m, err = varint.Uint64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	segment.CallId = core.ID(callId)
	n += m
	if segment.Seq, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if segment.Speaker, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if segment.Content, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if segment.StartMs, m, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if segment.CallStart, m, err = unmarshalTime(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if segment.Vector, _, err = unmarshalVector(data[n:]); err != nil {
		return nil, err
	}
	return &segment, nil
}

func sizeSegment(segment *core.TranscriptSegment) int {
	size := varint.Uint64.Size(uint64(segment.Id))
	size += varint.Uint64.Size(uint64(segment.CallId))
	size += varint.Int.Size(segment.Seq)
	size += ord.String.Size(segment.Speaker)
	size += ord.String.Size(segment.Content)
	size += varint.Int64.Size(segment.StartMs)
	size += sizeTime(segment.CallStart)
	size += sizeVector(segment.Vector)
	return size
}

// MarshalFeature serializes a FeatureRequest to bytes.
func MarshalFeature(feature *core.FeatureRequest) []byte {
	buf := make([]byte, sizeFeature(feature))
	n := varint.Uint64.Marshal(uint64(feature.Id), buf)
	n += varint.Uint64.Marshal(uint64(feature.CallId), buf[n:])
	n += ord.String.Marshal(feature.Request, buf[n:])
	n += ord.String.Marshal(feature.Context, buf[n:])
	n += ord.String.Marshal(string(feature.Priority), buf[n:])
	n += marshalTime(feature.CallStart, buf[n:])
	marshalVector(feature.Vector, buf[n:])
	return buf
}

// UnmarshalFeature deserializes a FeatureRequest from bytes.
func UnmarshalFeature(data []byte) (*core.FeatureRequest, error) {
	var feature core.FeatureRequest
	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	feature.Id = core.ID(id)
	var m int
	var callId uint64
	if callId, m, err = varint.Uint64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	feature.CallId = core.ID(callId)
	n += m
	if feature.Request, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if feature.Context, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += m
	var priority string
	if priority, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	feature.Priority = core.Priority(priority)
	n += m
	if feature.CallStart, m, err = unmarshalTime(data[n:]); err != nil {
		return nil, err
	}
	n += m
	if feature.Vector, _, err = unmarshalVector(data[n:]); err != nil {
		return nil, err
	}
	return &feature, nil
}

func sizeFeature(feature *core.FeatureRequest) int {
	size := varint.Uint64.Size(uint64(feature.Id))
	size += varint.Uint64.Size(uint64(feature.CallId))
	size += ord.String.Size(feature.Request)
	size += ord.String.Size(feature.Context)
	size += ord.String.Size(string(feature.Priority))
	size += sizeTime(feature.CallStart)
	size += sizeVector(feature.Vector)
	return size
}

// Times are stored as Unix microseconds; the zero time maps to 0.

func marshalTime(t time.Time, buf []byte) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Marshal(micros, buf)
}

func unmarshalTime(data []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return time.Time{}, 0, err
	}
	if micros == 0 {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Size(micros)
}

// Vectors are stored as a varint element count followed by raw float32s.

func marshalVector(vector []float32, buf []byte) int {
	n := varint.Int.Marshal(len(vector), buf)
	for _, v := range vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return n
}

func unmarshalVector(data []byte) ([]float32, int, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, 0, err
	}
	if count < 0 {
		return nil, 0, ErrTruncatedData
	}
	if count == 0 {
		return nil, n, nil
	}
	vector := make([]float32, count)
	for i := 0; i < count; i++ {
		v, m, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, 0, err
		}
		vector[i] = v
		n += m
	}
	return vector, n, nil
}

func sizeVector(vector []float32) int {
	size := varint.Int.Size(len(vector))
	for _, v := range vector {
		size += raw.Float32.Size(v)
	}
	return size
}
