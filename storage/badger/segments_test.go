package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
)

func sampleSegments(callId core.ID, callStart time.Time) []*core.TranscriptSegment {
	return []*core.TranscriptSegment{
		{
			CallId:    callId,
			Seq:       0,
			Speaker:   "1",
			Content:   "How is the product working for you?",
			StartMs:   1000,
			CallStart: callStart,
			Vector:    []float32{1, 0, 0},
		},
		{
			CallId:    callId,
			Seq:       1,
			Speaker:   "2",
			Content:   "We really need CSV export.",
			StartMs:   5000,
			CallStart: callStart,
			Vector:    []float32{0, 1, 0},
		},
	}
}

func TestAddAndGetSegments(t *testing.T) {
	fx := newRepoFixture(t)
	ctx := context.Background()
	callStart := time.Now().Add(-time.Hour)

	stored, err := fx.segments.AddSegments(ctx, sampleSegments(7, callStart)...)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotZero(t, stored[0].Id)
	assert.NotEqual(t, stored[0].Id, stored[1].Id)

	got, err := fx.segments.GetSegmentsByCall(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Seq)
	assert.Equal(t, 1, got[1].Seq)
	assert.Equal(t, "We really need CSV export.", got[1].Content)
}

func TestGetSegmentsByCallIsolated(t *testing.T) {
	fx := newRepoFixture(t)
	ctx := context.Background()
	callStart := time.Now().Add(-time.Hour)

	_, err := fx.segments.AddSegments(ctx, sampleSegments(7, callStart)...)
	require.NoError(t, err)
	_, err = fx.segments.AddSegments(ctx, sampleSegments(8, callStart)...)
	require.NoError(t, err)

	got, err := fx.segments.GetSegmentsByCall(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, segment := range got {
		assert.Equal(t, core.ID(7), segment.CallId)
	}

	none, err := fx.segments.GetSegmentsByCall(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddSegmentsValidation(t *testing.T) {
	fx := newRepoFixture(t)

	_, err := fx.segments.AddSegments(context.Background(), &core.TranscriptSegment{CallId: 7, Content: ""})
	assert.ErrorIs(t, err, core.ErrInvalidSegment)
}

func TestDeleteSegmentsByCall(t *testing.T) {
	fx := newRepoFixture(t)
	ctx := context.Background()
	callStart := time.Now().Add(-time.Hour)

	_, err := fx.segments.AddSegments(ctx, sampleSegments(7, callStart)...)
	require.NoError(t, err)
	_, err = fx.segments.AddSegments(ctx, sampleSegments(8, callStart)...)
	require.NoError(t, err)

	require.NoError(t, fx.segments.DeleteSegmentsByCall(ctx, 7))

	gone, err := fx.segments.GetSegmentsByCall(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := fx.segments.GetSegmentsByCall(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, kept, 2)
}

func TestUpdateSegment(t *testing.T) {
	fx := newRepoFixture(t)
	ctx := context.Background()

	stored, err := fx.segments.AddSegments(ctx, sampleSegments(7, time.Now().Add(-time.Hour))...)
	require.NoError(t, err)

	stored[0].Vector = []float32{0, 0, 1}
	_, err = fx.segments.UpdateSegment(ctx, stored[0])
	require.NoError(t, err)

	got, err := fx.segments.GetSegmentsByCall(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, got[0].Vector)

	_, err = fx.segments.UpdateSegment(ctx, &core.TranscriptSegment{Id: 9999, CallId: 7, Content: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSegmentFindSimilar(t *testing.T) {
	fx := newRepoFixture(t)
	ctx := context.Background()

	_, err := fx.segments.AddSegments(ctx, sampleSegments(7, time.Now().Add(-time.Hour))...)
	require.NoError(t, err)

	results, err := fx.segments.FindSimilar(ctx, []float32{1, 0, 0}, 0.9, 10, 0, time.Time{})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, core.CorpusSegments, results[0].Corpus)
	assert.Equal(t, core.ID(7), results[0].CallId)
	assert.Equal(t, "How is the product working for you?", results[0].Content)
	assert.Equal(t, "1", results[0].Speaker)
	assert.Equal(t, int64(1000), results[0].StartMs)
}

func TestSegmentFindSimilarRecencyFilter(t *testing.T) {
	fx := newRepoFixture(t)
	ctx := context.Background()

	_, err := fx.segments.AddSegments(ctx, sampleSegments(7, time.Now().Add(-200*24*time.Hour))...)
	require.NoError(t, err)

	since := time.Now().Add(-90 * 24 * time.Hour)
	results, err := fx.segments.FindSimilar(ctx, []float32{1, 0, 0}, 0, 10, 0, since)
	require.NoError(t, err)
	assert.Empty(t, results)
}
