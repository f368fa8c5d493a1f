package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTurns() []Turn {
	return []Turn{
		{
			Speaker: "7",
			Sentences: []Sentence{
				{Text: "Hi there.", StartMs: 1000},
				{Text: "Thanks for joining.", StartMs: 2500},
			},
		},
		{
			Speaker:   "12",
			Sentences: []Sentence{{Text: "Happy to be here.", StartMs: 4000}},
		},
		{
			// No spoken text, should be skipped entirely
			Speaker:   "7",
			Sentences: []Sentence{{Text: "   "}, {Text: ""}},
		},
		{
			Speaker:   "12",
			Sentences: []Sentence{{Text: "Can we export reports to CSV?", StartMs: 9000}},
		},
	}
}

func TestFlattenText(t *testing.T) {
	text := FlattenText(sampleTurns())
	lines := strings.Split(text, "\n")

	// One line per non-empty turn
	require.Len(t, lines, 3)
	assert.Equal(t, "Speaker 7: Hi there. Thanks for joining.", lines[0])
	assert.Equal(t, "Speaker 12: Happy to be here.", lines[1])
	assert.Equal(t, "Speaker 12: Can we export reports to CSV?", lines[2])
}

func TestFlattenTextEverySentenceAppearsOnce(t *testing.T) {
	text := FlattenText(sampleTurns())

	for _, sentence := range []string{
		"Hi there.",
		"Thanks for joining.",
		"Happy to be here.",
		"Can we export reports to CSV?",
	} {
		assert.Equal(t, 1, strings.Count(text, sentence), "sentence %q", sentence)
	}
}

func TestFlattenTextEmpty(t *testing.T) {
	assert.Equal(t, "", FlattenText(nil))
	assert.Equal(t, "", FlattenText([]Turn{{Speaker: "1", Sentences: []Sentence{{Text: " "}}}}))
}

func TestFlattenSegments(t *testing.T) {
	callStart := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	segments := FlattenSegments(sampleTurns(), 42, callStart)

	require.Len(t, segments, 3)

	// Empty turns do not consume a sequence number
	for i, segment := range segments {
		assert.Equal(t, i, segment.Seq)
		assert.EqualValues(t, 42, segment.CallId)
		assert.Equal(t, callStart, segment.CallStart)
	}

	assert.Equal(t, "7", segments[0].Speaker)
	assert.Equal(t, "Hi there. Thanks for joining.", segments[0].Content)
	assert.EqualValues(t, 1000, segments[0].StartMs)

	assert.Equal(t, "12", segments[2].Speaker)
	assert.EqualValues(t, 9000, segments[2].StartMs)
}
