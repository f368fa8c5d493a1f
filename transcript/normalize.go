package transcript

import (
	"strings"
	"time"

	"github.com/callvista/callsight/core"
)

// Sentence is one spoken sentence within a turn.
type Sentence struct {
	Text    string
	StartMs int64
}

// Turn is a contiguous run of sentences from a single speaker.
type Turn struct {
	Speaker   string
	Sentences []Sentence
}

// TurnText joins a turn's sentences into a single line of text.
func TurnText(turn Turn) string {
	parts := make([]string, 0, len(turn.Sentences))
	for _, sentence := range turn.Sentences {
		text := strings.TrimSpace(sentence.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// FlattenText renders turns as one speaker-attributed line per turn.
// Turns with no spoken text are skipped.
func FlattenText(turns []Turn) string {
	var lines []string
	for _, turn := range turns {
		text := TurnText(turn)
		if text == "" {
			continue
		}
		lines = append(lines, "Speaker "+turn.Speaker+": "+text)
	}
	return strings.Join(lines, "\n")
}

// FlattenSegments converts turns into transcript segment rows for a call.
// Empty turns are skipped and do not consume a sequence number. StartMs is
// taken from the turn's first sentence, or -1 when no timing is available.
func FlattenSegments(turns []Turn, callId core.ID, callStart time.Time) []*core.TranscriptSegment {
	var segments []*core.TranscriptSegment
	seq := 0
	for _, turn := range turns {
		text := TurnText(turn)
		if text == "" {
			continue
		}

		startMs := int64(-1)
		if len(turn.Sentences) > 0 {
			startMs = turn.Sentences[0].StartMs
		}

		segments = append(segments, &core.TranscriptSegment{
			CallId:    callId,
			Seq:       seq,
			Speaker:   turn.Speaker,
			Content:   text,
			StartMs:   startMs,
			CallStart: callStart,
		})
		seq++
	}
	return segments
}
