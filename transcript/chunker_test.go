package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkShortInput(t *testing.T) {
	c := DefaultChunker()

	assert.Nil(t, c.Chunk(""))

	text := "Speaker 1: short transcript"
	chunks := c.Chunk(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkCoverage(t *testing.T) {
	// Distinct numbered lines so each chunk occurs exactly once in the input
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("Speaker %d: utterance number %04d in this call", i%3, i))
	}
	text := strings.Join(lines, "\n")

	c := &Chunker{Size: 200, Overlap: 30}
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	prevStart := -1
	prevEnd := 0
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), c.Size, "chunk %d exceeds size", i)

		start := strings.Index(text, chunk)
		require.GreaterOrEqual(t, start, 0, "chunk %d not found in input", i)

		// Windows move forward and never leave a gap
		assert.Greater(t, start, prevStart, "chunk %d does not advance", i)
		assert.LessOrEqual(t, start, prevEnd, "chunk %d leaves a gap", i)

		prevStart = start
		prevEnd = start + len(chunk)
	}

	assert.Equal(t, 0, strings.Index(text, chunks[0]), "first chunk must start the input")
	assert.Equal(t, len(text), prevEnd, "last chunk must end the input")
}

func TestChunkOverlapRepeatsBoundaryText(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		fmt.Fprintf(&sb, "word%04d ", i)
	}
	text := sb.String()

	c := &Chunker{Size: 500, Overlap: 100}
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	// The tail of each chunk reappears at the head of the next
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-c.Overlap:]
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d missing overlap from previous", i)
	}
}

func TestChunkPrefersLineBoundaries(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("Speaker 1: line %04d of the conversation", i))
	}
	text := strings.Join(lines, "\n")

	c := &Chunker{Size: 300, Overlap: 50}
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, "\n"), "chunk %d should cut at a line boundary", i)
	}
}
