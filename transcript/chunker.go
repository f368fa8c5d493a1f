package transcript

import "strings"

const (
	// DefaultChunkSize bounds a chunk so it fits comfortably in an
	// analysis prompt.
	DefaultChunkSize = 12000

	// DefaultChunkOverlap is repeated at chunk boundaries so feature
	// mentions spanning a boundary are not lost.
	DefaultChunkOverlap = 1000
)

// Chunker splits transcript text into overlapping chunks, preferring to cut
// at line boundaries so a speaker turn is not split mid-sentence when
// avoidable.
type Chunker struct {
	Size    int
	Overlap int
}

// DefaultChunker returns a chunker with the default size and overlap.
func DefaultChunker() *Chunker {
	return &Chunker{
		Size:    DefaultChunkSize,
		Overlap: DefaultChunkOverlap,
	}
}

// Chunk splits text into chunks of at most Size characters. Consecutive
// chunks share Overlap characters of trailing context. Every character of
// the input appears in at least one chunk.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= c.Size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.Size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		cut := c.findCut(text, start, end)
		chunks = append(chunks, text[start:cut])

		next := cut - c.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findCut picks a boundary within (start, end], preferring a newline, then a
// sentence end, falling back to a hard cut at end. A boundary inside the
// overlap window would stall the scan, so candidates that close to start are
// rejected.
func (c *Chunker) findCut(text string, start, end int) int {
	minCut := start + c.Overlap + 1
	if minCut > end {
		return end
	}

	window := text[start:end]
	if idx := strings.LastIndexByte(window, '\n'); idx >= 0 && start+idx+1 >= minCut {
		return start + idx + 1
	}
	if idx := strings.LastIndex(window, ". "); idx >= 0 && start+idx+2 >= minCut {
		return start + idx + 2
	}
	return end
}
