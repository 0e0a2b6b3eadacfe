package chunker

import (
	"strconv"

	"coursetutor/internal/domain"
)

// WindowChunker splits text into fixed-size rune windows with overlap.
// Consecutive chunks overlap by exactly the configured number of runes, so
// concatenating the chunks with the overlap removed reconstructs the text.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

// NewWindowChunker creates a chunker with the given window size and overlap,
// both in runes. Invalid values fall back to the documented defaults.
func NewWindowChunker(chunkSize, overlap int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = 1200
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &WindowChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk produces the ordered chunk sequence for a document. A document
// shorter than the window yields exactly one chunk; empty content yields none.
func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Content)
	if len(runes) == 0 {
		return nil, nil
	}
	step := c.chunkSize - c.overlap
	var chunks []domain.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Source:     document.Path,
			Index:      idx,
			Start:      start,
			End:        end,
			Text:       string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
