package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursetutor/internal/domain"
)

func doc(content string) domain.Document {
	return domain.Document{ID: "d1", Path: "notes.txt", Content: content}
}

func TestWindowChunker_OverlapBoundaries(t *testing.T) {
	c := NewWindowChunker(8, 2)
	chunks, err := c.Chunk(doc("AAAA BBBB CCCC"))
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "AAAA BBB", chunks[0].Text)
	assert.Equal(t, "BBB CCCC", chunks[1].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 8, chunks[0].End)
	assert.Equal(t, 6, chunks[1].Start)
	assert.Equal(t, 14, chunks[1].End)
	// consecutive chunks share exactly the overlap
	assert.Equal(t, chunks[0].Text[6:], chunks[1].Text[:2])
}

func TestWindowChunker_EmptyDocument(t *testing.T) {
	c := NewWindowChunker(8, 2)
	chunks, err := c.Chunk(doc(""))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestWindowChunker_ShortDocumentSingleChunk(t *testing.T) {
	c := NewWindowChunker(100, 10)
	chunks, err := c.Chunk(doc("short text"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "d1:0", chunks[0].ChunkID)
}

func TestWindowChunker_Reconstruction(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		content string
	}{
		{"no overlap", 10, 0, strings.Repeat("abcdefghij", 7)},
		{"with overlap", 8, 3, "the quick brown fox jumps over the lazy dog"},
		{"uneven tail", 16, 4, strings.Repeat("x y z ", 11)},
		{"multibyte runes", 6, 2, "héllo wörld ünïcode tëxt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWindowChunker(tt.size, tt.overlap)
			chunks, err := c.Chunk(doc(tt.content))
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			var b strings.Builder
			for i, ch := range chunks {
				runes := []rune(ch.Text)
				if i == 0 {
					b.WriteString(ch.Text)
				} else {
					require.GreaterOrEqual(t, len(runes), tt.overlap)
					b.WriteString(string(runes[tt.overlap:]))
				}
			}
			assert.Equal(t, tt.content, b.String())
		})
	}
}

func TestWindowChunker_OffsetsMatchContent(t *testing.T) {
	content := "AAAA BBBB CCCC DDDD EEEE"
	c := NewWindowChunker(7, 2)
	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	runes := []rune(content)
	for i, ch := range chunks {
		assert.Equal(t, string(runes[ch.Start:ch.End]), ch.Text)
		assert.Equal(t, i, ch.Index)
	}
}

func TestWindowChunker_InvalidParamsFallBack(t *testing.T) {
	c := NewWindowChunker(0, -1)
	chunks, err := c.Chunk(doc("some text"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	// overlap >= size is treated as no overlap
	c = NewWindowChunker(4, 4)
	chunks, err = c.Chunk(doc("abcdefgh"))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "abcd", chunks[0].Text)
	assert.Equal(t, "efgh", chunks[1].Text)
}
