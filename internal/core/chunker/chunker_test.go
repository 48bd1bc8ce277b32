package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyText(t *testing.T) {
	c := New(2000, 200)

	for _, text := range []string{"", "   ", "\n\n\t"} {
		chunks, err := c.Chunk(text)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunkShortTextIsSingleChunk(t *testing.T) {
	c := New(2000, 200)

	text := "A single short paragraph that fits well inside one chunk."
	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkDeterministic(t *testing.T) {
	c := New(500, 50)
	text := manyParagraphs(40)

	first, err := c.Chunk(text)
	require.NoError(t, err)
	second, err := c.Chunk(text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChunkBoundsAndOrder(t *testing.T) {
	size := 500
	c := New(size, 50)
	text := manyParagraphs(40)

	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	lastPos := 0
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), size, "chunk %d exceeds size", i)
		assert.NotEmpty(t, chunk)

		// each chunk is a contiguous piece of the source, and chunks appear
		// in source order
		pos := strings.Index(text, chunk)
		require.GreaterOrEqual(t, pos, 0, "chunk %d not found in source", i)
		assert.GreaterOrEqual(t, pos, lastPos, "chunk %d out of order", i)
		lastPos = pos
	}
}

// manyParagraphs builds n distinct paragraphs so chunk positions in the
// source are unambiguous.
func manyParagraphs(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Paragraph %02d covers its own topic in a few sentences. %s", i, strings.Repeat("More detail follows here. ", 4))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
