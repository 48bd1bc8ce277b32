package chunker

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/genserve-ai/rag-ingestion/internal/core"
)

// separators are tried in order: paragraph, line, word, then arbitrary
// character boundaries as a last resort.
var separators = []string{"\n\n", "\n", " ", ""}

// TextChunker wraps the recursive character splitter with the configured
// chunk size and overlap. Splitting is deterministic for identical input.
type TextChunker struct {
	splitter textsplitter.RecursiveCharacter
}

var _ core.Chunker = (*TextChunker)(nil)

func New(size, overlap int) *TextChunker {
	return &TextChunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators(separators),
		),
	}
}

// Chunk splits text into ordered, overlapping pieces. Empty or whitespace
// input yields no chunks.
func (c *TextChunker) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return c.splitter.SplitText(text)
}
