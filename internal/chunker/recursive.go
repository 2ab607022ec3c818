package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"docqa/internal/domain"
)

// RecursiveChunker splits on paragraph, line, then word boundaries, keeping each
// chunk within size runes and carrying up to overlap runes into the next one.
type RecursiveChunker struct {
	size     int
	splitter textsplitter.RecursiveCharacter
}

func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if err := checkSizes(size, overlap); err != nil {
		return nil, err
	}
	return &RecursiveChunker{
		size: size,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}, nil
}

func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if utf8.RuneCountInString(document.Content) <= c.size {
		return []domain.Chunk{newChunk(document, 0, 0, document.Content)}, nil
	}
	segments, err := c.splitter.SplitText(document.Content)
	if err != nil {
		return nil, fmt.Errorf("split document %s: %w", document.ID, err)
	}
	chunks := make([]domain.Chunk, 0, len(segments))
	cursor := 0
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		// segments appear in source order; overlap means the next one may start
		// before the previous one ends, so search from the previous start.
		if pos := strings.Index(document.Content[cursor:], seg); pos >= 0 {
			cursor += pos
		}
		offset := utf8.RuneCountInString(document.Content[:cursor])
		chunks = append(chunks, newChunk(document, len(chunks), offset, seg))
	}
	if len(chunks) == 0 {
		chunks = append(chunks, newChunk(document, 0, 0, document.Content))
	}
	return chunks, nil
}
