package chunker

import "docqa/internal/domain"

// WindowChunker slides a fixed window of runes over the text, advancing by size-overlap.
// A document of L > size runes yields ceil((L-overlap)/(size-overlap)) chunks; the last
// window is shorter when it reaches the end early.
type WindowChunker struct {
	size    int
	overlap int
}

func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if err := checkSizes(size, overlap); err != nil {
		return nil, err
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Content)
	if len(runes) <= c.size {
		return []domain.Chunk{newChunk(document, 0, 0, document.Content)}, nil
	}
	step := c.size - c.overlap
	var chunks []domain.Chunk
	for start, idx := 0, 0; ; start, idx = start+step, idx+1 {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, newChunk(document, idx, start, string(runes[start:end])))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
