package chunker

import (
	"errors"
	"fmt"
	"strconv"

	"docqa/internal/domain"
)

// ErrInvalidSettings is returned when size/overlap cannot produce forward progress.
var ErrInvalidSettings = errors.New("chunker: invalid settings")

const (
	PolicyWindow    = "window"
	PolicyRecursive = "recursive"
	PolicySentence  = "sentence"
)

// Config selects the boundary policy and its parameters.
type Config struct {
	Type              string
	Size              int
	Overlap           int
	SentencesPerChunk int
	OverlapSentences  int
}

// New returns the chunker for cfg.Type; an empty type selects the recursive policy.
func New(cfg Config) (domain.Chunker, error) {
	switch cfg.Type {
	case PolicyWindow:
		return NewWindowChunker(cfg.Size, cfg.Overlap)
	case PolicyRecursive, "":
		return NewRecursiveChunker(cfg.Size, cfg.Overlap)
	case PolicySentence:
		return NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

// SplitAll chunks every document, keeping document order and in-document order.
func SplitAll(ch domain.Chunker, documents []domain.Document) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for _, d := range documents {
		chunks, err := ch.Chunk(d)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		all = append(all, chunks...)
	}
	return all, nil
}

func checkSizes(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d must be positive", ErrInvalidSettings, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidSettings, overlap, size)
	}
	return nil
}

func newChunk(document domain.Document, idx, offset int, text string) domain.Chunk {
	return domain.Chunk{
		DocumentID: document.ID,
		ChunkID:    document.ID + ":" + strconv.Itoa(idx),
		Source:     document.Path,
		Text:       text,
		Index:      idx,
		Offset:     offset,
	}
}
