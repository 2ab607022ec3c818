package chunker

import (
	"regexp"
	"strings"

	"docqa/internal/domain"
)

// SentenceChunker splits text into sentence-based chunks with overlap.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 || overlapSentences >= sentencesPerChunk {
		overlapSentences = 0
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`),
	}
}

type sentence struct {
	text   string
	offset int
}

func (c *SentenceChunker) sentences(content string) []sentence {
	var out []sentence
	for _, loc := range c.splitter.FindAllStringIndex(content, -1) {
		raw := content[loc[0]:loc[1]]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
		out = append(out, sentence{text: trimmed, offset: runeOffset(content, loc[0]+lead)})
	}
	return out
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := c.sentences(document.Content)
	if len(sentences) == 0 {
		return []domain.Chunk{newChunk(document, 0, 0, document.Content)}, nil
	}
	var chunks []domain.Chunk
	for i := 0; i < len(sentences); {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		parts := make([]string, 0, end-i)
		for _, s := range sentences[i:end] {
			parts = append(parts, s.text)
		}
		chunks = append(chunks, newChunk(document, len(chunks), sentences[i].offset, strings.Join(parts, " ")))
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks, nil
}

func runeOffset(s string, byteOffset int) int {
	return len([]rune(s[:byteOffset]))
}
