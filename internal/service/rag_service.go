package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"docqa/internal/chunker"
	"docqa/internal/domain"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNotReady      = errors.New("index not built; ingest documents first")
)

// IngestStats reports what Ingest built.
type IngestStats struct {
	Documents int
	Chunks    int
	Dimension int
}

// RAGService runs load→split→embed→index once, then retrieve→generate per question.
type RAGService struct {
	chunker   domain.Chunker
	embedder  domain.Embedder
	store     domain.VectorStore
	generator domain.Generator
	topK      int
	logger    *charmlog.Logger

	ready  bool
	chunks []domain.Chunk
}

func NewRAGService(
	ch domain.Chunker,
	embedder domain.Embedder,
	store domain.VectorStore,
	generator domain.Generator,
	topK int,
	logger *charmlog.Logger,
) *RAGService {
	if logger == nil {
		logger = charmlog.Default()
	}
	if topK <= 0 {
		topK = 4
	}
	return &RAGService{
		chunker:   ch,
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

// Ingest splits, embeds and indexes documents. An empty document set builds an empty index.
func (s *RAGService) Ingest(ctx context.Context, documents []domain.Document) (IngestStats, error) {
	if s.ready {
		return IngestStats{}, errors.New("index already built")
	}
	chunks, err := chunker.SplitAll(s.chunker, documents)
	if err != nil {
		return IngestStats{}, err
	}
	s.logger.Info("documents split", "documents", len(documents), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	if err := s.embedder.Prepare(ctx, texts); err != nil {
		return IngestStats{}, fmt.Errorf("prepare embedder: %w", err)
	}

	var vectors [][]float32
	if len(texts) > 0 {
		s.logger.Info("building vector index", "embedder", s.embedder.Name())
		vectors, err = s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return IngestStats{}, fmt.Errorf("embed chunks: %w", err)
		}
	}
	if err := s.store.Build(chunks, vectors); err != nil {
		return IngestStats{}, fmt.Errorf("build index: %w", err)
	}
	s.chunks = chunks
	s.ready = true

	stats := IngestStats{Documents: len(documents), Chunks: len(chunks), Dimension: s.embedder.Dimension()}
	s.logger.Info("vector index ready", "chunks", stats.Chunks, "dimension", stats.Dimension)
	return stats, nil
}

// Ready reports whether the index has been built.
func (s *RAGService) Ready() bool { return s.ready }

// Retrieve returns the topK chunks most similar to the question.
func (s *RAGService) Retrieve(ctx context.Context, question string, topK int) ([]domain.SearchResult, error) {
	if !s.ready {
		return nil, ErrNotReady
	}
	if topK <= 0 {
		topK = s.topK
	}
	if len(s.chunks) == 0 {
		return nil, nil
	}
	vec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if isZero(vec) {
		// the offline embedder maps unseen vocabulary to the zero vector
		return s.lexicalSearch(question, topK), nil
	}
	res, err := s.store.Search(vec, topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return s.lexicalSearch(question, topK), nil
	}
	return res, nil
}

// Ask retrieves context for question and asks the generator for one answer.
func (s *RAGService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, ErrEmptyQuestion
	}
	results, err := s.Retrieve(ctx, question, s.topK)
	if err != nil {
		return domain.Answer{}, err
	}
	retrieved := make([]domain.Chunk, len(results))
	for i, r := range results {
		retrieved[i] = r.Chunk
		s.logger.Debug("retrieved", "rank", i+1, "score", fmt.Sprintf("%.3f", r.Score), "source", r.Chunk.Source, "offset", r.Chunk.Offset)
	}
	text, err := s.generator.Generate(ctx, question, retrieved)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	return domain.Answer{Question: question, Text: text, Sources: results}, nil
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
