package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/embedding/tfidf"
	"docqa/internal/logger"
	"docqa/internal/vectorstore/memory"
)

// keywordEmbedder maps text onto a fixed vocabulary, one dimension per word.
type keywordEmbedder struct {
	vocab       []string
	queries     int
	documents   int
	documentErr error
}

func (e *keywordEmbedder) Name() string { return "keyword" }
func (e *keywordEmbedder) Prepare(context.Context, []string) error { return nil }
func (e *keywordEmbedder) Dimension() int { return len(e.vocab) }

func (e *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(e.vocab))
	for i, w := range e.vocab {
		if strings.Contains(lower, w) {
			v[i] = 1
		}
	}
	return v
}

func (e *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.documents++
	if e.documentErr != nil {
		return nil, e.documentErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.queries++
	return e.vector(text), nil
}

var _ domain.Embedder = (*keywordEmbedder)(nil)

// mappingGenerator answers from a fixed keyword→answer table, falling back when
// no retrieved chunk mentions a known keyword.
type mappingGenerator struct {
	answers  map[string]string
	fallback string
	calls    int
	lastCtx  []domain.Chunk
	err      error
}

func (g *mappingGenerator) Generate(_ context.Context, _ string, chunks []domain.Chunk) (string, error) {
	g.calls++
	g.lastCtx = chunks
	if g.err != nil {
		return "", g.err
	}
	for _, c := range chunks {
		for k, a := range g.answers {
			if strings.Contains(c.Text, k) {
				return a, nil
			}
		}
	}
	return g.fallback, nil
}

var _ domain.Generator = (*mappingGenerator)(nil)

func newService(t *testing.T, emb domain.Embedder, gen domain.Generator) *RAGService {
	t.Helper()
	ch, err := chunker.New(chunker.Config{Type: chunker.PolicyWindow, Size: 1000, Overlap: 200})
	require.NoError(t, err)
	return NewRAGService(ch, emb, memory.NewStorage(), gen, 4, logger.Discard())
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("Should retrieve the sky sentence and answer blue", func(t *testing.T) {
		emb := &keywordEmbedder{vocab: []string{"sky", "grass", "color"}}
		gen := &mappingGenerator{answers: map[string]string{"blue": "The sky is blue."}, fallback: "No information."}
		svc := newService(t, emb, gen)

		stats, err := svc.Ingest(ctx, []domain.Document{{ID: "sky", Path: "data/sky.txt", Content: "The sky is blue."}})
		require.NoError(t, err)
		assert.Equal(t, IngestStats{Documents: 1, Chunks: 1, Dimension: 3}, stats)

		answer, err := svc.Ask(ctx, "What color is the sky?")
		require.NoError(t, err)
		require.NotEmpty(t, answer.Sources)
		assert.Contains(t, answer.Sources[0].Chunk.Text, "The sky is blue.")
		assert.Contains(t, answer.Text, "blue")
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("Should put the most similar chunk first", func(t *testing.T) {
		emb := &keywordEmbedder{vocab: []string{"sky", "grass"}}
		gen := &mappingGenerator{fallback: "n/a"}
		svc := newService(t, emb, gen)
		_, err := svc.Ingest(ctx, []domain.Document{
			{ID: "g", Content: "Grass is green."},
			{ID: "s", Content: "The sky is blue."},
		})
		require.NoError(t, err)

		res, err := svc.Retrieve(ctx, "sky?", 1)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "s", res[0].Chunk.DocumentID)
	})

	t.Run("Should answer from fallback on an empty corpus", func(t *testing.T) {
		emb := &keywordEmbedder{vocab: []string{"sky"}}
		gen := &mappingGenerator{answers: map[string]string{"blue": "blue"}, fallback: "No information."}
		svc := newService(t, emb, gen)

		stats, err := svc.Ingest(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, stats.Chunks)
		assert.True(t, svc.Ready())
		assert.Zero(t, emb.documents, "no embedding request for zero chunks")

		answer, err := svc.Ask(ctx, "What color is the sky?")
		require.NoError(t, err)
		assert.Equal(t, "No information.", answer.Text)
		assert.Empty(t, gen.lastCtx)
	})

	t.Run("Should refuse questions before the index is built", func(t *testing.T) {
		gen := &mappingGenerator{}
		svc := newService(t, &keywordEmbedder{}, gen)
		_, err := svc.Ask(ctx, "anything")
		require.ErrorIs(t, err, ErrNotReady)
		assert.Zero(t, gen.calls)
	})

	t.Run("Should reject blank questions", func(t *testing.T) {
		svc := newService(t, &keywordEmbedder{}, &mappingGenerator{})
		_, err := svc.Ingest(ctx, nil)
		require.NoError(t, err)
		_, err = svc.Ask(ctx, "   ")
		require.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("Should propagate embedding and generation failures", func(t *testing.T) {
		boom := errors.New("network unreachable")
		svc := newService(t, &keywordEmbedder{vocab: []string{"x"}, documentErr: boom}, &mappingGenerator{})
		_, err := svc.Ingest(ctx, []domain.Document{{ID: "a", Content: "x"}})
		require.ErrorIs(t, err, boom)
		assert.False(t, svc.Ready())

		gen := &mappingGenerator{err: boom}
		svc = newService(t, &keywordEmbedder{vocab: []string{"x"}}, gen)
		_, err = svc.Ingest(ctx, []domain.Document{{ID: "a", Content: "x"}})
		require.NoError(t, err)
		_, err = svc.Ask(ctx, "x?")
		require.ErrorIs(t, err, boom)
	})
}

func TestRetrieveWithOfflineEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("Should fall back to lexical ranking for unseen vocabulary", func(t *testing.T) {
		svc := newService(t, tfidf.NewEmbedder(), &mappingGenerator{})
		_, err := svc.Ingest(ctx, []domain.Document{
			{ID: "a", Content: "The sky is blue."},
			{ID: "b", Content: "Grass is green."},
		})
		require.NoError(t, err)

		res, err := svc.Retrieve(ctx, "sky", 2)
		require.NoError(t, err)
		require.NotEmpty(t, res)
		assert.Equal(t, "a", res[0].Chunk.DocumentID)

		res, err = svc.Retrieve(ctx, "zebra", 2)
		require.NoError(t, err)
		assert.Len(t, res, 2)
	})
}
