package tfidf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("Should fail before Prepare", func(t *testing.T) {
		_, err := NewEmbedder().EmbedQuery(ctx, "sky")
		require.Error(t, err)
	})

	t.Run("Should produce unit vectors that rank the matching chunk first", func(t *testing.T) {
		e := NewEmbedder()
		corpus := []string{"The sky is blue.", "Grass grows green in spring."}
		require.NoError(t, e.Prepare(ctx, corpus))
		assert.Equal(t, "tfidf", e.Name())
		assert.Positive(t, e.Dimension())

		docs, err := e.EmbedDocuments(ctx, corpus)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		q, err := e.EmbedQuery(ctx, "What color is the sky?")
		require.NoError(t, err)
		require.Len(t, q, e.Dimension())

		var norm, s0, s1 float32
		for i := range q {
			norm += docs[0][i] * docs[0][i]
			s0 += q[i] * docs[0][i]
			s1 += q[i] * docs[1][i]
		}
		assert.InDelta(t, 1.0, norm, 1e-5)
		assert.Greater(t, s0, s1)
	})

	t.Run("Should return a zero vector for unseen vocabulary", func(t *testing.T) {
		e := NewEmbedder()
		require.NoError(t, e.Prepare(ctx, []string{"The sky is blue."}))
		v, err := e.EmbedQuery(ctx, "zebra")
		require.NoError(t, err)
		for _, x := range v {
			assert.Zero(t, x)
		}
	})

	t.Run("Should accept an empty corpus", func(t *testing.T) {
		e := NewEmbedder()
		require.NoError(t, e.Prepare(ctx, nil))
		assert.Zero(t, e.Dimension())
		v, err := e.EmbedQuery(ctx, "anything")
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}
