package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("scales to unit length", func(t *testing.T) {
		v := normalize([]float64{3, 4})

		require.Len(t, v, 2)
		assert.InDelta(t, 0.6, v[0], 1e-9)
		assert.InDelta(t, 0.8, v[1], 1e-9)

		norm := math.Sqrt(v[0]*v[0] + v[1]*v[1])
		assert.InDelta(t, 1.0, norm, 1e-9)
	})

	t.Run("zero vector is left alone", func(t *testing.T) {
		v := normalize([]float64{0, 0, 0})
		assert.Equal(t, []float64{0, 0, 0}, v)
	})
}

func TestEmbeddingClientRequiresAPIKey(t *testing.T) {
	c := NewEmbeddingClient("")

	_, err := c.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

	_, err = c.EmbedDocuments(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestEmbedDocumentsEmptyBatch(t *testing.T) {
	c := NewEmbeddingClient("key")

	vectors, err := c.EmbedDocuments(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}
