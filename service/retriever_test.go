package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lawlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	embedding []float64
	err       error
	calls     int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.embedding
	}
	return out, nil
}

type fakeChunkSearcher struct {
	matches []models.ChunkMatch
	err     error

	gotThreshold float64
	gotTopK      int
}

func (f *fakeChunkSearcher) SearchSimilar(ctx context.Context, embedding []float64, threshold float64, topK int) ([]models.ChunkMatch, error) {
	f.gotThreshold = threshold
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func TestCorpusRetrieverRetrieve(t *testing.T) {
	embedder := &fakeEmbedder{embedding: []float64{0.1, 0.2}}

	t.Run("returns matches above threshold", func(t *testing.T) {
		searcher := &fakeChunkSearcher{matches: []models.ChunkMatch{
			{SourceLabel: "民法典", Content: "第五百七十七条", Similarity: 0.8},
			{SourceLabel: "劳动合同法", Content: "第三十条", Similarity: 0.4},
		}}
		r := NewCorpusRetriever(embedder, searcher)

		got := r.Retrieve(context.Background(), "违约责任", RetrievalConfig{Threshold: 0.35, TopK: 5})

		require.Len(t, got, 2)
		assert.Equal(t, "民法典", got[0].SourceLabel)
		assert.Equal(t, 0.8, got[0].SimilarityScore)
		assert.Equal(t, 0.35, searcher.gotThreshold)
		assert.Equal(t, 5, searcher.gotTopK)
	})

	t.Run("filters rows below threshold", func(t *testing.T) {
		searcher := &fakeChunkSearcher{matches: []models.ChunkMatch{
			{SourceLabel: "民法典", Content: "x", Similarity: 0.8},
		}}
		r := NewCorpusRetriever(embedder, searcher)

		got := r.Retrieve(context.Background(), "q", RetrievalConfig{Threshold: 1.01, TopK: 5})
		assert.Empty(t, got)
	})

	t.Run("bounds snippet length", func(t *testing.T) {
		searcher := &fakeChunkSearcher{matches: []models.ChunkMatch{
			{SourceLabel: "民法典", Content: strings.Repeat("条", 800), Similarity: 0.9},
		}}
		r := NewCorpusRetriever(embedder, searcher)

		got := r.Retrieve(context.Background(), "q", DefaultCorpusRetrieval)

		require.Len(t, got, 1)
		assert.Len(t, []rune(got[0].Snippet), maxSnippetRunes)
	})

	t.Run("embedding failure is best-effort empty", func(t *testing.T) {
		r := NewCorpusRetriever(&fakeEmbedder{err: errors.New("api down")}, &fakeChunkSearcher{})

		got := r.Retrieve(context.Background(), "q", DefaultCorpusRetrieval)
		assert.Empty(t, got)
	})

	t.Run("search failure is best-effort empty", func(t *testing.T) {
		r := NewCorpusRetriever(embedder, &fakeChunkSearcher{err: errors.New("db down")})

		got := r.Retrieve(context.Background(), "q", DefaultCorpusRetrieval)
		assert.Empty(t, got)
	})

	t.Run("empty query skips retrieval entirely", func(t *testing.T) {
		e := &fakeEmbedder{embedding: []float64{0.1}}
		r := NewCorpusRetriever(e, &fakeChunkSearcher{})

		got := r.Retrieve(context.Background(), "", DefaultCorpusRetrieval)
		assert.Empty(t, got)
		assert.Zero(t, e.calls)
	})
}
