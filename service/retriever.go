package service

import (
	"context"
	"log"

	"lawlens-backend/models"
)

// maxSnippetRunes bounds each retrieved snippet so a handful of hits cannot
// crowd the system instruction out of the context window.
const maxSnippetRunes = 500

// RetrievalConfig tunes one similarity search. Thresholds are deployment
// configuration, not constants: the right value depends on corpus density and
// how much context the calling mode tolerates.
type RetrievalConfig struct {
	Threshold float64
	TopK      int
}

// DefaultCorpusRetrieval favors recall: draft and polish want several statutes
// to cite even if some are marginal.
var DefaultCorpusRetrieval = RetrievalConfig{Threshold: 0.35, TopK: 5}

// ChunkSearcher is the similarity-search capability over the corpus, ordered
// by descending similarity.
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float64, threshold float64, topK int) ([]models.ChunkMatch, error)
}

// CorpusRetriever resolves a query string into ranked law/case context.
type CorpusRetriever struct {
	embedder Embedder
	searcher ChunkSearcher
}

// NewCorpusRetriever creates a new corpus retriever.
func NewCorpusRetriever(embedder Embedder, searcher ChunkSearcher) *CorpusRetriever {
	return &CorpusRetriever{embedder: embedder, searcher: searcher}
}

// Retrieve embeds queryText and returns the top matches above the threshold,
// snippets bounded to maxSnippetRunes. Retrieval is best-effort: embedding or
// search failures log a warning and return an empty result so the outer
// request can proceed on general knowledge.
func (r *CorpusRetriever) Retrieve(ctx context.Context, queryText string, cfg RetrievalConfig) []models.RetrievedContext {
	if queryText == "" {
		return nil
	}

	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		log.Printf("Warning: corpus retrieval embedding failed: %v. Continuing with empty context.", err)
		return nil
	}

	matches, err := r.searcher.SearchSimilar(ctx, embedding, cfg.Threshold, cfg.TopK)
	if err != nil {
		log.Printf("Warning: corpus similarity search failed: %v. Continuing with empty context.", err)
		return nil
	}

	contexts := make([]models.RetrievedContext, 0, len(matches))
	for _, m := range matches {
		if m.Similarity < cfg.Threshold {
			continue
		}
		contexts = append(contexts, models.RetrievedContext{
			SourceLabel:     m.SourceLabel,
			Snippet:         truncateRunes(m.Content, maxSnippetRunes),
			SimilarityScore: m.Similarity,
		})
	}
	return contexts
}

// truncateRunes bounds s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
