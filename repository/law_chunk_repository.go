package repository

import (
	"context"
	"fmt"
	"strings"

	"lawlens-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LawChunkRepository handles database operations for corpus chunks
type LawChunkRepository struct {
	db *pgxpool.Pool
}

// NewLawChunkRepository creates a new law chunk repository
func NewLawChunkRepository(db *pgxpool.Pool) *LawChunkRepository {
	return &LawChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// SearchSimilar performs a cosine similarity search over the corpus.
// embedding: L2-normalized query vector (768 dimensions)
// threshold: minimum similarity in [0,1] for a row to qualify
// topK: maximum number of rows, ordered by descending similarity
func (r *LawChunkRepository) SearchSimilar(
	ctx context.Context,
	embedding []float64,
	threshold float64,
	topK int,
) ([]models.ChunkMatch, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			source_label,
			content,
			1 - (embedding <=> $1::vector) AS similarity
		FROM law_chunks
		WHERE 1 - (embedding <=> $1::vector) >= $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, vectorStr, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query law chunks: %w", err)
	}
	defer rows.Close()

	var matches []models.ChunkMatch
	for rows.Next() {
		var m models.ChunkMatch
		if err := rows.Scan(&m.SourceLabel, &m.Content, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan law chunk: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating law chunks: %w", err)
	}

	return matches, nil
}

// InsertBatch stores a batch of embedded chunks.
func (r *LawChunkRepository) InsertBatch(ctx context.Context, chunks []models.LawChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := `
		INSERT INTO law_chunks (
			id, source_label, category, chunk_index, content, embedding
		) VALUES ($1, $2, $3, $4, $5, $6::vector)`

	for _, chunk := range chunks {
		_, err := r.db.Exec(
			ctx, query,
			chunk.ID,
			chunk.SourceLabel,
			chunk.Category,
			chunk.ChunkIndex,
			chunk.Content,
			formatVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert law chunk %d of %s: %w", chunk.ChunkIndex, chunk.SourceLabel, err)
		}
	}

	return nil
}

// CountBySource returns the number of stored chunks for a source label.
func (r *LawChunkRepository) CountBySource(ctx context.Context, sourceLabel string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM law_chunks WHERE source_label = $1", sourceLabel,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for %s: %w", sourceLabel, err)
	}
	return count, nil
}
