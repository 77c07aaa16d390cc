package repository

import (
	"context"
	"fmt"

	"lawlens-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MemoryRepository handles database operations for user memory records
type MemoryRepository struct {
	db *pgxpool.Pool
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db *pgxpool.Pool) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Insert persists a memory record
func (r *MemoryRepository) Insert(ctx context.Context, record *models.MemoryRecord) error {
	query := `
		INSERT INTO user_memories (
			id, user_id, content, memory_type, embedding
		) VALUES ($1, $2, $3, $4, $5::vector)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		record.ID,
		record.UserID,
		record.Content,
		record.MemoryType,
		formatVector(record.Embedding),
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert memory record: %w", err)
	}
	return nil
}

// SearchByUser performs a similarity search restricted to a single user's
// memories. The user_id predicate is part of the SQL, not post-filtering:
// rows belonging to other users can never be returned.
func (r *MemoryRepository) SearchByUser(
	ctx context.Context,
	userID string,
	embedding []float64,
	threshold float64,
	topK int,
) ([]models.MemoryRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required for memory search")
	}
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id, user_id, content, memory_type, created_at,
			1 - (embedding <=> $2::vector) AS similarity
		FROM user_memories
		WHERE user_id = $1
			AND 1 - (embedding <=> $2::vector) >= $3
		ORDER BY embedding <=> $2::vector
		LIMIT $4`

	rows, err := r.db.Query(ctx, query, userID, vectorStr, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query user memories: %w", err)
	}
	defer rows.Close()

	var records []models.MemoryRecord
	for rows.Next() {
		var rec models.MemoryRecord
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Content,
			&rec.MemoryType,
			&rec.CreatedAt,
			&rec.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memory records: %w", err)
	}

	return records, nil
}
