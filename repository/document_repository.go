package repository

import (
	"context"
	"fmt"

	"lawlens-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for saved documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create saves a document
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (title, content, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.Title,
		doc.Content,
		doc.UserID,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// ListByUser returns a user's documents, newest first. A nil userID lists
// anonymous documents only, so users never see each other's history.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID *string, limit int) ([]*models.Document, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, title, content, user_id, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	args := []interface{}{userID, limit}

	if userID == nil {
		query = `
		SELECT id, title, content, user_id, created_at
		FROM documents
		WHERE user_id IS NULL
		ORDER BY created_at DESC
		LIMIT $1`
		args = []interface{}{limit}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Content,
			&doc.UserID,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
