package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"lawlens-backend/models"

	"github.com/google/uuid"
)

// Memory retrieval is stricter than corpus retrieval: a remembered preference
// is an override signal, so only high-confidence matches qualify.
var DefaultMemoryRetrieval = RetrievalConfig{Threshold: 0.5, TopK: 3}

// MemorySearcher is the persistence capability behind the memory store. All
// reads are scoped to a single user.
type MemorySearcher interface {
	SearchByUser(ctx context.Context, userID string, embedding []float64, threshold float64, topK int) ([]models.MemoryRecord, error)
	Insert(ctx context.Context, record *models.MemoryRecord) error
}

// MemoryStore writes and retrieves per-user preference records using the same
// embedding and similarity mechanism as the corpus, in a separate namespace.
type MemoryStore struct {
	embedder Embedder
	searcher MemorySearcher
	cfg      RetrievalConfig
}

// NewMemoryStore creates a new memory store.
func NewMemoryStore(embedder Embedder, searcher MemorySearcher) *MemoryStore {
	return &MemoryStore{
		embedder: embedder,
		searcher: searcher,
		cfg:      DefaultMemoryRetrieval,
	}
}

// Write embeds content and persists it as a memory record for userID.
func (s *MemoryStore) Write(ctx context.Context, userID, content string, memType models.MemoryType) (*models.MemoryRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required for memory write")
	}
	if !memType.Valid() {
		return nil, fmt.Errorf("unknown memory type: %q", memType)
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to embed memory content: %w", err)
	}

	record := &models.MemoryRecord{
		ID:         uuid.New(),
		UserID:     userID,
		Content:    content,
		MemoryType: memType,
		Embedding:  embedding,
	}
	if err := s.searcher.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist memory record: %w", err)
	}
	return record, nil
}

// Retrieve returns the user's matching memories as a newline-joined bullet
// list, or the empty string when userID is absent, nothing clears the
// threshold, or the lookup fails. Failures never abort the outer request.
func (s *MemoryStore) Retrieve(ctx context.Context, userID, queryText string) string {
	if userID == "" || queryText == "" {
		return ""
	}

	embedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		log.Printf("Warning: memory retrieval embedding failed for user %s: %v", userID, err)
		return ""
	}

	records, err := s.searcher.SearchByUser(ctx, userID, embedding, s.cfg.Threshold, s.cfg.TopK)
	if err != nil {
		log.Printf("Warning: memory search failed for user %s: %v", userID, err)
		return ""
	}

	var bullets []string
	for _, rec := range records {
		if rec.Similarity < s.cfg.Threshold {
			continue
		}
		bullets = append(bullets, "- "+rec.Content)
	}
	return strings.Join(bullets, "\n")
}
