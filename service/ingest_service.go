package service

import (
	"context"
	"fmt"
	"log"

	"lawlens-backend/models"

	"github.com/google/uuid"
)

const (
	// Sliding-window defaults for non-statute sources.
	defaultChunkSize    = 500
	defaultChunkOverlap = 50

	// insertBatchSize bounds one database insert round-trip.
	insertBatchSize = 10

	// embedBatchSize stays under the embedding API's batch limit.
	embedBatchSize = 100
)

// ChunkWriter is the corpus write path.
type ChunkWriter interface {
	InsertBatch(ctx context.Context, chunks []models.LawChunk) error
	CountBySource(ctx context.Context, sourceLabel string) (int, error)
}

// IngestService turns source text into embedded corpus chunks. Newly
// ingested chunks become visible to retrieval eventually; there is no
// transactional coupling between the write and read paths.
type IngestService struct {
	embedder Embedder
	writer   ChunkWriter
}

// NewIngestService creates a new ingest service.
func NewIngestService(embedder Embedder, writer ChunkWriter) *IngestService {
	return &IngestService{embedder: embedder, writer: writer}
}

// IngestStatute splits statute text by the clause rule (第X条), embeds each
// clause and stores the result under sourceLabel. Returns the number of
// chunks stored. A source already present is skipped.
func (s *IngestService) IngestStatute(ctx context.Context, sourceLabel, text string) (int, error) {
	return s.ingest(ctx, sourceLabel, models.CategoryLaw, SplitClauses(text))
}

// IngestGeneral splits arbitrary source text with the sliding window and
// stores it under sourceLabel with the given category.
func (s *IngestService) IngestGeneral(ctx context.Context, sourceLabel string, category models.ChunkCategory, text string) (int, error) {
	return s.ingest(ctx, sourceLabel, category, ChunkAll(text, defaultChunkSize, defaultChunkOverlap))
}

func (s *IngestService) ingest(ctx context.Context, sourceLabel string, category models.ChunkCategory, pieces []string) (int, error) {
	if len(pieces) == 0 {
		return 0, nil
	}

	existing, err := s.writer.CountBySource(ctx, sourceLabel)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing chunks for %s: %w", sourceLabel, err)
	}
	if existing > 0 {
		log.Printf("Skipping %s: already ingested (%d chunks)", sourceLabel, existing)
		return 0, nil
	}

	stored := 0
	for start := 0; start < len(pieces); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		batch := pieces[start:end]

		// Ingestion is a mandatory path: embedding failure aborts rather
		// than storing chunks without vectors.
		vectors, err := s.embedder.EmbedDocuments(ctx, batch)
		if err != nil {
			return stored, fmt.Errorf("failed to embed chunks for %s: %w", sourceLabel, err)
		}

		chunks := make([]models.LawChunk, len(batch))
		for i, content := range batch {
			chunks[i] = models.LawChunk{
				ID:          uuid.New(),
				SourceLabel: sourceLabel,
				Category:    category,
				ChunkIndex:  start + i,
				Content:     content,
				Embedding:   vectors[i],
			}
		}

		for i := 0; i < len(chunks); i += insertBatchSize {
			j := i + insertBatchSize
			if j > len(chunks) {
				j = len(chunks)
			}
			if err := s.writer.InsertBatch(ctx, chunks[i:j]); err != nil {
				return stored, fmt.Errorf("failed to store chunks for %s: %w", sourceLabel, err)
			}
			stored += j - i
		}
	}

	return stored, nil
}
