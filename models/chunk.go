package models

import (
	"time"

	"github.com/google/uuid"
)

// ChunkCategory classifies a corpus chunk by its source kind.
type ChunkCategory string

const (
	CategoryLaw       ChunkCategory = "law"
	CategoryCase      ChunkCategory = "case"
	CategoryReference ChunkCategory = "reference"
)

// TextChunk is one bounded segment of source text, the unit of embedding and
// retrieval. Immutable once produced by the chunker.
type TextChunk struct {
	Content       string        `json:"content"`
	SourceLabel   string        `json:"source_label"`
	Category      ChunkCategory `json:"category"`
	SequenceIndex int           `json:"sequence_index"`
}

// LawChunk is a persisted corpus chunk with its embedding, as stored in the
// law_chunks table.
type LawChunk struct {
	ID          uuid.UUID     `json:"id"`
	SourceLabel string        `json:"source_label"`
	Category    ChunkCategory `json:"category"`
	ChunkIndex  int           `json:"chunk_index"`
	Content     string        `json:"content"`
	Embedding   []float64     `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ChunkMatch is a raw similarity-search row from the chunk store, before
// snippet bounding.
type ChunkMatch struct {
	SourceLabel string
	Content     string
	Similarity  float64
}

// RetrievedContext is one similarity-search hit mapped for prompt use.
// Snippets are length-bounded; results are ordered by descending similarity.
// Produced per request, never persisted.
type RetrievedContext struct {
	SourceLabel     string  `json:"source_label"`
	Snippet         string  `json:"snippet"`
	SimilarityScore float64 `json:"similarity_score"`
}
