package models

import (
	"time"

	"github.com/google/uuid"
)

// MemoryType classifies a remembered user instruction.
type MemoryType string

const (
	MemoryPreference MemoryType = "preference"
	MemoryCorrection MemoryType = "correction"
	MemoryFact       MemoryType = "fact"
)

// Valid reports whether t is a known memory type.
func (t MemoryType) Valid() bool {
	switch t {
	case MemoryPreference, MemoryCorrection, MemoryFact:
		return true
	}
	return false
}

// MemoryRecord is a persisted, user-scoped natural-language instruction that
// overrides generic retrieved context during generation. Lifetime is
// indefinite; records are strictly scoped per user.
type MemoryRecord struct {
	ID         uuid.UUID  `json:"id"`
	UserID     string     `json:"user_id"`
	Content    string     `json:"content"`
	MemoryType MemoryType `json:"memory_type"`
	Embedding  []float64  `json:"-"`
	Similarity float64    `json:"similarity,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
