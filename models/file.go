package models

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata record of an uploaded source file (contract, evidence,
// prior document). The binary lives in the storage backend at StoragePath;
// conversion to editor markup is handled outside this service.
type File struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *string    `json:"user_id,omitempty"`
	DocumentID  *uuid.UUID `json:"document_id,omitempty"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	StoragePath string     `json:"storage_path"`
	CreatedAt   time.Time  `json:"created_at"`
}
