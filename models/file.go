package models

import (
	"time"

	"github.com/google/uuid"
)

// EvidenceFile represents an evidence attachment on a complaint
type EvidenceFile struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	ComplaintID *uuid.UUID `json:"complaint_id,omitempty"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	StoragePath string     `json:"storage_path"`
	CreatedAt   time.Time  `json:"created_at"`
}
